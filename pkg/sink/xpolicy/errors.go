package xpolicy

import "errors"

// 配置校验错误
var (
	// ErrEmptyPattern 活动文件名模式为空
	ErrEmptyPattern = errors.New("xpolicy: pattern is required")

	// ErrInvalidMaxSize 触发阈值无效（必须 > 0）
	ErrInvalidMaxSize = errors.New("xpolicy: invalid max size")

	// ErrInvalidCheckInterval 检查间隔无效（必须 >= 0）
	ErrInvalidCheckInterval = errors.New("xpolicy: invalid check interval")

	// ErrInvalidMaxHistory MaxHistory 值无效（必须在 0~3650 天范围内）
	ErrInvalidMaxHistory = errors.New("xpolicy: invalid max history")

	// ErrInvalidSizeCap TotalSizeCap 值无效（必须 >= 0）
	ErrInvalidSizeCap = errors.New("xpolicy: invalid total size cap")

	// ErrNoRetentionPolicy MaxHistory 和 TotalSizeCap 不能同时为 0
	ErrNoRetentionPolicy = errors.New("xpolicy: no retention policy configured")
)
