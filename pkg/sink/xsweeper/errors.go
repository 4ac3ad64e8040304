package xsweeper

import "errors"

var (
	// ErrNilTarget 清扫目标为 nil
	ErrNilTarget = errors.New("xsweeper: target is required")

	// ErrInvalidSchedule cron 表达式无法解析
	ErrInvalidSchedule = errors.New("xsweeper: invalid schedule")
)
