package xhandler

import "errors"

var (
	// ErrNilRollingPolicy 滚动策略为 nil
	ErrNilRollingPolicy = errors.New("xhandler: rolling policy is required")

	// ErrNilTriggeringPolicy 触发策略为 nil
	ErrNilTriggeringPolicy = errors.New("xhandler: triggering policy is required")

	// ErrInvalidBufferSize 缓冲大小无效（必须 > 0）
	ErrInvalidBufferSize = errors.New("xhandler: invalid buffer size")

	// ErrInvalidFileMode FileMode 包含非权限位（仅允许低 9 位 0000~0777）
	ErrInvalidFileMode = errors.New("xhandler: invalid file mode")

	// ErrInvalidQueueSize 异步队列容量无效（必须 > 0）
	ErrInvalidQueueSize = errors.New("xhandler: invalid queue size")

	// ErrInvalidBatchSize 异步批大小无效（必须 > 0）
	ErrInvalidBatchSize = errors.New("xhandler: invalid batch size")

	// ErrNilHandler 被包装的写入器为 nil
	ErrNilHandler = errors.New("xhandler: wrapped handler is required")

	// ErrQueueFull 异步队列已满，记录被旁路到备份目录
	ErrQueueFull = errors.New("xhandler: async queue is full")

	// ErrClosed 写入器已关闭
	ErrClosed = errors.New("xhandler: handler is closed")
)
