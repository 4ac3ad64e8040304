package xhandler

import (
	"os"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// Handler 默认配置值
const (
	// DefaultBufferSize 默认内存缓冲上限（64 KiB）
	DefaultBufferSize = 64 * 1024

	// DefaultFileMode 默认日志文件权限
	DefaultFileMode = os.FileMode(0644)

	// DefaultBackupDirName 默认备份目录名（位于日志目录下）
	DefaultBackupDirName = "backup"

	// DefaultQueueSize 默认异步队列容量
	DefaultQueueSize = 10000

	// DefaultBatchSize 默认异步批大小
	DefaultBatchSize = 100
)

type config struct {
	bufferSize     int
	fileMode       os.FileMode
	backupDir      string
	metricsEnabled bool
	meterProvider  metric.MeterProvider
	onError        func(error)
	nowFn          func() time.Time
}

func defaultConfig() config {
	return config{
		bufferSize:     DefaultBufferSize,
		fileMode:       DefaultFileMode,
		metricsEnabled: true,
		nowFn:          time.Now,
	}
}

// Option Handler 配置选项函数
type Option func(*config)

// WithBufferSize 设置内存缓冲上限（字节）。
// 追加记录会使缓冲超过上限时先整体落盘。
func WithBufferSize(n int) Option {
	return func(c *config) {
		c.bufferSize = n
	}
}

// WithFileMode 设置日志文件权限。
// 仅允许权限位（0000~0777）。
func WithFileMode(mode os.FileMode) Option {
	return func(c *config) {
		c.fileMode = mode
	}
}

// WithBackupDir 设置故障降级时的备份目录。
// 默认为活动文件所在目录下的 backup 子目录。
func WithBackupDir(dir string) Option {
	return func(c *config) {
		if dir != "" {
			c.backupDir = dir
		}
	}
}

// WithMetrics 设置是否收集指标，默认启用。
func WithMetrics(enabled bool) Option {
	return func(c *config) {
		c.metricsEnabled = enabled
	}
}

// WithMeterProvider 把本地计数器桥接到 OpenTelemetry。
// 传入 nil 将被忽略，保持仅本地计数。
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(c *config) {
		if mp != nil {
			c.meterProvider = mp
		}
	}
}

// WithOnError 设置内部错误回调函数。
//
// 写入器降级（I/O 失败、队列饱和）时调用，用于接入 metrics/告警。
//
// 设计决策: 不使用日志库记录内部错误，避免写入器作为日志输出目标时
// 产生递归写入（写失败 → 打日志 → 再写失败）。回调不得向同一
// Handler 写入数据；回调 panic 会被隔离。
func WithOnError(fn func(error)) Option {
	return func(c *config) {
		c.onError = fn
	}
}

// WithClock 注入时钟，仅用于测试。
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		if now != nil {
			c.nowFn = now
		}
	}
}
