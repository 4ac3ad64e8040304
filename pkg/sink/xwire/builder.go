package xwire

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"go.opentelemetry.io/otel/metric"

	"github.com/omeyang/logsink/pkg/sink/xhandler"
	"github.com/omeyang/logsink/pkg/sink/xpolicy"
	"github.com/omeyang/logsink/pkg/sink/xsweeper"
)

type buildConfig struct {
	onError       func(error)
	meterProvider metric.MeterProvider
}

// BuildOption 装配选项函数
type BuildOption func(*buildConfig)

// WithOnError 设置写入器内部错误回调，语义见 [xhandler.WithOnError]。
func WithOnError(fn func(error)) BuildOption {
	return func(c *buildConfig) {
		c.onError = fn
	}
}

// WithMeterProvider 把写入器指标桥接到 OpenTelemetry。
func WithMeterProvider(mp metric.MeterProvider) BuildOption {
	return func(c *buildConfig) {
		if mp != nil {
			c.meterProvider = mp
		}
	}
}

// Sink 装配完成的日志后端。
//
// Logger 可直接使用；Close 释放全部资源（停止清扫、排空队列、
// 落盘缓冲、关闭文件），幂等。
type Sink struct {
	// Logger 绑定到本后端的 slog 实例
	Logger *slog.Logger

	writer  io.WriteCloser
	metrics *xhandler.Metrics
	sweeper *xsweeper.Sweeper
	path    string

	closeOnce sync.Once
	closeErr  error
}

// Validate 对配置做无副作用的静态校验，不创建任何目录或文件。
// 供 Build 前置检查和运维工具使用。
func (c Config) Validate() error {
	if _, err := parseLevel(c.Level); err != nil {
		return err
	}
	switch strings.ToLower(strings.TrimSpace(c.Encoding)) {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidEncoding, c.Encoding)
	}

	rolling, err := xpolicy.NewTimeBasedRolling(c.ActiveFile(),
		xpolicy.WithMaxHistory(c.MaxHistory),
		xpolicy.WithTotalSizeCap(c.TotalSizeCap),
		xpolicy.WithCompress(c.Compress),
	)
	if err != nil {
		return err
	}
	if _, err := xpolicy.NewSizeTrigger(c.MaxFileSize); err != nil {
		return err
	}
	if c.BufferSize <= 0 {
		return fmt.Errorf("%w: got %d, want > 0", xhandler.ErrInvalidBufferSize, c.BufferSize)
	}
	if c.Async {
		if c.QueueSize <= 0 {
			return fmt.Errorf("%w: got %d, want > 0", xhandler.ErrInvalidQueueSize, c.QueueSize)
		}
		if c.BatchSize <= 0 {
			return fmt.Errorf("%w: got %d, want > 0", xhandler.ErrInvalidBatchSize, c.BatchSize)
		}
	}
	if c.SweepSchedule != "" {
		if _, err := xsweeper.New(rolling, xsweeper.WithSchedule(c.SweepSchedule)); err != nil {
			return err
		}
	}
	return nil
}

// Build 按配置装配完整的日志后端。
func Build(cfg Config, opts ...BuildOption) (*Sink, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	bc := buildConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&bc)
		}
	}

	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	rolling, err := xpolicy.NewTimeBasedRolling(cfg.ActiveFile(),
		xpolicy.WithMaxHistory(cfg.MaxHistory),
		xpolicy.WithTotalSizeCap(cfg.TotalSizeCap),
		xpolicy.WithCompress(cfg.Compress),
	)
	if err != nil {
		return nil, err
	}
	trigger, err := xpolicy.NewSizeTrigger(cfg.MaxFileSize)
	if err != nil {
		return nil, err
	}

	handlerOpts := []xhandler.Option{
		xhandler.WithBufferSize(cfg.BufferSize),
	}
	if bc.onError != nil {
		handlerOpts = append(handlerOpts, xhandler.WithOnError(bc.onError))
	}
	if bc.meterProvider != nil {
		handlerOpts = append(handlerOpts, xhandler.WithMeterProvider(bc.meterProvider))
	}

	h, err := xhandler.NewHandler(rolling, trigger, handlerOpts...)
	if err != nil {
		return nil, err
	}

	var writer io.WriteCloser
	if cfg.Async {
		a, err := xhandler.NewAsyncHandler(h,
			xhandler.WithQueueSize(cfg.QueueSize),
			xhandler.WithBatchSize(cfg.BatchSize),
		)
		if err != nil {
			_ = h.Close()
			return nil, err
		}
		writer = a
	} else {
		// slog 前端可能被并发使用，同步路径在此串行化满足单写者约定
		writer = &syncWriter{h: h}
	}

	var sweeper *xsweeper.Sweeper
	if cfg.SweepSchedule != "" {
		sweeper, err = xsweeper.New(rolling, xsweeper.WithSchedule(cfg.SweepSchedule))
		if err != nil {
			_ = writer.Close()
			return nil, err
		}
		sweeper.Start()
	}

	var base slog.Handler
	slogOpts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(strings.TrimSpace(cfg.Encoding)) {
	case "", "text":
		base = slog.NewTextHandler(writer, slogOpts)
	case "json":
		base = slog.NewJSONHandler(writer, slogOpts)
	default:
		if sweeper != nil {
			sweeper.Stop()
		}
		_ = writer.Close()
		return nil, fmt.Errorf("%w: %q", ErrInvalidEncoding, cfg.Encoding)
	}

	link, err := NewLinkHandler(base, cfg.AppName)
	if err != nil {
		if sweeper != nil {
			sweeper.Stop()
		}
		_ = writer.Close()
		return nil, err
	}

	return &Sink{
		Logger:  slog.New(link),
		writer:  writer,
		metrics: h.Metrics(),
		sweeper: sweeper,
		path:    h.Path(),
	}, nil
}

// Path 返回活动文件路径。
func (s *Sink) Path() string {
	return s.path
}

// Metrics 返回写入器计数器的只读快照。
func (s *Sink) Metrics() map[string]int64 {
	return s.metrics.Snapshot()
}

// Close 停止清扫、排空并关闭写入器。幂等，后续调用返回首次结果。
func (s *Sink) Close() error {
	s.closeOnce.Do(func() {
		if s.sweeper != nil {
			s.sweeper.Stop()
		}
		s.closeErr = s.writer.Close()
	})
	return s.closeErr
}

// syncWriter 串行化并发 Write，满足 Handler 的单写者约定。
type syncWriter struct {
	mu sync.Mutex
	h  *xhandler.Handler
}

func (w *syncWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.h.Write(p)
}

func (w *syncWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.h.Close()
}

// parseLevel 解析日志级别字符串，空值按 info 处理。
func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidLevel, s)
	}
}
