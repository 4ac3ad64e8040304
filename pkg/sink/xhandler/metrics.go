package xhandler

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// Snapshot 中使用的指标名
const (
	// MetricWrittenBytes 成功写入缓冲的累计字节数
	MetricWrittenBytes = "written_bytes"

	// MetricWrittenRecords 成功写入缓冲的累计记录数
	MetricWrittenRecords = "written_records"

	// MetricRolloverCount 累计轮转次数
	MetricRolloverCount = "rollover_count"

	// MetricWriteTime 累计写入耗时（纳秒）
	MetricWriteTime = "write_time"

	// MetricLastWrite 最近一次写入的时间戳（Unix 纳秒）
	MetricLastWrite = "last_write"

	// MetricErrors 累计错误数（I/O 失败、队列饱和等）
	MetricErrors = "errors"
)

const instrumentationName = "github.com/omeyang/logsink/pkg/sink/xhandler"

// Metrics 写入器的单调递增计数器。
//
// 生命周期与写入器一致：每次 emit/flush/轮转/出错时更新，
// Snapshot 随时可读且不改变状态。禁用时所有更新为空操作。
type Metrics struct {
	enabled bool

	writtenBytes   atomic.Int64
	writtenRecords atomic.Int64
	rolloverCount  atomic.Int64
	writeTime      atomic.Int64
	lastWrite      atomic.Int64
	errors         atomic.Int64

	otel *otelBridge // nil 表示不桥接
}

func newMetrics(enabled bool, bridge *otelBridge) *Metrics {
	return &Metrics{enabled: enabled, otel: bridge}
}

// recordWrite 记录一次成功的缓冲写入。
func (m *Metrics) recordWrite(size int, elapsed time.Duration, at time.Time) {
	if m == nil || !m.enabled {
		return
	}
	m.writtenBytes.Add(int64(size))
	m.writtenRecords.Add(1)
	m.writeTime.Add(int64(elapsed))
	m.lastWrite.Store(at.UnixNano())
	m.otel.onWrite(size, elapsed)
}

// recordRollover 记录一次轮转。
func (m *Metrics) recordRollover() {
	if m == nil || !m.enabled {
		return
	}
	m.rolloverCount.Add(1)
	m.otel.onRollover()
}

// recordError 记录一次降级错误。
func (m *Metrics) recordError() {
	if m == nil || !m.enabled {
		return
	}
	m.errors.Add(1)
	m.otel.onError()
}

// Snapshot 返回当前计数器的只读快照。
// 指标被禁用时返回空 map。
func (m *Metrics) Snapshot() map[string]int64 {
	if m == nil || !m.enabled {
		return map[string]int64{}
	}
	return map[string]int64{
		MetricWrittenBytes:   m.writtenBytes.Load(),
		MetricWrittenRecords: m.writtenRecords.Load(),
		MetricRolloverCount:  m.rolloverCount.Load(),
		MetricWriteTime:      m.writeTime.Load(),
		MetricLastWrite:      m.lastWrite.Load(),
		MetricErrors:         m.errors.Load(),
	}
}

// otelBridge 把本地计数器镜像到 OpenTelemetry 指标。
//
// 桥接是可选的：未配置 MeterProvider 时 otel 字段为 nil，
// 所有 on* 方法对 nil 接收者安全。
type otelBridge struct {
	bytes     metric.Int64Counter
	records   metric.Int64Counter
	rollovers metric.Int64Counter
	errs      metric.Int64Counter
	duration  metric.Float64Histogram
}

func newOTelBridge(mp metric.MeterProvider) (*otelBridge, error) {
	meter := mp.Meter(instrumentationName)

	bytes, err := meter.Int64Counter(
		"logsink.written.bytes",
		metric.WithDescription("bytes accepted into the sink buffer"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, fmt.Errorf("xhandler: create counter failed: %w", err)
	}
	records, err := meter.Int64Counter(
		"logsink.written.records",
		metric.WithDescription("records accepted into the sink buffer"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("xhandler: create counter failed: %w", err)
	}
	rollovers, err := meter.Int64Counter(
		"logsink.rollover.count",
		metric.WithDescription("active file rollovers"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("xhandler: create counter failed: %w", err)
	}
	errs, err := meter.Int64Counter(
		"logsink.errors",
		metric.WithDescription("degraded failures (I/O, queue saturation)"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("xhandler: create counter failed: %w", err)
	}
	duration, err := meter.Float64Histogram(
		"logsink.write.duration",
		metric.WithDescription("per-record buffer write duration"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("xhandler: create histogram failed: %w", err)
	}

	return &otelBridge{
		bytes:     bytes,
		records:   records,
		rollovers: rollovers,
		errs:      errs,
		duration:  duration,
	}, nil
}

func (b *otelBridge) onWrite(size int, elapsed time.Duration) {
	if b == nil {
		return
	}
	ctx := context.Background()
	b.bytes.Add(ctx, int64(size))
	b.records.Add(ctx, 1)
	b.duration.Record(ctx, elapsed.Seconds())
}

func (b *otelBridge) onRollover() {
	if b == nil {
		return
	}
	b.rollovers.Add(context.Background(), 1)
}

func (b *otelBridge) onError() {
	if b == nil {
		return
	}
	b.errs.Add(context.Background(), 1)
}
