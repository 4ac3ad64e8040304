package xhandler

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/omeyang/logsink/pkg/sink/xpolicy"
	"github.com/omeyang/logsink/pkg/util/xfile"
	"github.com/omeyang/logsink/pkg/util/xflock"

	retry "github.com/avast/retry-go/v5"
)

// 文件流重开的重试参数
const (
	reopenAttempts = 3
	reopenDelay    = 10 * time.Millisecond
)

// 编译时断言：Handler 可直接作为日志前端的输出目标
var _ io.WriteCloser = (*Handler)(nil)

// Handler 带缓冲的轮转日志写入器。
//
// Handler 不做内部加锁，调用方必须保证单写者（见包文档）。
// 所有落盘失败都在内部降级，Emit/Flush 不向调用方传播错误。
type Handler struct {
	cfg     config
	rolling xpolicy.RollingPolicy
	trigger xpolicy.TriggeringPolicy

	path    string
	buf     bytes.Buffer
	file    *os.File
	lock    xflock.Locker
	metrics *Metrics

	closed atomic.Bool
}

// NewHandler 创建写入器并打开活动文件。
//
// 活动文件路径由滚动策略给出；父目录不存在时自动创建。
// 构造期的错误（配置无效、目录/文件无法创建）正常返回，
// 降级语义从构造成功后开始。
func NewHandler(rolling xpolicy.RollingPolicy, trigger xpolicy.TriggeringPolicy, opts ...Option) (*Handler, error) {
	if rolling == nil {
		return nil, ErrNilRollingPolicy
	}
	if trigger == nil {
		return nil, ErrNilTriggeringPolicy
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	if cfg.bufferSize <= 0 {
		return nil, fmt.Errorf("%w: got %d, want > 0", ErrInvalidBufferSize, cfg.bufferSize)
	}
	if cfg.fileMode&^os.FileMode(0o777) != 0 {
		return nil, fmt.Errorf("%w: got %04o, only permission bits allowed", ErrInvalidFileMode, cfg.fileMode)
	}

	path, err := xfile.SanitizePath(rolling.ActiveFileName())
	if err != nil {
		return nil, err
	}
	if err := xfile.EnsureDir(path); err != nil {
		return nil, err
	}
	if cfg.backupDir == "" {
		cfg.backupDir = filepath.Join(filepath.Dir(path), DefaultBackupDirName)
	}

	var bridge *otelBridge
	if cfg.metricsEnabled && cfg.meterProvider != nil {
		bridge, err = newOTelBridge(cfg.meterProvider)
		if err != nil {
			return nil, err
		}
	}

	h := &Handler{
		cfg:     cfg,
		rolling: rolling,
		trigger: trigger,
		path:    path,
		metrics: newMetrics(cfg.metricsEnabled, bridge),
	}
	if err := h.openStream(); err != nil {
		return nil, err
	}
	return h, nil
}

// Path 返回活动文件路径。
func (h *Handler) Path() string {
	return h.path
}

// Metrics 返回写入器的指标，可随时 Snapshot。
func (h *Handler) Metrics() *Metrics {
	return h.metrics
}

// Emit 把一条记录追加到内存缓冲。
//
// 追加会使缓冲超过上限时先 Flush 再追加。关闭后调用为空操作。
func (h *Handler) Emit(rec Record) {
	if h.closed.Load() {
		return
	}

	start := h.cfg.nowFn()
	if h.buf.Len()+rec.Size() > h.cfg.bufferSize {
		h.flush()
	}
	h.buf.Write(rec.Bytes())

	now := h.cfg.nowFn()
	h.metrics.recordWrite(rec.Size(), now.Sub(start), now)
}

// Flush 把缓冲内容落盘，必要时先执行轮转。
// 缓冲为空时为空操作；任何失败在内部降级。
func (h *Handler) Flush() {
	if h.closed.Load() {
		return
	}
	h.flush()
}

// Write 实现 io.Writer，使 Handler 可直接作为 slog 等日志前端的
// 输出目标（每次调用视为一条完整记录）。除已关闭外总是报告成功：
// 落盘失败由内部降级消化，日志组件不应反向中断业务。
func (h *Handler) Write(p []byte) (int, error) {
	if h.closed.Load() {
		return 0, ErrClosed
	}
	h.Emit(NewRecordBytes(p))
	return len(p), nil
}

// Close 落盘剩余缓冲并关闭活动文件。
// 关闭后再调用 Write 返回 [ErrClosed]；重复 Close 同样返回 [ErrClosed]。
func (h *Handler) Close() error {
	if h.closed.Swap(true) {
		return ErrClosed
	}

	h.flush()
	if h.file == nil {
		return nil
	}

	syncErr := h.file.Sync()
	closeErr := h.file.Close()
	h.file, h.lock = nil, nil
	if syncErr != nil {
		return fmt.Errorf("xhandler: sync failed: %w", syncErr)
	}
	return closeErr
}

// flush 实际的落盘流程：触发检查 → 可选轮转 → 持锁写盘 → 清空缓冲。
func (h *Handler) flush() {
	if h.buf.Len() == 0 {
		return
	}

	if h.trigger.IsTriggered(h.path, 0) {
		h.rollover()
	}

	if h.file == nil {
		if err := h.reopen(); err != nil {
			h.handleError(err)
			return
		}
	}

	if err := h.writeLocked(); err != nil {
		// 下次 flush 以全新文件流重试
		h.closeStream()
		h.handleError(err)
		return
	}
	h.buf.Reset()
}

// writeLocked 在跨进程文件锁保护下写入整个缓冲。
// 锁只在写盘期间持有，缓冲阶段不持锁。
func (h *Handler) writeLocked() error {
	if err := h.lock.Lock(); err != nil {
		return err
	}
	defer func() { _ = h.lock.Unlock() }()

	if _, err := h.file.Write(h.buf.Bytes()); err != nil {
		return err
	}
	return h.file.Sync()
}

// rollover 执行一次轮转：关闭活动文件流、按策略命名归档
// （重命名或 gzip 压缩）、保留清扫、重开活动文件。
// 与 flush 的互斥由单写者约定保证，不引入额外锁。
func (h *Handler) rollover() {
	h.closeStream()

	rolled := h.rolling.RolledFileName(h.path)
	if _, err := os.Stat(h.path); err == nil {
		if err := h.archive(h.path, rolled); err != nil {
			h.handleError(err)
		}
	}

	h.rolling.RollOver(h.path)

	if err := h.reopen(); err != nil {
		h.handleError(err)
		return
	}
	h.metrics.recordRollover()
}

// archive 把活动文件归档到滚动目标。
// 目标名以 .gz 结尾时压缩后删除原文件，否则直接重命名
// （命名即机制，见 xpolicy.RollingPolicy）。
func (h *Handler) archive(active, rolled string) error {
	if strings.HasSuffix(rolled, ".gz") {
		if err := compressFile(active, rolled, h.cfg.fileMode); err != nil {
			return err
		}
		return os.Remove(active)
	}
	return os.Rename(active, rolled)
}

// openStream 打开活动文件并绑定新的锁句柄。
func (h *Handler) openStream() error {
	f, err := os.OpenFile(h.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, h.cfg.fileMode)
	if err != nil {
		return err
	}
	l, err := xflock.New(f)
	if err != nil {
		_ = f.Close()
		return err
	}
	h.file, h.lock = f, l
	return nil
}

// closeStream 关闭活动文件流。锁随描述符关闭由内核释放。
func (h *Handler) closeStream() {
	if h.file == nil {
		return
	}
	_ = h.file.Close()
	h.file, h.lock = nil, nil
}

// reopen 带有限重试地重开活动文件，吸收短暂的文件系统抖动。
func (h *Handler) reopen() error {
	return retry.New(
		retry.Attempts(reopenAttempts),
		retry.Delay(reopenDelay),
		retry.LastErrorOnly(true),
	).Do(h.openStream)
}

// handleError 故障降级：错误计数、当前缓冲尽力写入备份、清空缓冲。
// 绝不向调用方传播。
func (h *Handler) handleError(cause error) {
	h.metrics.recordError()
	h.reportError(cause)
	h.spill(h.buf.Bytes())
	h.buf.Reset()
}

// handleDropped 单条记录的降级路径（异步队列饱和或关闭竞态）。
// 只依赖原子计数和独立的备份写入，可从生产者协程安全调用。
func (h *Handler) handleDropped(rec Record, cause error) {
	h.metrics.recordError()
	h.reportError(cause)
	h.spill(rec.Bytes())
}

// spill 把数据尽力写入备份目录的时间戳文件，吞掉一切次级错误。
func (h *Handler) spill(data []byte) {
	if len(data) == 0 {
		return
	}
	if err := os.MkdirAll(h.cfg.backupDir, xfile.DefaultDirPerm); err != nil {
		return
	}

	name := fmt.Sprintf("backup_%d.log", h.cfg.nowFn().UnixNano())
	f, err := os.OpenFile(filepath.Join(h.cfg.backupDir, name),
		os.O_APPEND|os.O_CREATE|os.O_WRONLY, h.cfg.fileMode)
	if err != nil {
		return
	}
	defer f.Close()
	_, _ = f.Write(data)
}

// reportError 通过回调上报内部错误，回调 panic 被隔离。
func (h *Handler) reportError(err error) {
	if err == nil || h.cfg.onError == nil {
		return
	}
	defer func() { _ = recover() }()
	h.cfg.onError(err)
}

// compressFile 把 src 压缩为 gzip 文件 dst。
// 任一环节失败时清理残留的目标文件。
func compressFile(src, dst string, mode os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, mode)
	if err != nil {
		return err
	}

	gz := gzip.NewWriter(out)
	if _, err := io.Copy(gz, in); err != nil {
		_ = gz.Close()
		_ = out.Close()
		_ = os.Remove(dst)
		return err
	}
	if err := gz.Close(); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(dst)
		return err
	}
	return nil
}
