package xhandler

import (
	"fmt"
	"io"
	"sync"
	"sync/atomic"
)

// 编译时断言：AsyncHandler 与 Handler 的前端接口一致
var _ io.WriteCloser = (*AsyncHandler)(nil)

// asyncConfig 异步写入器配置
type asyncConfig struct {
	queueSize int
	batchSize int
}

// AsyncOption 异步写入器配置选项函数
type AsyncOption func(*asyncConfig)

// WithQueueSize 设置有界队列容量。
// 队列满时新记录不阻塞生产者，直接旁路到备份目录。
func WithQueueSize(n int) AsyncOption {
	return func(c *asyncConfig) {
		c.queueSize = n
	}
}

// WithBatchSize 设置消费批大小。
// 每攒满一批或队列瞬时为空时触发一次落盘。
func WithBatchSize(n int) AsyncOption {
	return func(c *asyncConfig) {
		c.batchSize = n
	}
}

// AsyncHandler 把同步 Handler 包装为非阻塞的异步写入器。
//
// 生产者经有界队列提交记录，单个消费者协程按批转发给被包装的
// Handler，天然满足其单写者约定。队列满或已停机时记录走降级路径
// （错误计数 + 备份旁路），Emit 永不阻塞。
type AsyncHandler struct {
	h         *Handler
	queue     chan Record
	batchSize int

	stopped  chan struct{}
	done     chan struct{}
	stopOnce sync.Once
	closed   atomic.Bool
}

// NewAsyncHandler 包装已构造的 Handler 并启动消费协程。
// 被包装的 Handler 的生命周期随之移交，Close 时一并关闭。
func NewAsyncHandler(h *Handler, opts ...AsyncOption) (*AsyncHandler, error) {
	if h == nil {
		return nil, ErrNilHandler
	}

	cfg := asyncConfig{
		queueSize: DefaultQueueSize,
		batchSize: DefaultBatchSize,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.queueSize <= 0 {
		return nil, fmt.Errorf("%w: got %d, want > 0", ErrInvalidQueueSize, cfg.queueSize)
	}
	if cfg.batchSize <= 0 {
		return nil, fmt.Errorf("%w: got %d, want > 0", ErrInvalidBatchSize, cfg.batchSize)
	}

	a := &AsyncHandler{
		h:         h,
		queue:     make(chan Record, cfg.queueSize),
		batchSize: cfg.batchSize,
		stopped:   make(chan struct{}),
		done:      make(chan struct{}),
	}
	go a.run()
	return a, nil
}

// Metrics 返回被包装写入器的指标。
func (a *AsyncHandler) Metrics() *Metrics {
	return a.h.Metrics()
}

// Path 返回活动文件路径。
func (a *AsyncHandler) Path() string {
	return a.h.Path()
}

// Emit 非阻塞提交一条记录。
// 队列满或已停机时记录旁路到备份目录并计入错误。
func (a *AsyncHandler) Emit(rec Record) {
	// Close 竞态窗口内向已关闭队列发送会 panic，在此兜底并走降级路径
	defer func() {
		if r := recover(); r != nil {
			a.h.handleDropped(rec, ErrClosed)
		}
	}()

	select {
	case <-a.stopped:
		a.h.handleDropped(rec, ErrClosed)
	case a.queue <- rec:
	default:
		a.h.handleDropped(rec, ErrQueueFull)
	}
}

// Write 实现 io.Writer，语义与 [Handler.Write] 一致。
func (a *AsyncHandler) Write(p []byte) (int, error) {
	if a.closed.Load() {
		return 0, ErrClosed
	}
	a.Emit(NewRecordBytes(p))
	return len(p), nil
}

// Close 停止接收、排空队列中剩余记录后关闭被包装的 Handler。
// 返回前保证已入队的记录全部处理完毕。
func (a *AsyncHandler) Close() error {
	if a.closed.Swap(true) {
		return ErrClosed
	}
	a.stopOnce.Do(func() {
		close(a.stopped)
		close(a.queue)
	})
	<-a.done
	return a.h.Close()
}

// run 消费循环：攒批转发，批满或队列排空时落盘。
// 队列关闭后把通道里的剩余记录全部排完再退出。
func (a *AsyncHandler) run() {
	defer close(a.done)

	batch := make([]Record, 0, a.batchSize)
	flushBatch := func() {
		if len(batch) == 0 {
			return
		}
		for _, rec := range batch {
			a.h.Emit(rec)
		}
		a.h.Flush()
		batch = batch[:0]
	}

	for rec := range a.queue {
		batch = append(batch, rec)
		if len(batch) >= a.batchSize || len(a.queue) == 0 {
			flushBatch()
		}
	}
	flushBatch()
}
