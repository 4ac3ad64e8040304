package xsweeper

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultSchedule 默认清扫周期
const DefaultSchedule = "@hourly"

// Target 可被定时清扫的对象。
// *xpolicy.TimeBasedRolling 是标准实现。
type Target interface {
	// SweepNow 立即执行一次保留清扫。实现必须可并发安全地重复调用。
	SweepNow()
}

type config struct {
	schedule  string
	immediate bool
	location  *time.Location
}

// Option Sweeper 配置选项函数
type Option func(*config)

// WithSchedule 设置清扫周期的 cron 表达式，
// 如 "@hourly"、"@every 30m" 或 "0 3 * * *"。
func WithSchedule(spec string) Option {
	return func(c *config) {
		if spec != "" {
			c.schedule = spec
		}
	}
}

// WithImmediate 让 Start 先同步执行一次清扫，再进入周期调度。
// 适合进程重启后立即回收积压的过期归档。
func WithImmediate() Option {
	return func(c *config) {
		c.immediate = true
	}
}

// WithLocation 设置 cron 表达式求值使用的时区，默认本地时区。
func WithLocation(loc *time.Location) Option {
	return func(c *config) {
		if loc != nil {
			c.location = loc
		}
	}
}

// Sweeper 周期性保留清扫器。
//
// 封装 robfig/cron/v3 的单任务调度。Start/Stop 幂等，
// Stop 等待执行中的清扫完成后返回。
type Sweeper struct {
	cron   *cron.Cron
	target Target
	cfg    config

	started atomic.Bool
	stopped atomic.Bool
	runs    atomic.Int64
	lastRun atomic.Int64 // Unix 纳秒，0 表示尚未执行
}

// New 创建清扫器并注册调度任务。表达式解析错误在此时返回。
func New(target Target, opts ...Option) (*Sweeper, error) {
	if target == nil {
		return nil, ErrNilTarget
	}

	cfg := config{
		schedule: DefaultSchedule,
		location: time.Local,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	s := &Sweeper{
		cron:   cron.New(cron.WithLocation(cfg.location)),
		target: target,
		cfg:    cfg,
	}
	if _, err := s.cron.AddFunc(cfg.schedule, s.run); err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrInvalidSchedule, cfg.schedule, err)
	}
	return s, nil
}

// Start 启动周期调度（非阻塞）。重复调用无效果。
// 配置了 WithImmediate 时先同步执行一次清扫再启动调度。
func (s *Sweeper) Start() {
	if s.started.Swap(true) {
		return
	}
	if s.cfg.immediate {
		s.run()
	}
	s.cron.Start()
}

// Stop 停止调度并等待执行中的清扫完成。重复调用无效果。
func (s *Sweeper) Stop() {
	if s.stopped.Swap(true) {
		return
	}
	<-s.cron.Stop().Done()
}

// Runs 返回累计清扫次数。
func (s *Sweeper) Runs() int64 {
	return s.runs.Load()
}

// LastRun 返回最近一次清扫的完成时间，尚未执行时为零值。
func (s *Sweeper) LastRun() time.Time {
	ns := s.lastRun.Load()
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns)
}

func (s *Sweeper) run() {
	s.target.SweepNow()
	s.runs.Add(1)
	s.lastRun.Store(time.Now().UnixNano())
}
