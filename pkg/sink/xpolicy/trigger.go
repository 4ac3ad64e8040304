package xpolicy

import (
	"fmt"
	"os"
	"sync"
	"time"
)

// Size 触发策略默认值
const (
	// DefaultCheckInterval 默认的真实 stat 检查间隔
	DefaultCheckInterval = time.Second

	// estimateOverhead 估算每条记录时附加的固定开销字节数，
	// 覆盖时间戳、级别等格式化前缀的近似长度
	estimateOverhead = 100
)

// 编译时断言：SizeTrigger 实现 TriggeringPolicy 接口
var _ TriggeringPolicy = (*SizeTrigger)(nil)

// SizeTrigger 基于文件大小的触发策略。
//
// 为了限制高写入速率下的 stat 系统调用频率，两次真实检查之间
// 用估算值累计：每条记录按"长度 + estimateOverhead"计入。间隔到期
// 后执行真实 stat，以权威大小重置估算并重置计时。stat 失败
// （如文件缺失）不强制轮转，返回 false。
type SizeTrigger struct {
	maxSize       int64
	checkInterval time.Duration

	mu        sync.Mutex
	lastSize  int64
	lastCheck time.Time

	// 可注入的时钟与系统调用（nil 时使用标准库），仅用于测试
	nowFn  func() time.Time
	statFn func(string) (os.FileInfo, error)
}

// SizeTriggerOption SizeTrigger 配置选项函数
type SizeTriggerOption func(*SizeTrigger)

// WithCheckInterval 设置真实 stat 检查的最小间隔。
// 0 表示每次都执行真实检查。
func WithCheckInterval(d time.Duration) SizeTriggerOption {
	return func(t *SizeTrigger) {
		t.checkInterval = d
	}
}

// WithTriggerClock 注入时钟，仅用于测试。
func WithTriggerClock(now func() time.Time) SizeTriggerOption {
	return func(t *SizeTrigger) {
		if now != nil {
			t.nowFn = now
		}
	}
}

// WithTriggerStat 注入 stat 函数，仅用于测试。
func WithTriggerStat(stat func(string) (os.FileInfo, error)) SizeTriggerOption {
	return func(t *SizeTrigger) {
		if stat != nil {
			t.statFn = stat
		}
	}
}

// NewSizeTrigger 创建基于大小的触发策略。
//
// 参数:
//   - maxSize: 活动文件的大小阈值（字节），必须 > 0
//   - opts: 可选配置项
func NewSizeTrigger(maxSize int64, opts ...SizeTriggerOption) (*SizeTrigger, error) {
	if maxSize <= 0 {
		return nil, fmt.Errorf("%w: got %d, want > 0", ErrInvalidMaxSize, maxSize)
	}

	t := &SizeTrigger{
		maxSize:       maxSize,
		checkInterval: DefaultCheckInterval,
		nowFn:         time.Now,
		statFn:        os.Stat,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(t)
		}
	}

	if t.checkInterval < 0 {
		return nil, fmt.Errorf("%w: got %v, want >= 0", ErrInvalidCheckInterval, t.checkInterval)
	}
	return t, nil
}

// IsTriggered 判断写入 recordLen 字节的记录前是否需要轮转。
func (t *SizeTrigger) IsTriggered(activePath string, recordLen int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.nowFn()
	if now.Sub(t.lastCheck) < t.checkInterval {
		t.lastSize += int64(recordLen) + estimateOverhead
		return t.lastSize >= t.maxSize
	}

	info, err := t.statFn(activePath)
	if err != nil {
		// 文件缺失或不可访问时不强制轮转；计时不重置，下次仍做真实检查
		return false
	}

	t.lastSize = info.Size()
	t.lastCheck = now
	return t.lastSize >= t.maxSize
}
