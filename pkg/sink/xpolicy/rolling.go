package xpolicy

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"
)

// 时间滚动策略默认值
const (
	// DefaultMaxHistory 默认保留历史文件的天数
	DefaultMaxHistory = 15

	// DefaultTotalSizeCap 默认保留历史文件的总大小上限（1 GiB）
	DefaultTotalSizeCap = 1 << 30

	// maxHistoryDays 保留天数上限（约 10 年）
	maxHistoryDays = 3650

	// rolledDateLayout 滚动文件名中的日期分桶格式
	rolledDateLayout = "2006-01-02"
)

// 编译时断言：TimeBasedRolling 实现 RollingPolicy 接口
var _ RollingPolicy = (*TimeBasedRolling)(nil)

// TimeBasedRolling 基于时间的滚动策略。
//
// 活动文件名由模式按当前日期渲染（支持 %Y/%m/%d 指令，普通路径
// 原样返回）。滚动文件命名为 <active>.<YYYY-MM-DD>.<index>，日期
// 变化时序号归零，每次计算滚动名序号加一；启用压缩时追加 .gz。
type TimeBasedRolling struct {
	pattern      string
	maxHistory   int
	totalSizeCap int64
	compress     bool

	matcher *regexp.Regexp
	cache   *listingCache

	mu           sync.Mutex
	currentDate  string
	currentIndex int

	// 可注入的时钟（nil 时使用标准库），仅用于测试
	nowFn func() time.Time
}

// RollingOption TimeBasedRolling 配置选项函数
type RollingOption func(*TimeBasedRolling)

// WithMaxHistory 设置历史文件保留天数。
// 0 表示不按天数清理（但仍受 TotalSizeCap 约束）。
func WithMaxHistory(days int) RollingOption {
	return func(p *TimeBasedRolling) {
		p.maxHistory = days
	}
}

// WithTotalSizeCap 设置历史文件总大小上限（字节）。
// 0 表示不按总量清理（但仍受 MaxHistory 约束）。
func WithTotalSizeCap(capBytes int64) RollingOption {
	return func(p *TimeBasedRolling) {
		p.totalSizeCap = capBytes
	}
}

// WithCompress 设置滚动文件是否以 gzip 压缩。
// 启用时 RolledFileName 返回的名字以 .gz 结尾。
func WithCompress(compress bool) RollingOption {
	return func(p *TimeBasedRolling) {
		p.compress = compress
	}
}

// WithRollingClock 注入时钟，仅用于测试。
func WithRollingClock(now func() time.Time) RollingOption {
	return func(p *TimeBasedRolling) {
		if now != nil {
			p.nowFn = now
		}
	}
}

// NewTimeBasedRolling 创建基于时间的滚动策略。
//
// 参数:
//   - pattern: 活动文件路径模式，可包含 %Y/%m/%d 日期指令
//   - opts: 可选配置项
func NewTimeBasedRolling(pattern string, opts ...RollingOption) (*TimeBasedRolling, error) {
	if pattern == "" {
		return nil, ErrEmptyPattern
	}

	p := &TimeBasedRolling{
		pattern:      pattern,
		maxHistory:   DefaultMaxHistory,
		totalSizeCap: DefaultTotalSizeCap,
		nowFn:        time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}

	if p.maxHistory < 0 || p.maxHistory > maxHistoryDays {
		return nil, fmt.Errorf("%w: got %d, want 0~%d", ErrInvalidMaxHistory, p.maxHistory, maxHistoryDays)
	}
	if p.totalSizeCap < 0 {
		return nil, fmt.Errorf("%w: got %d, want >= 0", ErrInvalidSizeCap, p.totalSizeCap)
	}
	if p.maxHistory == 0 && p.totalSizeCap == 0 {
		return nil, fmt.Errorf("%w: MaxHistory and TotalSizeCap cannot both be 0", ErrNoRetentionPolicy)
	}

	matcher, err := compileMatcher(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEmptyPattern, err)
	}
	p.matcher = matcher
	p.cache = newListingCache(cacheTTL)
	p.currentDate = p.nowFn().Format(rolledDateLayout)

	return p, nil
}

// ActiveFileName 返回按当前日期渲染后的活动文件路径。
func (p *TimeBasedRolling) ActiveFileName() string {
	return renderPattern(p.pattern, p.nowFn())
}

// RolledFileName 计算滚动目标路径并递增当日序号。
func (p *TimeBasedRolling) RolledFileName(active string) string {
	p.mu.Lock()
	defer p.mu.Unlock()

	date := p.nowFn().Format(rolledDateLayout)
	if date != p.currentDate {
		p.currentDate = date
		p.currentIndex = 0
	}
	p.currentIndex++

	name := fmt.Sprintf("%s.%s.%d", active, p.currentDate, p.currentIndex)
	if p.compress {
		name += ".gz"
	}
	return name
}

// RollOver 执行轮转后的保留清扫。
func (p *TimeBasedRolling) RollOver(active string) {
	p.sweep(active)
}

// renderPattern 按给定时刻渲染模式中的 %Y/%m/%d 日期指令。
func renderPattern(pattern string, now time.Time) string {
	if !strings.ContainsRune(pattern, '%') {
		return pattern
	}
	r := strings.NewReplacer(
		"%Y", now.Format("2006"),
		"%m", now.Format("01"),
		"%d", now.Format("02"),
	)
	return r.Replace(pattern)
}

// compileMatcher 把活动文件模式编译为历史文件匹配器。
//
// 匹配器作用于目录项的基础名，接受活动文件本身以及
// <base>.<YYYY-MM-DD>.<index>[.gz] 形式的滚动文件。
func compileMatcher(pattern string) (*regexp.Regexp, error) {
	base := filepath.Base(pattern)

	var sb strings.Builder
	sb.WriteString("^")
	for i := 0; i < len(base); {
		if base[i] == '%' && i+1 < len(base) {
			switch base[i+1] {
			case 'Y':
				sb.WriteString(`\d{4}`)
				i += 2
				continue
			case 'm', 'd':
				sb.WriteString(`\d{2}`)
				i += 2
				continue
			}
		}
		sb.WriteString(regexp.QuoteMeta(string(base[i])))
		i++
	}
	sb.WriteString(`(\.\d{4}-\d{2}-\d{2}\.\d+(\.gz)?)?$`)

	return regexp.Compile(sb.String())
}
