package xpolicy

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock 可手动推进的测试时钟
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock(t time.Time) *fakeClock {
	return &fakeClock{t: t}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// =============================================================================
// 配置验证测试
// =============================================================================

// TestNewSizeTriggerValidation 测试配置验证
func TestNewSizeTriggerValidation(t *testing.T) {
	tests := []struct {
		name    string
		maxSize int64
		opts    []SizeTriggerOption
		wantErr error
	}{
		{
			name:    "阈值为零",
			maxSize: 0,
			wantErr: ErrInvalidMaxSize,
		},
		{
			name:    "阈值为负数",
			maxSize: -1,
			wantErr: ErrInvalidMaxSize,
		},
		{
			name:    "检查间隔为负数",
			maxSize: 1024,
			opts:    []SizeTriggerOption{WithCheckInterval(-time.Second)},
			wantErr: ErrInvalidCheckInterval,
		},
		{
			name:    "合法配置",
			maxSize: 1024,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, err := NewSizeTrigger(tt.maxSize, tt.opts...)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, tr)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, tr)
		})
	}
}

// TestNewSizeTriggerNilOption 测试 nil option 被静默忽略
func TestNewSizeTriggerNilOption(t *testing.T) {
	tr, err := NewSizeTrigger(1024, nil, WithCheckInterval(time.Second), nil)
	require.NoError(t, err)
	assert.NotNil(t, tr)
}

// =============================================================================
// 触发行为测试
// =============================================================================

// TestIsTriggeredRealCheck 测试真实 stat 路径
func TestIsTriggeredRealCheck(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "app.log")
	require.NoError(t, os.WriteFile(path, make([]byte, 2048), 0644))

	tr, err := NewSizeTrigger(1024, WithCheckInterval(0))
	require.NoError(t, err)

	// 文件已超过阈值，真实检查必须触发
	assert.True(t, tr.IsTriggered(path, 10))
}

// TestIsTriggeredBelowThreshold 测试未达阈值不触发
func TestIsTriggeredBelowThreshold(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "app.log")
	require.NoError(t, os.WriteFile(path, make([]byte, 100), 0644))

	tr, err := NewSizeTrigger(1024, WithCheckInterval(0))
	require.NoError(t, err)

	assert.False(t, tr.IsTriggered(path, 10))
}

// TestIsTriggeredEstimatePath 测试检查间隔内的估算路径
func TestIsTriggeredEstimatePath(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "app.log")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	clock := newFakeClock(time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC))
	tr, err := NewSizeTrigger(1024,
		WithCheckInterval(time.Hour),
		WithTriggerClock(clock.Now),
	)
	require.NoError(t, err)

	// 首次调用执行真实检查（空文件，不触发），并重置计时
	assert.False(t, tr.IsTriggered(path, 100))

	// 此后每条记录按 len+100 估算累计：5 次后 1000 字节仍未达阈值
	for i := 0; i < 5; i++ {
		assert.False(t, tr.IsTriggered(path, 100), "估算第 %d 次不应触发", i+1)
	}
	// 第 6 次 1200 >= 1024，触发
	assert.True(t, tr.IsTriggered(path, 100))
}

// TestIsTriggeredEstimateResetOnRealCheck 测试间隔到期后估算被权威大小重置
func TestIsTriggeredEstimateResetOnRealCheck(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "app.log")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	clock := newFakeClock(time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC))
	tr, err := NewSizeTrigger(1024,
		WithCheckInterval(time.Second),
		WithTriggerClock(clock.Now),
	)
	require.NoError(t, err)

	require.False(t, tr.IsTriggered(path, 100))
	// 估算值已累计到接近阈值
	for i := 0; i < 5; i++ {
		require.False(t, tr.IsTriggered(path, 100))
	}

	// 间隔到期后真实检查：文件仍为空，估算漂移被纠正
	clock.Advance(2 * time.Second)
	assert.False(t, tr.IsTriggered(path, 100))
}

// TestIsTriggeredMissingFile 测试文件缺失时不强制轮转
func TestIsTriggeredMissingFile(t *testing.T) {
	tr, err := NewSizeTrigger(1024, WithCheckInterval(0))
	require.NoError(t, err)

	assert.False(t, tr.IsTriggered(filepath.Join(t.TempDir(), "missing.log"), 10))
}

// TestIsTriggeredStatThrottling 测试 stat 调用频率被间隔约束
func TestIsTriggeredStatThrottling(t *testing.T) {
	clock := newFakeClock(time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC))

	var statCalls int
	tr, err := NewSizeTrigger(1<<20,
		WithCheckInterval(time.Minute),
		WithTriggerClock(clock.Now),
		WithTriggerStat(func(path string) (os.FileInfo, error) {
			statCalls++
			return os.Stat(path)
		}),
	)
	require.NoError(t, err)

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "app.log")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	for i := 0; i < 100; i++ {
		tr.IsTriggered(path, 50)
	}
	assert.Equal(t, 1, statCalls, "间隔内的调用只应执行一次真实 stat")

	clock.Advance(2 * time.Minute)
	tr.IsTriggered(path, 50)
	assert.Equal(t, 2, statCalls)
}
