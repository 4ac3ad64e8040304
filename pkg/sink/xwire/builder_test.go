package xwire

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omeyang/logsink/pkg/sink/xhandler"
	"github.com/omeyang/logsink/pkg/sink/xpolicy"
	"github.com/omeyang/logsink/pkg/sink/xsweeper"
)

// newTestConfig 指向临时目录的最小可用配置
func newTestConfig(t *testing.T) Config {
	t.Helper()
	cfg := DefaultConfig()
	cfg.LogDir = t.TempDir()
	cfg.AppName = "testapp"
	return cfg
}

func TestBuild_配置校验(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{
			name:    "级别无法识别",
			mutate:  func(c *Config) { c.Level = "verbose" },
			wantErr: ErrInvalidLevel,
		},
		{
			name:    "编码无法识别",
			mutate:  func(c *Config) { c.Encoding = "xml" },
			wantErr: ErrInvalidEncoding,
		},
		{
			name: "保留策略全为零",
			mutate: func(c *Config) {
				c.MaxHistory = 0
				c.TotalSizeCap = 0
			},
			wantErr: xpolicy.ErrNoRetentionPolicy,
		},
		{
			name:    "文件大小上限为零",
			mutate:  func(c *Config) { c.MaxFileSize = 0 },
			wantErr: xpolicy.ErrInvalidMaxSize,
		},
		{
			name:    "队列容量为零",
			mutate:  func(c *Config) { c.Async = true; c.QueueSize = 0 },
			wantErr: xhandler.ErrInvalidQueueSize,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := newTestConfig(t)
			tt.mutate(&cfg)

			sink, err := Build(cfg)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, sink)
		})
	}
}

func TestBuild_同步端到端(t *testing.T) {
	cfg := newTestConfig(t)

	sink, err := Build(cfg)
	require.NoError(t, err)

	sink.Logger.Info("service started", "port", 8080)
	sink.Logger.Debug("dropped by level") // 默认 info 级别
	require.NoError(t, sink.Close())

	data, err := os.ReadFile(sink.Path())
	require.NoError(t, err)
	content := string(data)

	assert.Contains(t, content, "service started")
	assert.Contains(t, content, "port=8080")
	assert.Contains(t, content, "app=testapp")
	assert.Contains(t, content, "link_id=")
	assert.NotContains(t, content, "dropped by level")

	snap := sink.Metrics()
	assert.EqualValues(t, 1, snap[xhandler.MetricWrittenRecords])
}

func TestBuild_异步端到端(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.Async = true
	cfg.Encoding = "json"

	sink, err := Build(cfg)
	require.NoError(t, err)

	for i := 0; i < 50; i++ {
		sink.Logger.Info("event", "seq", i)
	}
	require.NoError(t, sink.Close())

	data, err := os.ReadFile(sink.Path())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	assert.Len(t, lines, 50, "Close 排空后所有日志都应落盘")
	assert.Contains(t, lines[0], `"app":"testapp"`)
}

func TestBuild_并发写入(t *testing.T) {
	cfg := newTestConfig(t)

	sink, err := Build(cfg)
	require.NoError(t, err)

	const goroutines, perG = 4, 25
	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < perG; i++ {
				sink.Logger.Info("concurrent", "worker", g, "seq", i)
			}
		}(g)
	}
	wg.Wait()
	require.NoError(t, sink.Close())

	data, err := os.ReadFile(sink.Path())
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	assert.Len(t, lines, goroutines*perG, "并发写入不得丢失或撕裂记录")
}

func TestBuild_定时清扫装配(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.SweepSchedule = "@hourly"

	sink, err := Build(cfg)
	require.NoError(t, err)
	require.NotNil(t, sink.sweeper)
	require.NoError(t, sink.Close())

	// 非法表达式在装配期报错
	cfg.SweepSchedule = "definitely not cron"
	cfg.LogDir = t.TempDir()
	_, err = Build(cfg)
	require.ErrorIs(t, err, xsweeper.ErrInvalidSchedule)
}

func TestConfig_Validate无副作用(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LogDir = filepath.Join(t.TempDir(), "not-created")
	cfg.SweepSchedule = "@hourly"

	require.NoError(t, cfg.Validate())

	// 校验不触碰文件系统
	_, err := os.Stat(cfg.LogDir)
	assert.True(t, os.IsNotExist(err))

	cfg.SweepSchedule = "bad spec"
	require.ErrorIs(t, cfg.Validate(), xsweeper.ErrInvalidSchedule)
}

func TestSink_Close幂等(t *testing.T) {
	sink, err := Build(newTestConfig(t))
	require.NoError(t, err)

	require.NoError(t, sink.Close())
	require.NoError(t, sink.Close())
}
