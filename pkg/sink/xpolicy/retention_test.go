package xpolicy

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeAged 创建指定大小和修改时间的文件
func writeAged(t *testing.T, path string, size int, mtime time.Time) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, make([]byte, size), 0644))
	require.NoError(t, os.Chtimes(path, mtime, mtime))
}

// TestSweepMaxHistory 测试超龄文件被删除
//
// 对应场景：max_history=2，跨 3 天以上的滚动文件在下一次清扫后消失。
func TestSweepMaxHistory(t *testing.T) {
	tmpDir := t.TempDir()
	active := filepath.Join(tmpDir, "app.log")
	now := time.Now()

	p, err := NewTimeBasedRolling(active,
		WithMaxHistory(2),
		WithTotalSizeCap(4096),
	)
	require.NoError(t, err)

	fresh := filepath.Join(tmpDir, "app.log.2026-08-29.1")
	stale1 := filepath.Join(tmpDir, "app.log.2026-08-25.1")
	stale2 := filepath.Join(tmpDir, "app.log.2026-08-24.2")
	writeAged(t, fresh, 100, now.Add(-time.Hour))
	writeAged(t, stale1, 100, now.Add(-4*24*time.Hour))
	writeAged(t, stale2, 100, now.Add(-5*24*time.Hour))
	writeAged(t, active, 100, now)

	p.RollOver(active)

	assert.FileExists(t, fresh)
	assert.NoFileExists(t, stale1)
	assert.NoFileExists(t, stale2)
	assert.FileExists(t, active, "活动文件豁免")
}

// TestSweepTotalSizeCap 测试总量上限优先保留新文件
func TestSweepTotalSizeCap(t *testing.T) {
	tmpDir := t.TempDir()
	active := filepath.Join(tmpDir, "app.log")
	now := time.Now()

	p, err := NewTimeBasedRolling(active,
		WithMaxHistory(3650),
		WithTotalSizeCap(4096),
	)
	require.NoError(t, err)

	newest := filepath.Join(tmpDir, "app.log.2026-08-29.3")
	middle := filepath.Join(tmpDir, "app.log.2026-08-29.2")
	oldest := filepath.Join(tmpDir, "app.log.2026-08-29.1")
	writeAged(t, newest, 2048, now.Add(-1*time.Hour))
	writeAged(t, middle, 2048, now.Add(-2*time.Hour))
	writeAged(t, oldest, 2048, now.Add(-3*time.Hour))

	p.RollOver(active)

	// 2048+2048 恰好等于上限，最旧的第三个会突破上限被删除
	assert.FileExists(t, newest)
	assert.FileExists(t, middle)
	assert.NoFileExists(t, oldest)

	// 保留文件的总大小不超过上限
	var total int64
	entries, err := os.ReadDir(tmpDir)
	require.NoError(t, err)
	for _, e := range entries {
		info, err := e.Info()
		require.NoError(t, err)
		total += info.Size()
	}
	assert.LessOrEqual(t, total, int64(4096))
}

// TestSweepIgnoresForeignFiles 测试不匹配本策略模式的文件不受影响
func TestSweepIgnoresForeignFiles(t *testing.T) {
	tmpDir := t.TempDir()
	active := filepath.Join(tmpDir, "app.log")
	now := time.Now()

	p, err := NewTimeBasedRolling(active, WithMaxHistory(1), WithTotalSizeCap(1024))
	require.NoError(t, err)

	foreign := filepath.Join(tmpDir, "other.log")
	unrelated := filepath.Join(tmpDir, "app.log.bak")
	writeAged(t, foreign, 4096, now.Add(-30*24*time.Hour))
	writeAged(t, unrelated, 4096, now.Add(-30*24*time.Hour))

	p.RollOver(active)

	assert.FileExists(t, foreign)
	assert.FileExists(t, unrelated)
}

// TestSweepScanFailure 测试目录扫描失败时静默放弃
func TestSweepScanFailure(t *testing.T) {
	p, err := NewTimeBasedRolling("/nonexistent-dir-logsink-test/app.log")
	require.NoError(t, err)

	// 不应 panic，也不应返回错误（契约上没有错误通道）
	assert.NotPanics(t, func() {
		p.RollOver("/nonexistent-dir-logsink-test/app.log")
	})
}

// TestSweepCacheReuse 测试 TTL 内目录快照被复用
func TestSweepCacheReuse(t *testing.T) {
	tmpDir := t.TempDir()
	active := filepath.Join(tmpDir, "app.log")
	now := time.Now()

	p, err := NewTimeBasedRolling(active, WithMaxHistory(2), WithTotalSizeCap(1<<20))
	require.NoError(t, err)

	// 首次清扫没有删除，目录快照进入缓存
	p.RollOver(active)

	// 快照生效期间新出现的超龄文件不会被本轮看到
	late := filepath.Join(tmpDir, "app.log.2026-08-20.1")
	writeAged(t, late, 100, now.Add(-10*24*time.Hour))
	p.RollOver(active)
	assert.FileExists(t, late, "TTL 内应复用缓存快照")

	// 显式失效后重新扫描，超龄文件被删除
	p.cache.invalidate(tmpDir)
	p.RollOver(active)
	assert.NoFileExists(t, late)
}

// TestSweepInvalidatesCacheAfterDeletion 测试删除后缓存被强制失效
func TestSweepInvalidatesCacheAfterDeletion(t *testing.T) {
	tmpDir := t.TempDir()
	active := filepath.Join(tmpDir, "app.log")
	now := time.Now()

	p, err := NewTimeBasedRolling(active, WithMaxHistory(2), WithTotalSizeCap(1<<20))
	require.NoError(t, err)

	stale := filepath.Join(tmpDir, "app.log.2026-08-20.1")
	writeAged(t, stale, 100, now.Add(-10*24*time.Hour))

	p.RollOver(active)
	assert.NoFileExists(t, stale)

	// 上一轮发生了删除，缓存已失效：这一轮必然重新扫描，
	// 新出现的超龄文件立即被清理
	stale2 := filepath.Join(tmpDir, "app.log.2026-08-21.1")
	writeAged(t, stale2, 100, now.Add(-9*24*time.Hour))
	p.RollOver(active)
	assert.NoFileExists(t, stale2)
}
