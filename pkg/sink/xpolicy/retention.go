package xpolicy

import (
	"os"
	"path/filepath"
	"sort"
	"time"
)

// dayDuration 保留期按自然天折算
const dayDuration = 24 * time.Hour

// sweep 执行保留清扫。
//
// 按修改时间从新到旧遍历匹配文件，累计保留总量；超龄或会使总量
// 突破上限的文件被删除。当前活动文件豁免。删除尽力而为，发生过
// 删除则强制失效目录缓存。
func (p *TimeBasedRolling) sweep(active string) {
	dir := filepath.Dir(active)

	entries, ok := p.cache.get(dir)
	if !ok {
		scanned, err := p.scanDir(dir)
		if err != nil {
			// 目录扫描失败：本轮静默放弃，下次轮转重试
			return
		}
		entries = scanned
		p.cache.put(dir, entries)
	}

	// 缓存快照可能被并发清扫共享，排序前先复制
	sorted := make([]fileStat, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].modTime.After(sorted[j].modTime)
	})

	now := p.nowFn()
	activeBase := filepath.Base(active)

	var total int64
	var doomed []string
	for _, fs := range sorted {
		if fs.name == activeBase {
			continue
		}
		expired := p.maxHistory > 0 && now.Sub(fs.modTime) > time.Duration(p.maxHistory)*dayDuration
		overflow := p.totalSizeCap > 0 && total+fs.size > p.totalSizeCap
		if expired || overflow {
			doomed = append(doomed, fs.path)
			continue
		}
		total += fs.size
	}

	if len(doomed) == 0 {
		return
	}
	for _, path := range doomed {
		// 单个删除失败不致命，继续处理剩余候选
		_ = os.Remove(path)
	}
	p.cache.invalidate(dir)
}

// SweepNow 立即执行一次保留清扫，独立于轮转时机。
// 供定时清扫器在低流量、长时间不轮转的场景下调用。
func (p *TimeBasedRolling) SweepNow() {
	p.sweep(p.ActiveFileName())
}

// scanDir 扫描目录中匹配本策略命名模式的文件。
func (p *TimeBasedRolling) scanDir(dir string) ([]fileStat, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var entries []fileStat
	for _, entry := range dirEntries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !p.matcher.MatchString(name) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		entries = append(entries, fileStat{
			path:    filepath.Join(dir, name),
			name:    name,
			modTime: info.ModTime(),
			size:    info.Size(),
		})
	}
	return entries, nil
}
