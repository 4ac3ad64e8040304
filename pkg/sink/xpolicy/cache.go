package xpolicy

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// 目录列表缓存参数
const (
	// cacheTTL 目录列表快照的有效期
	cacheTTL = time.Hour

	// maxCachedDirs 缓存的目录数量上限。
	// 单个策略实例通常只管理一个目录，上限只是防御共享目录的极端配置
	maxCachedDirs = 16
)

// fileStat 目录项快照：路径、修改时间、大小。
type fileStat struct {
	path    string
	name    string
	modTime time.Time
	size    int64
}

// listingCache 带 TTL 的目录列表缓存。
//
// 快照在 TTL 内复用，发生删除后必须显式失效，下次清扫重新扫描。
// 底层 expirable.LRU 自带锁，读取与失效天然互斥。
type listingCache struct {
	lru *expirable.LRU[string, []fileStat]
}

func newListingCache(ttl time.Duration) *listingCache {
	return &listingCache{
		lru: expirable.NewLRU[string, []fileStat](maxCachedDirs, nil, ttl),
	}
}

// get 返回目录的缓存快照，过期或不存在时 ok 为 false。
func (c *listingCache) get(dir string) ([]fileStat, bool) {
	return c.lru.Get(dir)
}

// put 写入目录快照并刷新 TTL。
func (c *listingCache) put(dir string, entries []fileStat) {
	c.lru.Add(dir, entries)
}

// invalidate 强制失效目录快照。
func (c *listingCache) invalidate(dir string) {
	c.lru.Remove(dir)
}
