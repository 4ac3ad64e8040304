//go:build !unix

package xflock

import "os"

// noopLocker 非 Unix 平台的退化实现。
//
// 进程内的写入顺序仍由上层的单写者设计保证，但不提供跨进程互斥。
// 详见包文档的平台支持说明。
type noopLocker struct{}

func newLocker(_ *os.File) Locker {
	return noopLocker{}
}

func (noopLocker) Lock() error   { return nil }
func (noopLocker) Unlock() error { return nil }
