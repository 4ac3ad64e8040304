//go:build unix

package xflock

import (
	"os"

	"golang.org/x/sys/unix"
)

// flockLocker 基于 flock(2) 的排他锁实现。
type flockLocker struct {
	f *os.File
}

func newLocker(f *os.File) Locker {
	return &flockLocker{f: f}
}

// Lock 获取排他锁。EINTR 时重试，其余错误原样返回。
func (l *flockLocker) Lock() error {
	for {
		err := unix.Flock(int(l.f.Fd()), unix.LOCK_EX)
		if err != unix.EINTR {
			return err
		}
	}
}

// Unlock 释放锁。
func (l *flockLocker) Unlock() error {
	return unix.Flock(int(l.f.Fd()), unix.LOCK_UN)
}
