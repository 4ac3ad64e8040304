package xflock

import "os"

// Locker 文件咨询锁策略接口。
//
// 所有实现必须满足：Lock 阻塞直到获得排他锁；Unlock 立即释放。
// Locker 绑定到创建时传入的文件描述符，文件关闭后不可复用。
type Locker interface {
	// Lock 获取排他锁，阻塞直到成功或出错
	Lock() error

	// Unlock 释放锁
	Unlock() error
}

// New 为已打开的文件创建平台对应的 Locker。
// 文件为 nil 时返回 [ErrNilFile]。
func New(f *os.File) (Locker, error) {
	if f == nil {
		return nil, ErrNilFile
	}
	return newLocker(f), nil
}
