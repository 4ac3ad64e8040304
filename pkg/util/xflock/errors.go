package xflock

import "errors"

var (
	// ErrNilFile 表示传入的文件句柄为 nil。
	ErrNilFile = errors.New("xflock: nil file")
)
