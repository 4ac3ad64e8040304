package xwire

import (
	"testing"

	"go.uber.org/goleak"
)

// TestMain 在所有测试完成后检测 goroutine 泄漏，
// 覆盖异步写入器、定时清扫器与 fsnotify 监视循环的退出路径。
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		// 设计决策: expirable.NewLRU 启动的内部清理 goroutine 无法被停止
		// （v2.0.7 未提供 Close），属上游已知限制，无法在本层修复。
		goleak.IgnoreTopFunction("github.com/hashicorp/golang-lru/v2/expirable.NewLRU[...].func1"),
	)
}
