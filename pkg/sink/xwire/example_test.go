package xwire_test

import (
	"fmt"
	"os"

	"github.com/omeyang/logsink/pkg/sink/xwire"
)

func ExampleBuild() {
	tmpDir, err := os.MkdirTemp("", "xwire-example-*")
	if err != nil {
		fmt.Println("创建临时目录失败:", err)
		return
	}
	defer func() { _ = os.RemoveAll(tmpDir) }()

	cfg := xwire.DefaultConfig()
	cfg.LogDir = tmpDir
	cfg.AppName = "demo"
	cfg.Async = true

	sink, err := xwire.Build(cfg)
	if err != nil {
		fmt.Println("装配失败:", err)
		return
	}

	sink.Logger.Info("service started", "port", 8080)

	if err := sink.Close(); err != nil {
		fmt.Println("关闭失败:", err)
		return
	}
	fmt.Println("日志已落盘")
	// Output: 日志已落盘
}

func ExampleLoad() {
	data := []byte(`{"app_name":"orders","level":"debug"}`)

	cfg, err := xwire.LoadBytes(data, xwire.FormatJSON)
	if err != nil {
		fmt.Println("加载失败:", err)
		return
	}
	fmt.Println(cfg.AppName, cfg.Level)
	// Output: orders debug
}
