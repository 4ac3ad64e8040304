// Package xwire 把策略、写入器与清扫器装配为可直接使用的 slog 日志后端。
//
// 提供四块能力：
//   - Config/Load: 基于 koanf 的配置加载（YAML/JSON），带生产默认值
//   - Build: 按配置装配滚动策略、触发策略、同步/异步写入器与定时清扫
//   - LinkHandler: slog 装饰器，为每条日志注入应用名与链路 ID
//   - Watch: 基于 fsnotify 的配置文件热加载通知
//
// 用法：
//
//	cfg, err := xwire.Load("/etc/app/logsink.yaml")
//	if err != nil { ... }
//	sink, err := xwire.Build(cfg)
//	if err != nil { ... }
//	defer sink.Close()
//
//	sink.Logger.Info("service started", "port", 8080)
package xwire
