// Package xsweeper 提供独立于轮转时机的定时保留清扫。
//
// 保留清扫默认只在轮转时发生，低流量的写入器可能长时间不轮转，
// 过期归档因此迟迟不被删除。Sweeper 基于 robfig/cron/v3 按 cron
// 表达式周期性地对清扫目标执行一次保留清扫，补上这个空窗。
//
// 用法：
//
//	s, err := xsweeper.New(rolling,
//	    xsweeper.WithSchedule("@hourly"),
//	    xsweeper.WithImmediate(),
//	)
//	if err != nil { ... }
//	s.Start()
//	defer s.Stop()
//
// Stop 会等待执行中的清扫完成后才返回。
package xsweeper
