// Package xflock 提供跨进程的文件咨询锁（advisory lock）。
//
// 咨询锁是协作式的：只有显式获取锁的参与方才会互相排斥。logsink 用它
// 协调多个进程向同一日志文件的写入，锁只在真正写盘期间持有，
// 缓冲阶段不加锁，以最小化跨进程竞争窗口。
//
// # 平台支持
//
// Locker 是锁策略接口。Unix 平台（linux/darwin/bsd）使用 flock(2)
// 实现；其他平台退化为 no-op 实现——单进程内的写入顺序仍由
// handler 的单写者设计保证，但失去跨进程互斥。需要跨进程互斥的
// 部署应限定在 POSIX 类环境。
//
// # 使用约定
//
//   - Lock/Unlock 必须针对同一个打开的文件描述符成对调用
//   - 文件重新打开（如日志轮转）后必须通过 [New] 重新创建 Locker
//   - Lock 是阻塞式的，持锁方崩溃时内核自动释放
package xflock
