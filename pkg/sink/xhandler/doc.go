// Package xhandler 提供日志落盘的核心写入器。
//
// Handler 持有内存缓冲、活动文件流和跨进程文件锁：Emit 把预格式化的
// 记录追加到缓冲（必要时先 Flush），Flush 在咨询触发策略后执行可选的
// 轮转（重命名或 gzip 压缩活动文件、保留清扫、重开文件流），再在文件
// 锁保护下整体写盘。AsyncHandler 在 Handler 外套一层有界队列和单消费
// 协程，把生产者与磁盘 I/O 解耦。
//
// # 单写者约定
//
// Handler 自身不加锁：同步模式下由调用方保证单一生产者（需要并发
// 生产时请串行化调用或改用 AsyncHandler）；异步模式下所有写入汇聚到
// 唯一的消费协程。跨进程的写入互斥由文件咨询锁承担，锁只在真正写盘
// 期间持有。
//
// # 故障降级
//
// 日志落盘组件绝不拖垮宿主：任何 I/O 失败或队列饱和都在内部降级——
// 错误计数加一，当前缓冲（或被丢弃的记录）尽力写入备份目录的
// backup_<timestamp>.log，随后以全新缓冲继续。内部错误可通过
// WithOnError 回调接入告警，回调不得向同一 Handler 写入。
//
// # 指标
//
// 每个 Handler 维护单调递增计数器（写入字节/条数、轮转次数、累计写盘
// 耗时、最近写入时间、错误数），Snapshot 随时可读且无副作用。通过
// WithMeterProvider 可把计数器桥接到 OpenTelemetry。
package xhandler
