// Package xpolicy 提供日志轮转的决策组件：触发策略与滚动策略。
//
// 触发策略（TriggeringPolicy）决定"何时"轮转：给定活动文件和一条候选
// 记录，判断下一次写入前是否必须轮转。滚动策略（RollingPolicy）决定
// "如何"轮转：计算活动文件名、被滚动文件的命名，并在轮转后执行保留
// 清扫（删除超龄或超出总量上限的历史文件）。
//
// # 当前实现
//
//   - [NewSizeTrigger]: 按文件大小触发，带 stat 节流（两次真实检查之间
//     用"记录长度 + 固定开销"的估算值累计，有界的高低估是有意的
//     吞吐/精度权衡，不应"修正"）
//   - [NewTimeBasedRolling]: 按日期分桶命名 <active>.<YYYY-MM-DD>.<index>，
//     压缩启用时追加 .gz；轮转后执行保留清扫
//
// # 保留清扫
//
// 清扫按修改时间从新到旧遍历匹配本策略命名模式的文件，累计保留总量；
// 超过 MaxHistory 天或会使总量突破 TotalSizeCap 的文件被删除。新文件
// 无论扫描顺序总是优先于旧文件被保留。目录列表带 1 小时 TTL 缓存，
// 发生删除后强制失效。单个文件删除失败被忽略；目录扫描失败则本轮
// 清扫静默放弃，下次轮转重试。
//
// # 扩展新实现
//
//  1. 实现 TriggeringPolicy 或 RollingPolicy 接口
//  2. 定义独立的配置与 Option
//  3. 提供独立的构造函数，不修改既有接口
package xpolicy
