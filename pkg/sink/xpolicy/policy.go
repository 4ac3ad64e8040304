package xpolicy

// TriggeringPolicy 轮转触发策略接口。
//
// 实现必须是并发安全的。IsTriggered 不得阻塞写入热路径，
// 允许在两次真实检查之间返回有界的估算结果。
type TriggeringPolicy interface {
	// IsTriggered 判断在写入一条长度为 recordLen 字节的记录前
	// 是否必须先轮转活动文件
	IsTriggered(activePath string, recordLen int) bool
}

// RollingPolicy 滚动策略接口。
//
// 实现必须是并发安全的。RolledFileName 返回的名字已包含压缩后缀
// （启用压缩时以 ".gz" 结尾），写入方据此决定重命名还是压缩——
// 命名即机制，策略与写入方之间不再需要额外的压缩开关。
type RollingPolicy interface {
	// ActiveFileName 返回按当前日期渲染后的活动文件路径
	ActiveFileName() string

	// RolledFileName 计算活动文件即将滚动到的目标路径。
	// 每次调用都会递增当日序号，必须在内部锁下完成，
	// 避免并发调用产生重名
	RolledFileName(active string) string

	// RollOver 执行轮转后的保留清扫。
	// 重命名/压缩由写入方完成，本方法只负责清理历史文件
	RollOver(active string)
}
