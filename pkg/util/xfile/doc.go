// Package xfile 提供日志目录与文件路径的基础工具。
//
// 本包只覆盖 logsink 自身需要的两类操作：
//
//   - SanitizePath: 检查并规范化日志文件路径，拒绝空路径、空字节和相对路径穿越
//   - EnsureDir: 确保文件的父目录存在（默认权限 0750）
//
// # 路径穿越检测
//
// 穿越检测按路径段精确匹配，只有 ".." 作为独立路径段时才被拒绝。
// 以 ".." 开头的合法文件名（如 "..config"、"app..2024.log"）不会被误判。
//
// # 空字节防护
//
// SanitizePath 拒绝包含空字节（\x00）的路径。Linux 内核在 VFS 层会在空字节处
// 截断路径，导致 Go 代码与操作系统实际操作的路径不一致。
//
// # 错误处理
//
// 预定义错误变量支持 [errors.Is] 判断。
package xfile
