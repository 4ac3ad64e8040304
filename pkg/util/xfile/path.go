package xfile

import (
	"fmt"
	"path/filepath"
	"strings"
)

// containsNullByte 检测路径是否包含空字节。
func containsNullByte(path string) bool {
	return strings.ContainsRune(path, 0)
}

// hasDotDotSegment 检测路径中是否包含 ".." 作为独立路径段。
// 逐字符扫描避免 strings.Split 的切片分配；'/' 和 '\' 均视为分隔符，
// 以便在 Linux 上同样拦截 Windows 风格的穿越写法。
func hasDotDotSegment(path string) bool {
	i := 0
	for i < len(path) {
		if path[i] == '/' || path[i] == '\\' {
			i++
			continue
		}
		j := i
		for j < len(path) && path[j] != '/' && path[j] != '\\' {
			j++
		}
		if j-i == 2 && path[i] == '.' && path[i+1] == '.' {
			return true
		}
		i = j
	}
	return false
}

// SanitizePath 对日志文件路径进行安全检查和规范化。
//
// 功能：
//   - 路径规范化（消除 "." 和冗余斜杠）
//   - 阻止相对路径穿越（如 "../etc/passwd"）
//   - 拒绝空路径、空字节和显式目录路径（尾随 "/" 或 "\"）
//
// 本函数仅做格式净化，不做目录沙箱隔离；绝对路径中的 ".." 由
// filepath.Clean 正常解析。日志文件路径来自部署配置而非请求输入，
// 此边界足够。
func SanitizePath(filename string) (string, error) {
	if filename == "" {
		return "", fmt.Errorf("filename is required: %w", ErrEmptyPath)
	}
	if containsNullByte(filename) {
		return "", fmt.Errorf("filename contains null byte: %w", ErrNullByte)
	}

	// 尾随分隔符表示目录，必须在 Clean 之前检查（Clean 会移除尾部斜杠）
	if strings.HasSuffix(filename, "/") || strings.HasSuffix(filename, "\\") {
		return "", fmt.Errorf("path is a directory: %w", ErrInvalidPath)
	}

	cleaned := filepath.Clean(filename)

	// 按路径段精确判断，避免误伤 "app..2024.log" 这类合法文件名
	if !filepath.IsAbs(cleaned) && hasDotDotSegment(cleaned) {
		return "", fmt.Errorf("path %q: %w", filename, ErrPathTraversal)
	}

	return cleaned, nil
}
