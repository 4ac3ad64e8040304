package xhandler

// Record 一条待落盘的预格式化日志记录。
//
// 记录在交给写入器后不可变；构造时保证以换行符结尾。
// 异步路径上记录的所有权随入队转移给队列项。
type Record struct {
	data []byte
}

// NewRecord 从已格式化的行构造记录，必要时补齐换行符。
func NewRecord(line string) Record {
	n := len(line)
	if n > 0 && line[n-1] == '\n' {
		return Record{data: []byte(line)}
	}
	data := make([]byte, n+1)
	copy(data, line)
	data[n] = '\n'
	return Record{data: data}
}

// NewRecordBytes 从字节切片构造记录。
// 输入被复制，调用方可以复用底层缓冲（slog handler 的常见模式）。
func NewRecordBytes(line []byte) Record {
	n := len(line)
	if n > 0 && line[n-1] == '\n' {
		data := make([]byte, n)
		copy(data, line)
		return Record{data: data}
	}
	data := make([]byte, n+1)
	copy(data, line)
	data[n] = '\n'
	return Record{data: data}
}

// Bytes 返回记录的编码字节，调用方不得修改。
func (r Record) Bytes() []byte {
	return r.data
}

// Size 返回记录的编码字节长度（含换行符）。
func (r Record) Size() int {
	return len(r.data)
}
