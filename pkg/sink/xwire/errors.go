package xwire

import "errors"

var (
	// ErrEmptyPath 配置文件路径为空
	ErrEmptyPath = errors.New("xwire: config path is empty")

	// ErrUnsupportedFormat 不支持的配置格式（仅支持 YAML/JSON）
	ErrUnsupportedFormat = errors.New("xwire: unsupported config format")

	// ErrLoadFailed 配置文件读取失败
	ErrLoadFailed = errors.New("xwire: failed to load config")

	// ErrParseFailed 配置内容解析失败
	ErrParseFailed = errors.New("xwire: failed to parse config")

	// ErrUnmarshalFailed 配置反序列化失败
	ErrUnmarshalFailed = errors.New("xwire: failed to unmarshal config")

	// ErrInvalidLevel 日志级别字符串无法识别
	ErrInvalidLevel = errors.New("xwire: invalid log level")

	// ErrInvalidEncoding 输出编码无法识别（仅支持 text/json）
	ErrInvalidEncoding = errors.New("xwire: invalid encoding")

	// ErrNilHandler LinkHandler 的底层 handler 为 nil
	ErrNilHandler = errors.New("xwire: base handler is nil")

	// ErrNilCallback 配置监视回调为 nil
	ErrNilCallback = errors.New("xwire: watch callback is nil")
)
