package xwire

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// Format 配置文件格式
type Format string

const (
	// FormatYAML YAML 格式
	FormatYAML Format = "yaml"

	// FormatJSON JSON 格式
	FormatJSON Format = "json"
)

// 配置默认值
const (
	// DefaultLogDir 默认日志目录
	DefaultLogDir = "./logs"

	// DefaultAppName 默认应用名
	DefaultAppName = "app"

	// DefaultMaxFileSize 默认单文件大小上限（100 MiB）
	DefaultMaxFileSize = 100 << 20

	// DefaultMaxHistory 默认归档保留天数
	DefaultMaxHistory = 15

	// DefaultTotalSizeCap 默认归档总量上限（1 GiB）
	DefaultTotalSizeCap = 1 << 30
)

// Config 日志后端的完整装配配置。
//
// 零值无效，请从 [DefaultConfig] 或 [Load] 获取实例。
type Config struct {
	// LogDir 日志目录，不存在时自动创建
	LogDir string `koanf:"log_dir"`

	// AppName 应用名，用于活动文件名和每条日志的 app 属性
	AppName string `koanf:"app_name"`

	// MaxFileSize 单文件大小上限（字节），达到后触发轮转
	MaxFileSize int64 `koanf:"max_file_size"`

	// MaxHistory 归档保留天数，0 表示不按天龄清理
	MaxHistory int `koanf:"max_history"`

	// TotalSizeCap 归档总量上限（字节），0 表示不按总量清理
	TotalSizeCap int64 `koanf:"total_size_cap"`

	// Compress 归档时是否 gzip 压缩
	Compress bool `koanf:"compress"`

	// BufferSize 内存缓冲上限（字节）
	BufferSize int `koanf:"buffer_size"`

	// Async 是否使用异步写入器
	Async bool `koanf:"async"`

	// QueueSize 异步队列容量
	QueueSize int `koanf:"queue_size"`

	// BatchSize 异步消费批大小
	BatchSize int `koanf:"batch_size"`

	// Level 日志级别：debug/info/warn/error
	Level string `koanf:"level"`

	// Encoding 输出编码：text 或 json
	Encoding string `koanf:"encoding"`

	// SweepSchedule 定时清扫的 cron 表达式，空表示只在轮转时清扫
	SweepSchedule string `koanf:"sweep_schedule"`
}

// DefaultConfig 返回生产默认配置。
func DefaultConfig() Config {
	return Config{
		LogDir:       DefaultLogDir,
		AppName:      DefaultAppName,
		MaxFileSize:  DefaultMaxFileSize,
		MaxHistory:   DefaultMaxHistory,
		TotalSizeCap: DefaultTotalSizeCap,
		BufferSize:   64 << 10,
		QueueSize:    10000,
		BatchSize:    100,
		Level:        "info",
		Encoding:     "text",
	}
}

// ActiveFile 返回活动文件的完整路径（<log_dir>/<app_name>.log）。
func (c Config) ActiveFile() string {
	return filepath.Join(c.LogDir, c.AppName+".log")
}

// Load 从文件加载配置，未出现的键保持默认值。
// 根据扩展名自动检测格式（.yaml/.yml 或 .json）。
func Load(path string) (Config, error) {
	if path == "" {
		return Config{}, ErrEmptyPath
	}

	format, err := detectFormat(path)
	if err != nil {
		return Config{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}
	return LoadBytes(data, format)
}

// LoadBytes 从字节数据加载配置，需要显式指定格式。
// 适用于 K8s ConfigMap 等非文件来源；空数据返回默认配置。
func LoadBytes(data []byte, format Format) (Config, error) {
	cfg := DefaultConfig()
	if len(data) == 0 {
		return cfg, nil
	}

	var parser koanf.Parser
	switch format {
	case FormatYAML:
		parser = yaml.Parser()
	case FormatJSON:
		parser = json.Parser()
	default:
		return Config{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider(data), parser); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrParseFailed, err)
	}
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrUnmarshalFailed, err)
	}
	return cfg, nil
}

// detectFormat 根据文件扩展名检测配置格式。
func detectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: unknown extension %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}
