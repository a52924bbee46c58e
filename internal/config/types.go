package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Duration 提供更灵活的反序列化能力，同时兼容纯秒整数与 Go Duration 字符串。
type Duration time.Duration

// UnmarshalText 使 Viper 可以识别诸如 "30s"、"5m" 或纯数字秒值等配置写法。
func (d *Duration) UnmarshalText(text []byte) error {
	raw := strings.TrimSpace(string(text))
	if raw == "" {
		*d = Duration(0)
		return nil
	}

	if seconds, err := time.ParseDuration(raw); err == nil {
		*d = Duration(seconds)
		return nil
	}

	if intVal, err := parseInt(raw); err == nil {
		*d = Duration(time.Duration(intVal) * time.Second)
		return nil
	}

	return fmt.Errorf("invalid duration value: %s", raw)
}

// DurationValue 返回真实的 time.Duration，便于调用方计算。
func (d Duration) DurationValue() time.Duration {
	return time.Duration(d)
}

// parseInt 支持十进制或 0x 前缀的十六进制字符串解析。
func parseInt(value string) (int64, error) {
	if strings.HasPrefix(value, "0x") || strings.HasPrefix(value, "0X") {
		return strconv.ParseInt(value, 0, 64)
	}
	return strconv.ParseInt(value, 10, 64)
}

// 渲染/构建模式：development 逐文件输出，production 合并压缩后输出。
const (
	ModeDevelopment = "development"
	ModeProduction  = "production"
)

// GlobalConfig 描述全局运行时行为，所有 Package 共享同一份参数。
type GlobalConfig struct {
	ListenPort     int      `mapstructure:"ListenPort"`
	LogLevel       string   `mapstructure:"LogLevel"`
	LogFilePath    string   `mapstructure:"LogFilePath"`
	LogMaxSize     int      `mapstructure:"LogMaxSize"`
	LogMaxBackups  int      `mapstructure:"LogMaxBackups"`
	LogCompress    bool     `mapstructure:"LogCompress"`
	AssetRoot      string   `mapstructure:"AssetRoot"`
	StoragePath    string   `mapstructure:"StoragePath"`
	Mode           string   `mapstructure:"Mode"`
	PathPrefix     string   `mapstructure:"PathPrefix"`
	IgnorePattern  string   `mapstructure:"IgnorePattern"`
	RemoteHost     string   `mapstructure:"RemoteHost"`
	RemoteBasePath string   `mapstructure:"RemoteBasePath"`
	FetchTimeout   Duration `mapstructure:"FetchTimeout"`
}

// PackageConfig 决定单个资源包如何聚合源文件并对外输出。
type PackageConfig struct {
	Name      string   `mapstructure:"Name"`
	Type      string   `mapstructure:"Type"`
	Path      string   `mapstructure:"Path"`
	Filespecs []string `mapstructure:"Filespecs"`
	Mode      string   `mapstructure:"Mode"`
}

// Config 是 TOML 文件映射的整体结构。
type Config struct {
	Global   GlobalConfig    `mapstructure:",squash"`
	Packages []PackageConfig `mapstructure:"Package"`
}

// RemoteEnabled 表示是否通过 HTTP 拉取源文件内容，而非直接读取本地磁盘。
func (g GlobalConfig) RemoteEnabled() bool {
	return strings.TrimSpace(g.RemoteHost) != ""
}

// EffectiveMode 返回特定 Package 生效的模式，未覆盖时回退至全局值。
func (c *Config) EffectiveMode(p PackageConfig) string {
	if p.Mode != "" {
		return p.Mode
	}
	if c.Global.Mode != "" {
		return c.Global.Mode
	}
	return ModeProduction
}

// PackageModes 返回所有 Package 的类型/模式摘要，例如 app-js:js:production。
func (c *Config) PackageModes() []string {
	if len(c.Packages) == 0 {
		return nil
	}
	result := make([]string, len(c.Packages))
	for i, pkg := range c.Packages {
		result[i] = fmt.Sprintf("%s:%s:%s", pkg.Name, pkg.Type, c.EffectiveMode(pkg))
	}
	return result
}
