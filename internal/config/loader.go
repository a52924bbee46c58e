package config

import (
	"fmt"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Load 读取并解析 TOML 配置文件，同时注入默认值与校验逻辑。
func Load(path string) (*Config, error) {
	if path == "" {
		path = "config.toml"
	}

	v := viper.New()
	v.SetConfigFile(path)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取配置失败: %w", err)
	}

	if err := rejectPackageLevelPrefix(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(durationDecodeHook())); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	applyGlobalDefaults(&cfg.Global)
	for i := range cfg.Packages {
		applyPackageDefaults(&cfg.Packages[i])
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	absStorage, err := filepath.Abs(cfg.Global.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("无法解析缓存目录: %w", err)
	}
	cfg.Global.StoragePath = absStorage

	absAssets, err := filepath.Abs(cfg.Global.AssetRoot)
	if err != nil {
		return nil, fmt.Errorf("无法解析资源目录: %w", err)
	}
	cfg.Global.AssetRoot = absAssets

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ListenPort", 5000)
	v.SetDefault("LogLevel", "info")
	v.SetDefault("LogFilePath", "")
	v.SetDefault("LogMaxSize", 100)
	v.SetDefault("LogMaxBackups", 10)
	v.SetDefault("LogCompress", true)
	v.SetDefault("AssetRoot", "./assets")
	v.SetDefault("StoragePath", "./storage")
	v.SetDefault("Mode", ModeProduction)
	v.SetDefault("PathPrefix", "/assets")
	v.SetDefault("IgnorePattern", `(^|/)\.`)
	v.SetDefault("RemoteHost", "")
	v.SetDefault("RemoteBasePath", "")
	v.SetDefault("FetchTimeout", "30s")
}

func applyGlobalDefaults(g *GlobalConfig) {
	if g.ListenPort == 0 {
		g.ListenPort = 5000
	}
	if g.Mode == "" {
		g.Mode = ModeProduction
	}
	g.Mode = strings.ToLower(strings.TrimSpace(g.Mode))
	if g.PathPrefix == "" {
		g.PathPrefix = "/assets"
	}
	if g.FetchTimeout.DurationValue() == 0 {
		g.FetchTimeout = Duration(30 * time.Second)
	}
}

func applyPackageDefaults(p *PackageConfig) {
	p.Name = strings.TrimSpace(p.Name)
	p.Type = strings.ToLower(strings.TrimSpace(p.Type))
	p.Path = strings.TrimSpace(p.Path)
	if mode := strings.TrimSpace(p.Mode); mode != "" {
		p.Mode = strings.ToLower(mode)
	}
}

func durationDecodeHook() mapstructure.DecodeHookFunc {
	targetType := reflect.TypeOf(Duration(0))

	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != targetType {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			if v == "" {
				return Duration(0), nil
			}
			if parsed, err := time.ParseDuration(v); err == nil {
				return Duration(parsed), nil
			}
			if seconds, err := strconv.ParseFloat(v, 64); err == nil {
				return Duration(time.Duration(seconds * float64(time.Second))), nil
			}
			return nil, fmt.Errorf("无法解析 Duration 字段: %s", v)
		case int:
			return Duration(time.Duration(v) * time.Second), nil
		case int64:
			return Duration(time.Duration(v) * time.Second), nil
		case float64:
			return Duration(time.Duration(v * float64(time.Second))), nil
		case time.Duration:
			return Duration(v), nil
		case Duration:
			return v, nil
		default:
			return nil, fmt.Errorf("不支持的 Duration 类型: %T", v)
		}
	}
}

// rejectPackageLevelPrefix 拦截历史遗留的 Package 级 PathPrefix 字段，
// 前缀统一由全局配置控制，避免同一页面输出多套资源前缀。
func rejectPackageLevelPrefix(v *viper.Viper) error {
	raw := v.Get("Package")
	pkgs, ok := raw.([]interface{})
	if !ok {
		return nil
	}

	for idx, entry := range pkgs {
		m, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}
		if _, exists := m["PathPrefix"]; exists {
			name := fmt.Sprintf("#%d", idx)
			if rawName, ok := m["Name"].(string); ok && rawName != "" {
				name = rawName
			}
			return newFieldError(packageField(name, "PathPrefix"), "字段已弃用，请移除并使用全局 PathPrefix")
		}
	}

	return nil
}
