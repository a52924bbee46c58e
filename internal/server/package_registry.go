package server

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/asset-hub/asset-hub/internal/assetpkg"
	"github.com/asset-hub/asset-hub/internal/config"
)

// PackageRoute 将 Package 配置与派生属性（构造好的 Package 实例、
// 路由正则、生效模式）聚合在一起，供路由/构建层直接复用，避免重复解析配置。
type PackageRoute struct {
	// Config 是用户在 config.toml 中声明的 Package 字段副本，避免外部修改。
	Config config.PackageConfig
	// Package 在构造 Registry 时提前创建完成，便于后续请求快速复用。
	Package *assetpkg.Package
	// Pattern 同时匹配裸输出路径与 busted 输出路径。
	Pattern *regexp.Regexp
	// Mode 是对当前 Package 生效的模式，未覆盖则等于全局值。
	Mode string
	// ListenPort 记录当前 CLI 监听端口，方便日志输出。
	ListenPort int
}

// PackageRegistry 提供按名称与按请求路径查找 PackageRoute 的能力。
type PackageRegistry struct {
	byName     map[string]*PackageRoute
	ordered    []*PackageRoute
	pathPrefix string
	assetRoot  string
}

// NewPackageRegistry 根据配置构建包路由表。调用方应在启动阶段创建一次并复用。
func NewPackageRegistry(cfg *config.Config) (*PackageRegistry, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	ignore, err := buildIgnoreFunc(cfg.Global.IgnorePattern)
	if err != nil {
		return nil, err
	}

	registry := &PackageRegistry{
		byName:     make(map[string]*PackageRoute, len(cfg.Packages)),
		pathPrefix: strings.TrimSuffix(cfg.Global.PathPrefix, "/"),
		assetRoot:  cfg.Global.AssetRoot,
	}

	for _, pkgCfg := range cfg.Packages {
		if _, exists := registry.byName[pkgCfg.Name]; exists {
			return nil, fmt.Errorf("duplicate package name detected: %s", pkgCfg.Name)
		}

		route, err := buildPackageRoute(cfg, pkgCfg, ignore)
		if err != nil {
			return nil, err
		}

		registry.byName[pkgCfg.Name] = route
		registry.ordered = append(registry.ordered, route)
	}

	return registry, nil
}

// Lookup 根据包名查找 PackageRoute。
func (r *PackageRegistry) Lookup(name string) (*PackageRoute, bool) {
	if r == nil {
		return nil, false
	}
	route, ok := r.byName[strings.TrimSpace(name)]
	return route, ok
}

// Match 根据请求路径（已剥离全局前缀）查找命中的 PackageRoute。
func (r *PackageRegistry) Match(path string) (*PackageRoute, bool) {
	if r == nil || path == "" {
		return nil, false
	}
	for _, route := range r.ordered {
		if route.Pattern.MatchString(path) {
			return route, true
		}
	}
	return nil, false
}

// StripPrefix 剥离全局 PathPrefix，并报告路径是否位于前缀之下。
// 不在前缀下的路径不属于资源管线，调用方应拒绝服务。前缀为空时全部命中。
func (r *PackageRegistry) StripPrefix(path string) (string, bool) {
	if r == nil {
		return path, false
	}
	if r.pathPrefix == "" {
		return path, true
	}
	if strings.HasPrefix(path, r.pathPrefix+"/") {
		return strings.TrimPrefix(path, r.pathPrefix), true
	}
	return path, false
}

// PathPrefix 返回渲染与剥离共用的全局前缀。
func (r *PackageRegistry) PathPrefix() string {
	if r == nil {
		return ""
	}
	return r.pathPrefix
}

// AssetRoot 返回源文件根目录，供开发模式直接回源磁盘。
func (r *PackageRegistry) AssetRoot() string {
	if r == nil {
		return ""
	}
	return r.assetRoot
}

// List 返回当前注册的 PackageRoute 列表（按配置定义的顺序），用于诊断输出。
func (r *PackageRegistry) List() []PackageRoute {
	if r == nil || len(r.ordered) == 0 {
		return nil
	}

	result := make([]PackageRoute, len(r.ordered))
	for i, route := range r.ordered {
		result[i] = *route
	}
	return result
}

func buildPackageRoute(cfg *config.Config, pkgCfg config.PackageConfig, ignore assetpkg.IgnoreFunc) (*PackageRoute, error) {
	typ, ok := assetpkg.ParseType(pkgCfg.Type)
	if !ok {
		return nil, fmt.Errorf("package %s: unsupported type %s", pkgCfg.Name, pkgCfg.Type)
	}

	pkg, err := assetpkg.New(assetpkg.Options{
		Name:       pkgCfg.Name,
		Type:       typ,
		OutputPath: pkgCfg.Path,
		Filespecs:  pkgCfg.Filespecs,
		AssetRoot:  cfg.Global.AssetRoot,
		Ignore:     ignore,
	})
	if err != nil {
		return nil, fmt.Errorf("package %s: %w", pkgCfg.Name, err)
	}

	return &PackageRoute{
		Config:     pkgCfg,
		Package:    pkg,
		Pattern:    pkg.RoutePattern(),
		Mode:       cfg.EffectiveMode(pkgCfg),
		ListenPort: cfg.Global.ListenPort,
	}, nil
}

func buildIgnoreFunc(pattern string) (assetpkg.IgnoreFunc, error) {
	if strings.TrimSpace(pattern) == "" {
		return nil, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid ignore pattern: %w", err)
	}
	return func(path string) bool {
		return re.MatchString(path)
	}, nil
}
