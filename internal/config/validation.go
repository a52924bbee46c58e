package config

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/asset-hub/asset-hub/internal/assetpkg"
	"github.com/asset-hub/asset-hub/internal/minify"
)

const supportedAssetTypeList = "js|css"

// Validate 针对语义级别做进一步校验，防止非法配置启动服务。
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("配置为空")
	}

	g := c.Global
	if g.ListenPort <= 0 || g.ListenPort > 65535 {
		return newFieldError("Global.ListenPort", "必须在 1-65535")
	}
	if g.StoragePath == "" {
		return newFieldError("Global.StoragePath", "不能为空")
	}
	if g.AssetRoot == "" {
		return newFieldError("Global.AssetRoot", "不能为空")
	}
	if g.Mode != ModeDevelopment && g.Mode != ModeProduction {
		return newFieldError("Global.Mode", "仅支持 development/production")
	}
	if !strings.HasPrefix(g.PathPrefix, "/") {
		return newFieldError("Global.PathPrefix", "必须以 / 开头")
	}
	if g.IgnorePattern != "" {
		if _, err := regexp.Compile(g.IgnorePattern); err != nil {
			return newFieldError("Global.IgnorePattern", fmt.Sprintf("正则无效: %v", err))
		}
	}
	if g.FetchTimeout.DurationValue() <= 0 {
		return newFieldError("Global.FetchTimeout", "必须大于 0")
	}
	if g.RemoteHost != "" {
		if err := validateRemoteHost(g.RemoteHost); err != nil {
			return fmt.Errorf("Global.RemoteHost: %w", err)
		}
	}
	if g.RemoteBasePath != "" && !strings.HasPrefix(g.RemoteBasePath, "/") {
		return newFieldError("Global.RemoteBasePath", "必须以 / 开头")
	}

	if len(c.Packages) == 0 {
		return errors.New("至少需要配置一个 Package")
	}

	seenNames := map[string]struct{}{}
	seenPaths := map[string]struct{}{}
	for i := range c.Packages {
		pkg := &c.Packages[i]
		if pkg.Name == "" {
			return newFieldError("Package[].Name", "不能为空")
		}
		if _, exists := seenNames[pkg.Name]; exists {
			return newFieldError(packageField(pkg.Name, "Name"), "重复")
		}
		seenNames[pkg.Name] = struct{}{}

		typ, ok := assetpkg.ParseType(pkg.Type)
		if !ok {
			return newFieldError(packageField(pkg.Name, "Type"), "仅支持 "+supportedAssetTypeList)
		}
		pkg.Type = string(typ)

		if _, ok := minify.Resolve(typ); !ok {
			return newFieldError(packageField(pkg.Name, "Type"), fmt.Sprintf("未注册压缩引擎: %s", typ))
		}

		if err := validateOutputPath(pkg.Path); err != nil {
			return fmt.Errorf("%s: %w", packageField(pkg.Name, "Path"), err)
		}
		if _, exists := seenPaths[pkg.Path]; exists {
			return newFieldError(packageField(pkg.Name, "Path"), "与其他 Package 冲突")
		}
		seenPaths[pkg.Path] = struct{}{}

		for _, spec := range pkg.Filespecs {
			if strings.TrimSpace(spec) == "" {
				return newFieldError(packageField(pkg.Name, "Filespecs"), "不允许空白 filespec")
			}
		}

		if pkg.Mode != "" && pkg.Mode != ModeDevelopment && pkg.Mode != ModeProduction {
			return newFieldError(packageField(pkg.Name, "Mode"), "仅支持 development/production")
		}
	}

	return nil
}

func validateOutputPath(raw string) error {
	if raw == "" {
		return errors.New("Path 不能为空")
	}
	if !strings.HasPrefix(raw, "/") {
		return errors.New("Path 必须以 / 开头")
	}
	if strings.Contains(raw, " ") {
		return errors.New("Path 不允许包含空格")
	}
	if path.Ext(raw) == "" {
		return errors.New("Path 必须带扩展名")
	}
	return nil
}

func validateRemoteHost(raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("仅支持 http/https，远端: %s", raw)
	}
	if parsed.Host == "" {
		return fmt.Errorf("远端缺少 Host: %s", raw)
	}
	if parsed.Path != "" && parsed.Path != "/" {
		return fmt.Errorf("路径请放在 RemoteBasePath: %s", raw)
	}
	return nil
}
