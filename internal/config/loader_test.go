package config

import "testing"

func TestLoadFailsWithMissingFields(t *testing.T) {
	if _, err := Load(testConfigPath(t, "missing.toml")); err == nil {
		t.Fatalf("缺失字段的配置应返回错误")
	}
}

func TestLoadRejectsInvalidDuration(t *testing.T) {
	cfg := `
LogLevel = "info"
AssetRoot = "./assets"
FetchTimeout = "boom"

[[Package]]
Name = "app"
Type = "js"
Path = "/js/all.js"
Filespecs = ["js/*.js"]
`
	path := writeTempConfig(t, cfg)
	if _, err := Load(path); err == nil {
		t.Fatalf("无效 Duration 应失败")
	}
}

func TestLoadRejectsPackageLevelPathPrefix(t *testing.T) {
	cfg := `
LogLevel = "info"
AssetRoot = "./assets"

[[Package]]
Name = "app"
Type = "js"
Path = "/js/all.js"
PathPrefix = "/static"
Filespecs = ["js/*.js"]
`
	path := writeTempConfig(t, cfg)
	if _, err := Load(path); err == nil {
		t.Fatalf("Package 级 PathPrefix 已弃用，应返回错误")
	}
}

func TestLoadRejectsInvalidMode(t *testing.T) {
	cfg := `
LogLevel = "info"
AssetRoot = "./assets"
Mode = "staging"

[[Package]]
Name = "app"
Type = "js"
Path = "/js/all.js"
Filespecs = ["js/*.js"]
`
	path := writeTempConfig(t, cfg)
	if _, err := Load(path); err == nil {
		t.Fatalf("未知 Mode 应失败")
	}
}

func TestLoadNormalizesPackageFields(t *testing.T) {
	cfg := `
LogLevel = "info"
AssetRoot = "./assets"

[[Package]]
Name = "  app  "
Type = "JS"
Path = "/js/all.js"
Filespecs = ["js/*.js"]
Mode = "Development"
`
	path := writeTempConfig(t, cfg)
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load 返回错误: %v", err)
	}
	if loaded.Packages[0].Name != "app" {
		t.Fatalf("Name 应去除空白，got %q", loaded.Packages[0].Name)
	}
	if loaded.Packages[0].Type != "js" {
		t.Fatalf("Type 应转为小写，got %q", loaded.Packages[0].Type)
	}
	if loaded.Packages[0].Mode != ModeDevelopment {
		t.Fatalf("Mode 应转为小写，got %q", loaded.Packages[0].Mode)
	}
}
