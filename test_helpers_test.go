package main

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// repoRoot 在包加载时向上找 go.mod 定位仓库根，供 fixture 路径拼接使用。
var repoRoot = locateRepoRoot()

func locateRepoRoot() string {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		return ""
	}
	for dir := filepath.Dir(file); ; dir = filepath.Dir(dir) {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		if filepath.Dir(dir) == dir {
			return ""
		}
	}
}

func projectRoot(t *testing.T) string {
	t.Helper()
	if repoRoot == "" {
		t.Fatal("定位仓库根目录失败")
	}
	return repoRoot
}

// configFixture 指向 internal/config 下共享的 TOML fixture。
func configFixture(t *testing.T, name string) string {
	t.Helper()
	return filepath.Join(projectRoot(t), "internal", "config", "testdata", name)
}
