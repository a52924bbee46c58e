package render

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/asset-hub/asset-hub/internal/assetpkg"
)

func writeAsset(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatalf("创建目录失败: %v", err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		t.Fatalf("写入文件失败: %v", err)
	}
}

func newPackage(t *testing.T, root string, typ assetpkg.Type, output string, specs []string) *assetpkg.Package {
	t.Helper()
	pkg, err := assetpkg.New(assetpkg.Options{
		Name:       "pkg",
		Type:       typ,
		OutputPath: output,
		Filespecs:  specs,
		AssetRoot:  root,
	})
	if err != nil {
		t.Fatalf("构造 Package 失败: %v", err)
	}
	return pkg
}

var bustedSrc = regexp.MustCompile(`src="/assets/js/[a-z]+\.[a-f0-9]{32}\.js"`)

func TestDevelopmentEmitsOneTagPerFile(t *testing.T) {
	root := t.TempDir()
	writeAsset(t, root, "js/alpha.js", "a")
	writeAsset(t, root, "js/beta.js", "b")

	pkg := newPackage(t, root, assetpkg.TypeJS, "/js/app.js", []string{"js/*.js"})
	out, err := Development(pkg, "/assets")
	if err != nil {
		t.Fatalf("Development 返回错误: %v", err)
	}

	tags := strings.Split(out, "\n")
	if len(tags) != 2 {
		t.Fatalf("expected 2 tags, got %d: %q", len(tags), out)
	}
	for _, tag := range tags {
		if !strings.HasPrefix(tag, "<script src=") || !strings.HasSuffix(tag, "></script>") {
			t.Fatalf("js 包应输出 script 标签: %q", tag)
		}
		if !bustedSrc.MatchString(tag) {
			t.Fatalf("每条标签都应带独立 buster 与前缀: %q", tag)
		}
	}
}

func TestProductionEmitsSingleBustedTag(t *testing.T) {
	root := t.TempDir()
	writeAsset(t, root, "js/alpha.js", "a")
	writeAsset(t, root, "js/beta.js", "b")

	pkg := newPackage(t, root, assetpkg.TypeJS, "/js/app.js", []string{"js/*.js"})
	out, err := Production(pkg, "/assets")
	if err != nil {
		t.Fatalf("Production 返回错误: %v", err)
	}

	if strings.Count(out, "<script") != 1 {
		t.Fatalf("production 应只输出一条标签: %q", out)
	}
	if !regexp.MustCompile(`src="/assets/js/app\.[a-f0-9]{32}\.js"`).MatchString(out) {
		t.Fatalf("production 标签应指向 busted 输出路径: %q", out)
	}
}

func TestCSSPackageRendersLinkTags(t *testing.T) {
	root := t.TempDir()
	writeAsset(t, root, "css/site.css", "body{}")

	pkg := newPackage(t, root, assetpkg.TypeCSS, "/css/site.css", []string{"css/*.css"})

	dev, err := Development(pkg, "")
	if err != nil {
		t.Fatalf("Development 返回错误: %v", err)
	}
	if !strings.HasPrefix(dev, `<link rel="stylesheet" href=`) {
		t.Fatalf("css 包应输出 link 标签: %q", dev)
	}

	prod, err := Production(pkg, "")
	if err != nil {
		t.Fatalf("Production 返回错误: %v", err)
	}
	if !strings.HasPrefix(prod, `<link rel="stylesheet" href=`) {
		t.Fatalf("css 包应输出 link 标签: %q", prod)
	}
}

func TestEmptyPackageRendersNothing(t *testing.T) {
	pkg := newPackage(t, t.TempDir(), assetpkg.TypeJS, "/js/app.js", []string{"js/**/*.js"})

	dev, err := Development(pkg, "/assets")
	if err != nil {
		t.Fatalf("空包 Development 不应报错: %v", err)
	}
	if dev != "" {
		t.Fatalf("空包应输出空字符串: %q", dev)
	}

	prod, err := Production(pkg, "/assets")
	if err != nil {
		t.Fatalf("空包 Production 不应报错: %v", err)
	}
	if prod != "" {
		t.Fatalf("空包应输出空字符串: %q", prod)
	}
}

func TestTagEscapesAttributes(t *testing.T) {
	tag := Tag(assetpkg.TypeJS, `/js/a"b.js`)
	if strings.Contains(tag, `a"b`) {
		t.Fatalf("属性值应转义: %q", tag)
	}
	if !strings.Contains(tag, "&#34;") {
		t.Fatalf("expected escaped quote in %q", tag)
	}
}

func TestTagKeepsBackslashesIntact(t *testing.T) {
	tag := Tag(assetpkg.TypeJS, `/js/a\b.js`)
	if !strings.Contains(tag, `src="/js/a\b.js"`) {
		t.Fatalf("反斜杠不应被二次转义: %q", tag)
	}
	if strings.Contains(tag, `\\`) {
		t.Fatalf("expected single backslash in %q", tag)
	}
}
