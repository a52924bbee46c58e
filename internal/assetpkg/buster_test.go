package assetpkg

import (
	"os"
	"regexp"
	"strings"
	"testing"
	"time"
)

var hexDigest = regexp.MustCompile(`^[a-f0-9]{32}$`)

func TestDigestIs32Hex(t *testing.T) {
	root := t.TempDir()
	file := writeAsset(t, root, "js/app.js", "content")

	digest, err := Digest([]string{file})
	if err != nil {
		t.Fatalf("Digest 返回错误: %v", err)
	}
	if !hexDigest.MatchString(digest) {
		t.Fatalf("摘要应为 32 位十六进制，得到 %q", digest)
	}
}

func TestDigestChangesWithModTime(t *testing.T) {
	root := t.TempDir()
	file := writeAsset(t, root, "js/app.js", "content")

	before, err := Digest([]string{file})
	if err != nil {
		t.Fatalf("Digest 返回错误: %v", err)
	}

	future := time.Now().Add(time.Hour)
	if err := os.Chtimes(file, future, future); err != nil {
		t.Fatalf("设置时间戳失败: %v", err)
	}

	after, err := Digest([]string{file})
	if err != nil {
		t.Fatalf("Digest 返回错误: %v", err)
	}
	if before == after {
		t.Fatalf("修改时间变化后摘要应不同")
	}
}

func TestDigestEmptyFileSetIsStable(t *testing.T) {
	a, err := Digest(nil)
	if err != nil {
		t.Fatalf("空集合摘要不应报错: %v", err)
	}
	b, err := Digest(nil)
	if err != nil {
		t.Fatalf("空集合摘要不应报错: %v", err)
	}
	if a != b || !hexDigest.MatchString(a) {
		t.Fatalf("空集合摘要应稳定且格式合法: %q vs %q", a, b)
	}
}

func TestBustedPathInsertsBeforeExtension(t *testing.T) {
	digest := strings.Repeat("ab", 16)
	got := BustedPath("/js/app.js", digest)
	want := "/js/app." + digest + ".js"
	if got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}

	if BustedPath("/js/app.js", "") != "/js/app.js" {
		t.Fatalf("空摘要应原样返回路径")
	}
}

func TestStripDigestRoundTrip(t *testing.T) {
	digest := strings.Repeat("0f", 16)
	busted := BustedPath("/css/site.min.css", digest)
	if StripDigest(busted) != "/css/site.min.css" {
		t.Fatalf("StripDigest 应还原原始路径，得到 %s", StripDigest(busted))
	}
	if StripDigest("/css/site.min.css") != "/css/site.min.css" {
		t.Fatalf("无摘要路径应原样返回")
	}
}

func TestRoutePatternMatchesBustedAndPlain(t *testing.T) {
	pkg := testPackage(t, t.TempDir(), nil, nil)
	pattern := pkg.RoutePattern()

	digest := strings.Repeat("a1", 16)
	testCases := []struct {
		path  string
		match bool
	}{
		{"/js/app.js", true},
		{"/js/app." + digest + ".js", true},
		{"/js/app.min.js", false},
		{"/js/app." + digest + ".css", false},
		{"/js/app." + strings.Repeat("g", 32) + ".js", false},
		{"/js/apps.js", false},
		{"/prefix/js/app.js", false},
	}

	for _, tc := range testCases {
		if pattern.MatchString(tc.path) != tc.match {
			t.Fatalf("pattern %s 对 %s 的匹配结果应为 %v", pattern, tc.path, tc.match)
		}
	}
}
