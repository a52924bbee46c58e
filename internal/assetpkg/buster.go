package assetpkg

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"os"
	"path"
	"regexp"
	"strings"
)

// digestPattern 对应 buster 片段本身：扩展名前插入的 32 位十六进制。
const digestPattern = `\.[a-f0-9]{32}`

var strippableDigest = regexp.MustCompile(digestPattern + `(\.[^./]+)$`)

// Digest 基于文件集合的路径、大小与修改时间计算 32 位十六进制摘要，
// 任一文件内容落盘后摘要随之变化，从而强制客户端缓存失效。
func Digest(files []string) (string, error) {
	hash := md5.New()
	for _, file := range files {
		info, err := os.Stat(file)
		if err != nil {
			return "", fmt.Errorf("stat %s: %w", file, err)
		}
		fmt.Fprintf(hash, "%s|%d|%d\n", file, info.Size(), info.ModTime().UnixNano())
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}

// Digest 返回当前包全部解析文件的摘要；空包摘要是固定值（空输入的 md5）。
func (p *Package) Digest() (string, error) {
	files, err := p.Files()
	if err != nil {
		return "", err
	}
	return Digest(files)
}

// BustedPath 在最后一个扩展名前插入摘要段，如 /js/app.js → /js/app.<hex>.js。
func BustedPath(uriPath, digest string) string {
	if digest == "" {
		return uriPath
	}
	ext := path.Ext(uriPath)
	if ext == "" {
		return uriPath + "." + digest
	}
	return strings.TrimSuffix(uriPath, ext) + "." + digest + ext
}

// StripDigest 移除 busted 路径中的摘要段；无摘要时原样返回。
func StripDigest(uriPath string) string {
	return strippableDigest.ReplaceAllString(uriPath, "$1")
}

// RoutePattern 返回同时匹配裸路径与 busted 路径的正则，摘要组可选。
// 对 /js/app.js 而言，/js/app.js 与 /js/app.<32hex>.js 均命中，
// /js/app.min.js 不命中。
func (p *Package) RoutePattern() *regexp.Regexp {
	return routePattern(p.outputPath)
}

func routePattern(uriPath string) *regexp.Regexp {
	ext := path.Ext(uriPath)
	base := strings.TrimSuffix(uriPath, ext)
	expr := "^" + regexp.QuoteMeta(base) + "(" + digestPattern + ")?" + regexp.QuoteMeta(ext) + "$"
	return regexp.MustCompile(expr)
}
