package render

import (
	"html"
	"strings"

	"github.com/asset-hub/asset-hub/internal/assetpkg"
)

// Tag 按资产类型输出单条引用标签，属性值做 HTML 转义。
func Tag(typ assetpkg.Type, uri string) string {
	escaped := html.EscapeString(uri)
	if typ == assetpkg.TypeCSS {
		return `<link rel="stylesheet" href="` + escaped + `">`
	}
	return `<script src="` + escaped + `"></script>`
}

// Development 为每个解析文件输出一条标签，路径逐文件加 buster 并拼接前缀。
// 空包输出空字符串且不报错。
func Development(pkg *assetpkg.Package, prefix string) (string, error) {
	entries, err := pkg.Resolve()
	if err != nil {
		return "", err
	}

	tags := make([]string, 0, len(entries))
	for _, entry := range entries {
		digest, err := assetpkg.Digest([]string{entry.File})
		if err != nil {
			return "", err
		}
		busted := assetpkg.BustedPath(entry.Path, digest)
		tags = append(tags, Tag(pkg.Type(), joinPrefix(prefix, busted)))
	}
	return strings.Join(tags, "\n"), nil
}

// Production 输出指向合并压缩产物的单条标签，buster 覆盖全部源文件。
// 空包输出空字符串且不报错。
func Production(pkg *assetpkg.Package, prefix string) (string, error) {
	files, err := pkg.Files()
	if err != nil {
		return "", err
	}
	if len(files) == 0 {
		return "", nil
	}

	digest, err := assetpkg.Digest(files)
	if err != nil {
		return "", err
	}
	busted := assetpkg.BustedPath(pkg.OutputPath(), digest)
	return Tag(pkg.Type(), joinPrefix(prefix, busted)), nil
}

func joinPrefix(prefix, uri string) string {
	trimmed := strings.TrimSuffix(prefix, "/")
	if trimmed == "" {
		return uri
	}
	return trimmed + uri
}
