package assetpkg

import "strings"

// Type 表示资源包的资产类型，决定渲染标签与压缩引擎。
type Type string

const (
	TypeJS  Type = "js"
	TypeCSS Type = "css"
)

// ParseType 归一化并校验资产类型字符串。
func ParseType(raw string) (Type, bool) {
	switch Type(strings.ToLower(strings.TrimSpace(raw))) {
	case TypeJS:
		return TypeJS, true
	case TypeCSS:
		return TypeCSS, true
	default:
		return "", false
	}
}

// Valid 报告类型是否为受支持的两种资产类型之一。
func (t Type) Valid() bool {
	return t == TypeJS || t == TypeCSS
}

// ContentType 返回该资产类型对应的 HTTP Content-Type。
func (t Type) ContentType() string {
	switch t {
	case TypeJS:
		return "application/javascript"
	case TypeCSS:
		return "text/css"
	default:
		return "application/octet-stream"
	}
}
