package minify

import (
	"fmt"

	tdminify "github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/js"

	"github.com/asset-hub/asset-hub/internal/assetpkg"
)

func init() {
	MustRegister(Engine{
		Type:        assetpkg.TypeJS,
		MediaType:   "application/javascript",
		Description: "ECMAScript minifier (tdewolff/minify js)",
		Minifier:    &js.Minifier{},
	})
	MustRegister(Engine{
		Type:        assetpkg.TypeCSS,
		MediaType:   "text/css",
		Description: "CSS minifier (tdewolff/minify css)",
		Minifier:    &css.Minifier{},
	})
}

// Compress 根据资产类型选择引擎压缩输入文本；未注册的类型返回错误。
func Compress(typ assetpkg.Type, input string) (string, error) {
	engine, ok := Resolve(typ)
	if !ok {
		return "", fmt.Errorf("no compression engine for type %s", typ)
	}

	m := tdminify.New()
	m.Add(engine.MediaType, engine.Minifier)

	output, err := m.String(engine.MediaType, input)
	if err != nil {
		return "", fmt.Errorf("minify %s: %w", typ, err)
	}
	return output, nil
}
