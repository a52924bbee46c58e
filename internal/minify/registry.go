package minify

import (
	"fmt"
	"sort"
	"sync"

	tdminify "github.com/tdewolff/minify/v2"

	"github.com/asset-hub/asset-hub/internal/assetpkg"
)

// Engine 记录一种资产类型的压缩引擎及其选项，供配置校验和诊断端使用。
type Engine struct {
	Type        assetpkg.Type
	MediaType   string
	Description string
	Minifier    tdminify.Minifier
}

var globalRegistry = newRegistry()

type registry struct {
	mu      sync.RWMutex
	engines map[assetpkg.Type]Engine
}

func newRegistry() *registry {
	return &registry{engines: make(map[assetpkg.Type]Engine)}
}

// Register 将引擎加入全局注册表，重复类型会返回错误。
func Register(engine Engine) error {
	return globalRegistry.register(engine)
}

// MustRegister 在注册失败时 panic，适合 init() 中调用。
func MustRegister(engine Engine) {
	if err := Register(engine); err != nil {
		panic(err)
	}
}

// Resolve 返回指定资产类型的引擎。
func Resolve(typ assetpkg.Type) (Engine, bool) {
	return globalRegistry.resolve(typ)
}

// List 返回按类型排序的引擎列表。
func List() []Engine {
	return globalRegistry.list()
}

// Keys 返回所有已注册引擎的类型键，供调试或诊断使用。
func Keys() []string {
	items := List()
	result := make([]string, len(items))
	for i, engine := range items {
		result[i] = string(engine.Type)
	}
	return result
}

func (r *registry) register(engine Engine) error {
	if !engine.Type.Valid() {
		return fmt.Errorf("engine type is invalid: %q", engine.Type)
	}
	if engine.MediaType == "" {
		return fmt.Errorf("engine %s: media type is required", engine.Type)
	}
	if engine.Minifier == nil {
		return fmt.Errorf("engine %s: minifier is required", engine.Type)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.engines[engine.Type]; exists {
		return fmt.Errorf("engine %s already registered", engine.Type)
	}
	r.engines[engine.Type] = engine
	return nil
}

func (r *registry) resolve(typ assetpkg.Type) (Engine, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	engine, ok := r.engines[typ]
	return engine, ok
}

func (r *registry) list() []Engine {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.engines) == 0 {
		return nil
	}

	keys := make([]string, 0, len(r.engines))
	for typ := range r.engines {
		keys = append(keys, string(typ))
	}
	sort.Strings(keys)

	result := make([]Engine, 0, len(keys))
	for _, key := range keys {
		result = append(result, r.engines[assetpkg.Type(key)])
	}
	return result
}
