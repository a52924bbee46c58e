package cache

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrStoreUnavailable 表示当前未注入缓存存储实例。
var ErrStoreUnavailable = errors.New("cache store unavailable")

// BuildWriter 封装构建产物的缓存写入与新鲜度判定。
// 产物以源文件集合的最新修改时间为时间戳落盘，源文件变更即视为过期。
type BuildWriter struct {
	store Store
}

// NewBuildWriter 构造产物写入器。
func NewBuildWriter(store Store) BuildWriter {
	return BuildWriter{store: store}
}

// Enabled 返回当前是否具备缓存写入能力。
func (w BuildWriter) Enabled() bool {
	return w.store != nil
}

// Put 写入构建产物，并保持与 Store 相同的语义。
func (w BuildWriter) Put(ctx context.Context, locator Locator, body io.Reader, opts PutOptions) (*Entry, error) {
	if w.store == nil {
		return nil, ErrStoreUnavailable
	}
	return w.store.Put(ctx, locator, body, opts)
}

// IsFresh 判断缓存条目是否仍覆盖 sourceModTime 时刻的源文件状态。
// 空包（零值 sourceModTime）的产物始终视为新鲜。
func (w BuildWriter) IsFresh(entry Entry, sourceModTime time.Time) bool {
	if sourceModTime.IsZero() {
		return true
	}
	return !entry.ModTime.Before(sourceModTime)
}
