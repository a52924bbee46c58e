package builder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"

	"github.com/asset-hub/asset-hub/internal/assetpkg"
	"github.com/asset-hub/asset-hub/internal/cache"
	"github.com/asset-hub/asset-hub/internal/config"
	"github.com/asset-hub/asset-hub/internal/fetch"
	"github.com/asset-hub/asset-hub/internal/logging"
	"github.com/asset-hub/asset-hub/internal/minify"
	"github.com/asset-hub/asset-hub/internal/server"
)

// Handler 负责 orchestrate “缓存命中 → 解析 → 取内容 → 压缩 → 写缓存” 的全流程，
// 对外暴露 server.AssetHandler，内部复用共享 http.Client 与磁盘缓存。
type Handler struct {
	client *http.Client
	logger *logrus.Logger
	store  cache.Store
	global config.GlobalConfig
}

// NewHandler constructs a build handler with shared HTTP client/logger/store.
func NewHandler(client *http.Client, logger *logrus.Logger, store cache.Store, global config.GlobalConfig) *Handler {
	return &Handler{
		client: client,
		logger: logger,
		store:  store,
		global: global,
	}
}

// Handle 按路由模式分派：production 输出压缩合并产物，development 输出原始拼接。
func (h *Handler) Handle(c fiber.Ctx, route *server.PackageRoute) error {
	started := time.Now()
	requestID := server.RequestID(c)

	ctx := c.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	entries, err := route.Package.Resolve()
	if err != nil {
		h.logBuildError(route, requestID, "resolve_failed", err)
		return h.writeError(c, fiber.StatusInternalServerError, "resolve_failed")
	}

	if route.Mode == config.ModeDevelopment {
		return h.serveDevelopment(c, ctx, route, entries, requestID, started)
	}
	return h.serveProduction(c, ctx, route, entries, requestID, started)
}

func (h *Handler) serveProduction(
	c fiber.Ctx,
	ctx context.Context,
	route *server.PackageRoute,
	entries []assetpkg.Entry,
	requestID string,
	started time.Time,
) error {
	files := entryFiles(entries)

	modTime, err := newestModTime(entries)
	if err != nil {
		h.logBuildError(route, requestID, "stat_failed", err)
		return h.writeError(c, fiber.StatusInternalServerError, "build_failed")
	}

	digest, err := assetpkg.Digest(files)
	if err != nil {
		h.logBuildError(route, requestID, "digest_failed", err)
		return h.writeError(c, fiber.StatusInternalServerError, "build_failed")
	}

	locator := cache.Locator{
		PackageName: route.Config.Name,
		Name:        path.Base(assetpkg.BustedPath(route.Package.OutputPath(), digest)),
	}
	writer := cache.NewBuildWriter(h.store)

	if writer.Enabled() {
		result, err := h.store.Get(ctx, locator)
		switch {
		case err == nil:
			if writer.IsFresh(result.Entry, modTime) {
				defer result.Reader.Close()
				return h.serveCached(c, route, result, requestID, started)
			}
			result.Reader.Close()
		case errors.Is(err, cache.ErrNotFound):
			// miss, continue
		default:
			h.logger.WithError(err).
				WithFields(logrus.Fields{"package": route.Config.Name}).
				Warn("cache_get_failed")
		}
	}

	contents, err := h.combinedContent(ctx, c, entries)
	if err != nil {
		h.logBuildError(route, requestID, "content_failed", err)
		return h.writeError(c, fiber.StatusInternalServerError, "build_failed")
	}

	minified, err := minify.Compress(route.Package.Type(), contents)
	if err != nil {
		h.logBuildError(route, requestID, "minify_failed", err)
		return h.writeError(c, fiber.StatusInternalServerError, "minify_failed")
	}

	if writer.Enabled() {
		opts := cache.PutOptions{ModTime: modTime}
		if _, err := writer.Put(ctx, locator, strings.NewReader(minified), opts); err != nil {
			h.logger.WithError(err).
				WithFields(logrus.Fields{"package": route.Config.Name}).
				Warn("cache_write_failed")
		}
	}

	return h.serveText(c, route, minified, false, requestID, started)
}

func (h *Handler) serveDevelopment(
	c fiber.Ctx,
	ctx context.Context,
	route *server.PackageRoute,
	entries []assetpkg.Entry,
	requestID string,
	started time.Time,
) error {
	contents, err := h.combinedContent(ctx, c, entries)
	if err != nil {
		h.logBuildError(route, requestID, "content_failed", err)
		return h.writeError(c, fiber.StatusInternalServerError, "build_failed")
	}
	return h.serveText(c, route, contents, false, requestID, started)
}

func (h *Handler) serveCached(
	c fiber.Ctx,
	route *server.PackageRoute,
	result *cache.ReadResult,
	requestID string,
	started time.Time,
) error {
	c.Set("Content-Type", route.Package.Type().ContentType())
	c.Set("X-Asset-Hub-Cache-Hit", "true")
	if requestID != "" {
		c.Set("X-Request-ID", requestID)
	}
	if result.Entry.SizeBytes > 0 {
		c.Response().Header.SetContentLength(int(result.Entry.SizeBytes))
	}
	c.Status(fiber.StatusOK)

	_, err := io.Copy(c.Response().BodyWriter(), result.Reader)
	h.logResult(route, requestID, fiber.StatusOK, true, started, err)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, fmt.Sprintf("read cache failed: %v", err))
	}
	return nil
}

func (h *Handler) serveText(
	c fiber.Ctx,
	route *server.PackageRoute,
	body string,
	cacheHit bool,
	requestID string,
	started time.Time,
) error {
	c.Set("Content-Type", route.Package.Type().ContentType())
	c.Set("X-Asset-Hub-Cache-Hit", fmt.Sprintf("%t", cacheHit))
	if requestID != "" {
		c.Set("X-Request-ID", requestID)
	}
	c.Status(fiber.StatusOK)

	_, err := io.WriteString(c.Response().BodyWriter(), body)
	h.logResult(route, requestID, fiber.StatusOK, cacheHit, started, err)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, fmt.Sprintf("write body failed: %v", err))
	}
	return nil
}

// HandleSource 直接回源磁盘提供单个源文件，开发模式标签指向的路径走这里。
// 路径中的摘要段在查找前剥离。
func (h *Handler) HandleSource(c fiber.Ctx, sourcePath string) error {
	requestID := server.RequestID(c)

	clean := path.Clean("/" + strings.TrimPrefix(sourcePath, "/"))
	clean = assetpkg.StripDigest(clean)

	root := h.global.AssetRoot
	file := filepath.Join(root, filepath.FromSlash(strings.TrimPrefix(clean, "/")))
	if !strings.HasPrefix(file, root+string(filepath.Separator)) {
		return h.renderPathUnmapped(c, sourcePath, requestID)
	}

	info, err := os.Stat(file)
	if err != nil || info.IsDir() {
		return h.renderPathUnmapped(c, sourcePath, requestID)
	}

	f, err := os.Open(file)
	if err != nil {
		return h.renderPathUnmapped(c, sourcePath, requestID)
	}
	defer f.Close()

	c.Set("Content-Type", sourceContentType(clean))
	if requestID != "" {
		c.Set("X-Request-ID", requestID)
	}
	c.Status(fiber.StatusOK)

	if _, err := io.Copy(c.Response().BodyWriter(), f); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, fmt.Sprintf("read source failed: %v", err))
	}
	return nil
}

// combinedContent 取回全部条目的内容并以换行拼接。
// 配置了 RemoteHost 时走 HTTP 抓取并透传入站 Authorization，否则读本地磁盘。
func (h *Handler) combinedContent(ctx context.Context, c fiber.Ctx, entries []assetpkg.Entry) (string, error) {
	if len(entries) == 0 {
		return "", nil
	}

	if h.global.RemoteEnabled() {
		fetcher := fetch.NewFetcher(h.client, fetch.Options{
			Host:          h.global.RemoteHost,
			BasePath:      h.global.RemoteBasePath,
			Authorization: c.Get(fiber.HeaderAuthorization),
			Logger:        h.logger,
		})
		return fetcher.Contents(ctx, entryPaths(entries)), nil
	}

	parts := make([]string, len(entries))
	for i, entry := range entries {
		raw, err := os.ReadFile(entry.File)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", entry.File, err)
		}
		parts[i] = string(raw)
	}
	return strings.Join(parts, "\n"), nil
}

func (h *Handler) renderPathUnmapped(c fiber.Ctx, sourcePath, requestID string) error {
	if h.logger != nil {
		h.logger.WithFields(logrus.Fields{
			"action": "path_lookup",
			"path":   sourcePath,
		}).Warn("path unmapped")
	}
	if requestID != "" {
		c.Set("X-Request-ID", requestID)
	}
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"error": "path_unmapped",
	})
}

func (h *Handler) writeError(c fiber.Ctx, status int, code string) error {
	return c.Status(status).JSON(fiber.Map{"error": code})
}

func (h *Handler) logBuildError(route *server.PackageRoute, requestID, code string, err error) {
	if h.logger == nil {
		return
	}
	fields := logging.PackageFields(route.Config.Name, route.Config.Type, route.Mode, false)
	fields["action"] = "build"
	fields["error"] = code
	if requestID != "" {
		fields["request_id"] = requestID
	}
	h.logger.WithFields(fields).Error(err.Error())
}

func (h *Handler) logResult(route *server.PackageRoute, requestID string, status int, cacheHit bool, started time.Time, err error) {
	if h.logger == nil {
		return
	}
	fields := logging.PackageFields(route.Config.Name, route.Config.Type, route.Mode, cacheHit)
	fields["action"] = "build"
	fields["status"] = status
	fields["duration_ms"] = time.Since(started).Milliseconds()
	if requestID != "" {
		fields["request_id"] = requestID
	}
	if err != nil {
		h.logger.WithFields(fields).Error(err.Error())
		return
	}
	h.logger.WithFields(fields).Info("asset served")
}

func entryFiles(entries []assetpkg.Entry) []string {
	files := make([]string, len(entries))
	for i, entry := range entries {
		files[i] = entry.File
	}
	return files
}

func entryPaths(entries []assetpkg.Entry) []string {
	paths := make([]string, len(entries))
	for i, entry := range entries {
		paths[i] = entry.Path
	}
	return paths
}

func newestModTime(entries []assetpkg.Entry) (time.Time, error) {
	var newest time.Time
	for _, entry := range entries {
		info, err := os.Stat(entry.File)
		if err != nil {
			return time.Time{}, err
		}
		if info.ModTime().After(newest) {
			newest = info.ModTime()
		}
	}
	return newest, nil
}

func sourceContentType(uriPath string) string {
	if typ, ok := assetpkg.ParseType(strings.TrimPrefix(path.Ext(uriPath), ".")); ok {
		return typ.ContentType()
	}
	return "application/octet-stream"
}
