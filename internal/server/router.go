package server

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// AssetHandler describes the component responsible for building and serving
// package output. It allows injecting fake handlers during tests.
type AssetHandler interface {
	// Handle serves the package output matched by the route.
	Handle(fiber.Ctx, *PackageRoute) error
	// HandleSource serves an individual source file (development tags point
	// at these); sourcePath has the global prefix already stripped.
	HandleSource(c fiber.Ctx, sourcePath string) error
}

// AppOptions controls how the Fiber application should behave on a specific port.
type AppOptions struct {
	Logger     *logrus.Logger
	Registry   *PackageRegistry
	Assets     AssetHandler
	ListenPort int
}

const (
	contextKeyRoute      = "_assethub_route"
	contextKeyRequestID  = "_assethub_request_id"
	contextKeySourcePath = "_assethub_source_path"
)

// NewApp builds a Fiber application with package path routing middleware and
// structured error handling.
func NewApp(opts AppOptions) (*fiber.App, error) {
	if opts.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if opts.Registry == nil {
		return nil, errors.New("package registry is required")
	}
	if opts.Assets == nil {
		return nil, errors.New("asset handler is required")
	}
	if opts.ListenPort <= 0 {
		return nil, fmt.Errorf("invalid listen port: %d", opts.ListenPort)
	}

	app := fiber.New(fiber.Config{
		CaseSensitive: true,
	})

	app.Use(recover.New())
	app.Use(requestContextMiddleware(opts))

	app.All("/*", func(c fiber.Ctx) error {
		if isDiagnosticsPath(string(c.Request().URI().Path())) {
			return c.Next()
		}
		if route, ok := getRouteFromContext(c); ok {
			return opts.Assets.Handle(c, route)
		}
		return opts.Assets.HandleSource(c, getSourcePathFromContext(c))
	})

	return app, nil
}

// requestContextMiddleware 负责生成请求 ID，并基于请求路径查找 PackageRoute。
func requestContextMiddleware(opts AppOptions) fiber.Handler {
	return func(c fiber.Ctx) error {
		reqID := uuid.NewString()
		c.Locals(contextKeyRequestID, reqID)
		c.Set("X-Request-ID", reqID)

		rawPath := string(c.Request().URI().Path())
		if isDiagnosticsPath(rawPath) {
			return c.Next()
		}

		relPath, underPrefix := opts.Registry.StripPrefix(rawPath)
		if !underPrefix {
			return renderPathUnmapped(c, opts.Logger, rawPath, opts.ListenPort)
		}
		c.Locals(contextKeySourcePath, relPath)

		if route, ok := opts.Registry.Match(relPath); ok {
			c.Locals(contextKeyRoute, route)
		}
		return c.Next()
	}
}

func renderPathUnmapped(c fiber.Ctx, logger *logrus.Logger, path string, port int) error {
	fields := logrus.Fields{
		"action": "path_lookup",
		"path":   path,
		"port":   port,
	}
	logger.WithFields(fields).Warn("path unmapped")

	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"error": "path_unmapped",
	})
}

func getRouteFromContext(c fiber.Ctx) (*PackageRoute, bool) {
	if value := c.Locals(contextKeyRoute); value != nil {
		if route, ok := value.(*PackageRoute); ok {
			return route, true
		}
	}
	return nil, false
}

func getSourcePathFromContext(c fiber.Ctx) string {
	if value := c.Locals(contextKeySourcePath); value != nil {
		if path, ok := value.(string); ok {
			return path
		}
	}
	return string(c.Request().URI().Path())
}

// RequestID returns the request identifier stored by the router middleware.
func RequestID(c fiber.Ctx) string {
	if value := c.Locals(contextKeyRequestID); value != nil {
		if reqID, ok := value.(string); ok {
			return reqID
		}
	}
	return ""
}

func isDiagnosticsPath(path string) bool {
	return strings.HasPrefix(path, "/-/")
}
