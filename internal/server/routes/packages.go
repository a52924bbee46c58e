package routes

import (
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/asset-hub/asset-hub/internal/assetpkg"
	"github.com/asset-hub/asset-hub/internal/config"
	"github.com/asset-hub/asset-hub/internal/minify"
	"github.com/asset-hub/asset-hub/internal/render"
	"github.com/asset-hub/asset-hub/internal/server"
)

// RegisterPackageRoutes 暴露 /-/packages 诊断接口，供运维查询包与引擎绑定关系。
func RegisterPackageRoutes(app *fiber.App, registry *server.PackageRegistry) {
	if app == nil || registry == nil {
		return
	}

	app.Get("/-/packages", func(c fiber.Ctx) error {
		payload := fiber.Map{
			"packages": encodePackages(registry.List()),
			"engines":  encodeEngines(minify.List()),
		}
		return c.JSON(payload)
	})

	app.Get("/-/packages/:name", func(c fiber.Ctx) error {
		route, ok := lookupRoute(c, registry)
		if !ok {
			return respondLookupError(c)
		}
		detail, err := encodePackageDetail(route)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "resolve_failed"})
		}
		return c.JSON(detail)
	})

	app.Get("/-/packages/:name/html", func(c fiber.Ctx) error {
		route, ok := lookupRoute(c, registry)
		if !ok {
			return respondLookupError(c)
		}

		mode := strings.ToLower(strings.TrimSpace(c.Query("mode")))
		if mode == "" {
			mode = route.Mode
		}

		var html string
		var err error
		switch mode {
		case config.ModeDevelopment:
			html, err = render.Development(route.Package, registry.PathPrefix())
		case config.ModeProduction:
			html, err = render.Production(route.Package, registry.PathPrefix())
		default:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_mode"})
		}
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "render_failed"})
		}

		c.Set("Content-Type", "text/html; charset=utf-8")
		return c.SendString(html)
	})
}

type packagePayload struct {
	Name      string   `json:"name"`
	Type      string   `json:"type"`
	Path      string   `json:"path"`
	Mode      string   `json:"mode"`
	Filespecs []string `json:"filespecs"`
	FileCount int      `json:"file_count"`
	Pattern   string   `json:"route_pattern"`
}

type packageDetailPayload struct {
	packagePayload
	Paths      []string `json:"paths"`
	Files      []string `json:"files"`
	Digest     string   `json:"digest"`
	BustedPath string   `json:"busted_path"`
}

type enginePayload struct {
	Type        string `json:"type"`
	MediaType   string `json:"media_type"`
	Description string `json:"description"`
}

func encodeEngines(engines []minify.Engine) []enginePayload {
	if len(engines) == 0 {
		return nil
	}
	result := make([]enginePayload, 0, len(engines))
	for _, engine := range engines {
		result = append(result, enginePayload{
			Type:        string(engine.Type),
			MediaType:   engine.MediaType,
			Description: engine.Description,
		})
	}
	return result
}

func lookupRoute(c fiber.Ctx, registry *server.PackageRegistry) (*server.PackageRoute, bool) {
	name := strings.TrimSpace(c.Params("name"))
	if name == "" {
		return nil, false
	}
	return registry.Lookup(name)
}

func respondLookupError(c fiber.Ctx) error {
	if strings.TrimSpace(c.Params("name")) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "package_name_required"})
	}
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "package_not_found"})
}

func encodePackages(routes []server.PackageRoute) []packagePayload {
	if len(routes) == 0 {
		return nil
	}
	result := make([]packagePayload, 0, len(routes))
	for _, route := range routes {
		result = append(result, encodePackage(route))
	}
	return result
}

func encodePackage(route server.PackageRoute) packagePayload {
	fileCount := 0
	if entries, err := route.Package.Resolve(); err == nil {
		fileCount = len(entries)
	}

	return packagePayload{
		Name:      route.Config.Name,
		Type:      route.Config.Type,
		Path:      route.Config.Path,
		Mode:      route.Mode,
		Filespecs: route.Package.Filespecs(),
		FileCount: fileCount,
		Pattern:   route.Pattern.String(),
	}
}

func encodePackageDetail(route *server.PackageRoute) (packageDetailPayload, error) {
	entries, err := route.Package.Resolve()
	if err != nil {
		return packageDetailPayload{}, err
	}

	paths := make([]string, len(entries))
	files := make([]string, len(entries))
	for i, entry := range entries {
		paths[i] = entry.Path
		files[i] = entry.File
	}

	digest, err := assetpkg.Digest(files)
	if err != nil {
		return packageDetailPayload{}, err
	}

	return packageDetailPayload{
		packagePayload: encodePackage(*route),
		Paths:          paths,
		Files:          files,
		Digest:         digest,
		BustedPath:     assetpkg.BustedPath(route.Package.OutputPath(), digest),
	}, nil
}
