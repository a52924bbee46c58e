package routes

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v3"

	"github.com/asset-hub/asset-hub/internal/config"
	"github.com/asset-hub/asset-hub/internal/minify"
	"github.com/asset-hub/asset-hub/internal/server"
)

func TestEncodeEnginesListsBuiltins(t *testing.T) {
	encoded := encodeEngines(minify.List())
	if len(encoded) < 2 {
		t.Fatalf("expected builtin engines, got %d", len(encoded))
	}

	types := make(map[string]string, len(encoded))
	for _, engine := range encoded {
		types[engine.Type] = engine.MediaType
	}
	if types["js"] != "application/javascript" {
		t.Fatalf("unexpected js media type: %s", types["js"])
	}
	if types["css"] != "text/css" {
		t.Fatalf("unexpected css media type: %s", types["css"])
	}
}

func TestPackagesEndpointListsConfiguredPackages(t *testing.T) {
	app := newRoutesApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/-/packages", nil))
	if err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 status, got %d", resp.StatusCode)
	}

	var payload struct {
		Packages []packagePayload `json:"packages"`
		Engines  []enginePayload  `json:"engines"`
	}
	decodeJSONBody(t, resp.Body, &payload)

	if len(payload.Packages) != 1 {
		t.Fatalf("expected 1 package, got %d", len(payload.Packages))
	}
	if payload.Packages[0].Name != "app" {
		t.Fatalf("unexpected package name: %s", payload.Packages[0].Name)
	}
	if payload.Packages[0].FileCount != 2 {
		t.Fatalf("expected 2 resolved files, got %d", payload.Packages[0].FileCount)
	}
	if payload.Packages[0].Pattern == "" {
		t.Fatalf("expected route pattern to be encoded")
	}
	if len(payload.Engines) == 0 {
		t.Fatalf("expected engines to be listed")
	}
}

func TestPackageDetailIncludesDigest(t *testing.T) {
	app := newRoutesApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/-/packages/app", nil))
	if err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 status, got %d", resp.StatusCode)
	}

	var payload packageDetailPayload
	decodeJSONBody(t, resp.Body, &payload)

	if len(payload.Paths) != 2 {
		t.Fatalf("expected 2 resolved paths, got %v", payload.Paths)
	}
	if len(payload.Digest) != 32 {
		t.Fatalf("expected 32-char digest, got %q", payload.Digest)
	}
	if !strings.Contains(payload.BustedPath, payload.Digest) {
		t.Fatalf("busted path should embed the digest: %s", payload.BustedPath)
	}
}

func TestPackageDetailReturns404ForUnknownName(t *testing.T) {
	app := newRoutesApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/-/packages/nope", nil))
	if err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404 status, got %d", resp.StatusCode)
	}

	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "package_not_found") {
		t.Fatalf("expected package_not_found error, got %s", string(body))
	}
}

func TestPackageHTMLRendersTags(t *testing.T) {
	app := newRoutesApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/-/packages/app/html?mode=development", nil))
	if err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 status, got %d", resp.StatusCode)
	}

	body, _ := io.ReadAll(resp.Body)
	html := string(body)
	if strings.Count(html, "<script") != 2 {
		t.Fatalf("development mode should render one tag per file, got %s", html)
	}
	if !strings.Contains(html, "/assets/js/") {
		t.Fatalf("tags should carry the global prefix, got %s", html)
	}

	resp, err = app.Test(httptest.NewRequest("GET", "/-/packages/app/html?mode=production", nil))
	if err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}
	body, _ = io.ReadAll(resp.Body)
	if strings.Count(string(body), "<script") != 1 {
		t.Fatalf("production mode should render a single tag, got %s", string(body))
	}

	resp, err = app.Test(httptest.NewRequest("GET", "/-/packages/app/html?mode=staging", nil))
	if err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for unknown mode, got %d", resp.StatusCode)
	}
}

func newRoutesApp(t *testing.T) *fiber.App {
	t.Helper()

	root := t.TempDir()
	for name, content := range map[string]string{
		"js/app.js":  "var app = 1;",
		"js/util.js": "var util = 2;",
	} {
		full := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatalf("mkdir failed: %v", err)
		}
		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			t.Fatalf("write failed: %v", err)
		}
	}

	cfg := &config.Config{
		Global: config.GlobalConfig{
			ListenPort: 5000,
			AssetRoot:  root,
			Mode:       config.ModeProduction,
			PathPrefix: "/assets",
		},
		Packages: []config.PackageConfig{
			{
				Name:      "app",
				Type:      "js",
				Path:      "/js/all.js",
				Filespecs: []string{"js/*.js"},
			},
		},
	}

	registry, err := server.NewPackageRegistry(cfg)
	if err != nil {
		t.Fatalf("failed to create registry: %v", err)
	}

	app := fiber.New()
	t.Cleanup(func() { _ = app.Shutdown() })
	RegisterPackageRoutes(app, registry)
	return app
}

func decodeJSONBody(t *testing.T, body io.Reader, target any) {
	t.Helper()
	raw, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read body failed: %v", err)
	}
	if err := json.Unmarshal(raw, target); err != nil {
		t.Fatalf("decode body failed: %v (body=%s)", err, string(raw))
	}
}
