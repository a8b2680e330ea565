// Package swagger отдаёт Swagger UI и OpenAPI описание gateway.
package swagger

import (
	"crypto/sha256"
	"encoding/hex"
	"html/template"
	"net/http"
	"strings"

	"bellman/pkg/logger"
)

// Config конфигурация Swagger UI
type Config struct {
	Title                    string
	BasePath                 string
	DeepLinking              bool
	DocExpansion             string
	DefaultModelsExpandDepth int
}

// DefaultConfig возвращает конфигурацию по умолчанию
func DefaultConfig() *Config {
	return &Config{
		Title:                    "Bellman Gateway API",
		BasePath:                 "/docs",
		DeepLinking:              true,
		DocExpansion:             "list",
		DefaultModelsExpandDepth: 1,
	}
}

// Spec описание API в двух представлениях
type Spec struct {
	JSON []byte
	YAML []byte
}

type document struct {
	body        []byte
	contentType string
	etag        string
}

func newDocument(body []byte, contentType string) *document {
	if body == nil {
		return nil
	}
	sum := sha256.Sum256(body)
	return &document{
		body:        body,
		contentType: contentType,
		etag:        `"` + hex.EncodeToString(sum[:8]) + `"`,
	}
}

// Handler HTTP handler для Swagger UI
type Handler struct {
	config *Config
	ui     *template.Template
	json   *document
	yaml   *document
}

// NewHandler создаёт новый Swagger handler.
// ETag зависит только от содержимого, поэтому переживает рестарт.
func NewHandler(cfg *Config, spec Spec) *Handler {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	cfg.BasePath = "/" + strings.Trim(cfg.BasePath, "/")

	return &Handler{
		config: cfg,
		ui:     template.Must(template.New("swagger-ui").Parse(swaggerUITemplate)),
		json:   newDocument(spec.JSON, "application/json; charset=utf-8"),
		yaml:   newDocument(spec.YAML, "application/yaml; charset=utf-8"),
	}
}

// ServeHTTP обрабатывает HTTP запросы
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, h.config.BasePath)
	path = strings.TrimPrefix(path, "/")

	switch path {
	case "", "index.html":
		h.serveUI(w)
	case "openapi.json":
		h.serveDocument(w, r, h.json)
	case "openapi.yaml":
		h.serveDocument(w, r, h.yaml)
	default:
		http.NotFound(w, r)
	}
}

func (h *Handler) serveUI(w http.ResponseWriter) {
	data := struct {
		Title                    string
		SpecURL                  string
		DeepLinking              bool
		DocExpansion             string
		DefaultModelsExpandDepth int
	}{
		Title:                    h.config.Title,
		SpecURL:                  h.config.BasePath + "/openapi.json",
		DeepLinking:              h.config.DeepLinking,
		DocExpansion:             h.config.DocExpansion,
		DefaultModelsExpandDepth: h.config.DefaultModelsExpandDepth,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")

	if err := h.ui.Execute(w, data); err != nil {
		logger.Log.Error("Failed to execute swagger template", "error", err)
	}
}

func (h *Handler) serveDocument(w http.ResponseWriter, r *http.Request, doc *document) {
	if doc == nil {
		http.NotFound(w, r)
		return
	}
	if match := r.Header.Get("If-None-Match"); match == doc.etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", doc.contentType)
	w.Header().Set("ETag", doc.etag)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	if r.Method == http.MethodHead {
		return
	}
	if _, err := w.Write(doc.body); err != nil {
		logger.Log.Debug("Failed to write spec", "error", err)
	}
}

// RegisterRoutes регистрирует UI и описание в существующем mux.
// Запрос на BasePath без слеша перенаправляется на BasePath/.
func RegisterRoutes(mux *http.ServeMux, cfg *Config, spec Spec) {
	h := NewHandler(cfg, spec)
	base := h.config.BasePath
	mux.Handle(base+"/", h)
	mux.Handle(base, http.RedirectHandler(base+"/", http.StatusMovedPermanently))
}

const swaggerUITemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}}</title>
    <link rel="stylesheet" type="text/css" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css">
    <style>
        html { box-sizing: border-box; overflow-y: scroll; }
        body { margin: 0; padding: 0; background: #fafafa; }
        .swagger-ui .topbar { display: none; }
    </style>
</head>
<body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js" charset="UTF-8"></script>
    <script>
        window.onload = function() {
            window.ui = SwaggerUIBundle({
                url: "{{.SpecURL}}",
                dom_id: '#swagger-ui',
                deepLinking: {{.DeepLinking}},
                docExpansion: "{{.DocExpansion}}",
                defaultModelsExpandDepth: {{.DefaultModelsExpandDepth}},
                supportedSubmitMethods: ["post"],
                presets: [SwaggerUIBundle.presets.apis],
                validatorUrl: null
            });
        };
    </script>
</body>
</html>`
