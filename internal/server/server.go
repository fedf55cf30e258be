package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"reflect"
	"strings"
	"sync"

	"github.com/danielgtaylor/huma/v2"
	humachi "github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"kloza/internal/config"
	"kloza/internal/engine"
	"kloza/internal/metrics"
)

// Config for the HTTP API handler.
type Config struct {
	Engine   engine.Engine
	BasePath string
	// Development exposes error details in the "error" field of responses.
	Development bool
	Auth        AuthConfig
	RateLimit   config.RateLimit
	Logger      *zap.Logger
	Metrics     *metrics.Metrics
}

// apiError models the error envelope.
type apiError struct {
	status  int
	Success bool     `json:"success" example:"false"`
	Message string   `json:"message" example:"Validation error"`
	Errors  []string `json:"errors,omitempty" example:"[\"Title is required and must be a string\"]"`
	Detail  string   `json:"error,omitempty"`
}

func (e *apiError) GetStatus() int { return e.status }
func (e *apiError) Error() string  { return e.Message }

// New returns an HTTP handler exposing the Kloza API.
func New(cfg Config) (http.Handler, error) {
	basePath := cfg.BasePath
	if basePath == "" {
		basePath = "/api"
	}
	if !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	basePath = strings.TrimSuffix(basePath, "/")
	if basePath == "" {
		return nil, fmt.Errorf("base path must not be the root")
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	huma.DefaultArrayNullable = false
	// Huma's own errors (body parsing, parameter coercion) use the same envelope.
	huma.NewError = func(status int, msg string, errs ...error) huma.StatusError {
		return newHumaError(status, msg, errs)
	}
	huma.NewErrorWithContext = func(_ huma.Context, status int, msg string, errs ...error) huma.StatusError {
		return newHumaError(status, msg, errs)
	}

	router := chi.NewRouter()
	router.Use(recoverer(cfg.Logger, cfg.Development))
	router.Use(requestID)
	router.Use(requestLogger(cfg.Logger, cfg.Metrics))
	router.Use(rateLimiter(cfg.RateLimit))
	router.Use(newAuthMiddleware(basePath, cfg.Auth))
	router.NotFound(routeNotFound)
	router.MethodNotAllowed(routeNotFound)

	hcfg := huma.DefaultConfig("Kloza API", "1.0.0")
	hcfg.Info.Description = "Ideas, Kollabs and Discussions"
	hcfg.OpenAPIPath = ""
	hcfg.DocsPath = "" // custom Swagger UI below
	hcfg.SchemasPath = ""
	api := humachi.New(router, hcfg)
	group := huma.NewGroup(api, basePath)

	registerDocs(router, basePath)
	registerRoot(api)
	registerHealth(group, cfg)
	registerIdeas(group, cfg)
	registerKollabs(group, cfg)
	registerDiscussions(group, cfg)
	registerOpenAPI(router, api, basePath, cfg.Auth.Enabled())
	if cfg.Metrics != nil {
		router.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())
	}

	return router, nil
}

func newAPIError(status int, message string, errs []string, detail string) huma.StatusError {
	return &apiError{
		status:  status,
		Success: false,
		Message: message,
		Errors:  errs,
		Detail:  detail,
	}
}

func newHumaError(status int, msg string, errs []error) huma.StatusError {
	if status == http.StatusUnprocessableEntity {
		status = http.StatusBadRequest
		msg = engine.MsgValidation
	}
	var details []string
	for _, err := range errs {
		if err != nil {
			details = append(details, err.Error())
		}
	}
	return newAPIError(status, msg, details, "")
}

// handleError maps engine outcomes to HTTP statuses.
func (c Config) handleError(err error) huma.StatusError {
	if err == nil {
		return nil
	}
	var ee *engine.Error
	if !errors.As(err, &ee) {
		return newAPIError(http.StatusInternalServerError, msgInternal, nil, c.detail(err.Error()))
	}
	switch ee.Kind {
	case engine.KindBadRequest:
		return newAPIError(http.StatusBadRequest, ee.Message, nil, "")
	case engine.KindValidation:
		return newAPIError(http.StatusBadRequest, ee.Message, ee.Errors, c.detail(strings.Join(ee.Errors, ", ")))
	case engine.KindNotFound:
		return newAPIError(http.StatusNotFound, ee.Message, nil, "")
	case engine.KindConflict:
		return newAPIError(http.StatusConflict, ee.Message, nil, "")
	default:
		detail := ""
		if ee.Err != nil {
			detail = ee.Err.Error()
		}
		return newAPIError(http.StatusInternalServerError, ee.Message, nil, c.detail(detail))
	}
}

func (c Config) detail(s string) string {
	if !c.Development {
		return ""
	}
	return s
}

func writeError(w http.ResponseWriter, err huma.StatusError) {
	status := http.StatusInternalServerError
	if e, ok := err.(interface{ GetStatus() int }); ok {
		status = e.GetStatus()
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(err)
}

func routeNotFound(w http.ResponseWriter, _ *http.Request) {
	writeError(w, newAPIError(http.StatusNotFound, msgRouteNotFound, nil, ""))
}

func registerDocs(r chi.Router, basePath string) {
	r.Get("/docs", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		io.WriteString(w, swaggerHTML(basePath))
	})
}

func registerOpenAPI(r chi.Router, api huma.API, basePath string, secured bool) {
	var (
		once sync.Once
		spec []byte
	)
	specPath := path.Join(basePath, "openapi.json")
	r.Get(specPath, func(w http.ResponseWriter, r *http.Request) {
		once.Do(func() {
			oas := api.OpenAPI()
			ensureDefaultErrorResponses(oas)
			if secured {
				applyAuthSecurity(oas, basePath)
			}
			spec, _ = json.Marshal(oas)
		})
		w.Header().Set("Content-Type", "application/json")
		w.Write(spec)
	})
}

func ensureDefaultErrorResponses(oas *huma.OpenAPI) {
	if oas == nil || oas.Paths == nil {
		return
	}
	var ref *huma.Schema
	if oas.Components != nil && oas.Components.Schemas != nil {
		ref = oas.Components.Schemas.Schema(reflect.TypeOf(apiError{}), true, "ApiError")
	}
	for _, item := range oas.Paths {
		for _, op := range []*huma.Operation{
			item.Get, item.Put, item.Post, item.Delete, item.Options, item.Head, item.Patch, item.Trace,
		} {
			if op == nil {
				continue
			}
			if op.Responses == nil {
				op.Responses = map[string]*huma.Response{}
			}
			op.Responses["default"] = &huma.Response{
				Description: "Error",
				Content: map[string]*huma.MediaType{
					"application/json": {Schema: ref},
				},
			}
		}
	}
}

func applyAuthSecurity(oas *huma.OpenAPI, basePath string) {
	if oas.Components == nil {
		oas.Components = &huma.Components{}
	}
	if oas.Components.SecuritySchemes == nil {
		oas.Components.SecuritySchemes = map[string]*huma.SecurityScheme{}
	}
	oas.Components.SecuritySchemes["bearerAuth"] = &huma.SecurityScheme{
		Type:         "http",
		Scheme:       "bearer",
		BearerFormat: "JWT",
	}
	security := []map[string][]string{{"bearerAuth": {}}}
	for route, item := range oas.Paths {
		for _, op := range []*huma.Operation{
			item.Get, item.Put, item.Post, item.Delete, item.Options, item.Head, item.Patch, item.Trace,
		} {
			if op == nil {
				continue
			}
			if isPublicPath(route, basePath) {
				op.Security = []map[string][]string{}
				continue
			}
			op.Security = security
		}
	}
}

func swaggerHTML(basePath string) string {
	specURL := path.Join("/", path.Join(basePath, "openapi.json"))
	return fmt.Sprintf(`<!doctype html>
<html lang="en">
  <head>
    <meta charset="utf-8"/>
    <meta name="viewport" content="width=device-width, initial-scale=1"/>
    <title>Kloza API Docs</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js" crossorigin></script>
    <script>
      window.onload = () => {
        SwaggerUIBundle({
          url: '%s',
          dom_id: '#swagger-ui'
        });
      };
    </script>
  </body>
</html>`, specURL)
}
