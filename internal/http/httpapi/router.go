package httpapi

import (
	stdhttp "net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"donorhub/internal/http/handlers"
	"donorhub/internal/infra"
	"donorhub/internal/middleware"
)

// NewRouter wires the REST surface. Collection names are path segments;
// legacy aliases (contact, contacts) resolve inside the handlers, so every
// route below also serves the aliased paths.
func NewRouter(app *handlers.App, cfg *infra.Config) stdhttp.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, chimiddleware.RealIP, chimiddleware.Recoverer)
	r.Use(middleware.Logger(app.Logger))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	}

	r.Get("/healthz", app.Health)

	submitLimit := middleware.RateLimit(cfg.RateLimitPerMin, time.Minute)
	adminOnly := middleware.AdminAuth(cfg.AdminToken)

	r.Route("/api", func(r chi.Router) {
		r.Get("/stats", app.StatsSummary)
		r.Route("/{collection}", func(r chi.Router) {
			r.Get("/", app.RecordsList)
			r.With(submitLimit).Post("/", app.RecordsCreate)
			r.Group(func(r chi.Router) {
				r.Use(adminOnly)
				r.Put("/{id}", app.RecordsUpdate)
				r.Delete("/{id}", app.RecordsDelete)
			})
		})
	})

	return r
}
