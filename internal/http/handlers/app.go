package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"donorhub/internal/domain"
	"donorhub/internal/infra/geoip"
)

// App is the handler container. Stores and the optional geo resolver are
// injected so tests can swap the memory backend in.
type App struct {
	Stores domain.Store
	Logger zerolog.Logger
	Geo    geoip.CountryResolver
}

// NewApp assembles the handler container.
func NewApp(stores domain.Store, logger zerolog.Logger) *App {
	return &App{Stores: stores, Logger: logger}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, status int, code, message string) {
	a.json(w, status, map[string]any{"error": code, "message": message})
}
