package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"donorhub/internal/domain"
	"donorhub/internal/middleware"
)

// collection resolves the {collection} path segment, honoring legacy
// aliases. A nil store with a handled response means the caller returns.
func (a *App) collection(w http.ResponseWriter, r *http.Request) (domain.Collection, domain.CollectionStore, bool) {
	name := chi.URLParam(r, "collection")
	c, err := domain.ParseCollection(name)
	if err != nil {
		a.error(w, http.StatusNotFound, "unknown_collection", "no such collection: "+name)
		return "", nil, false
	}
	return c, a.Stores.Collection(c), true
}

// RecordsList handles GET /api/{collection}.
func (a *App) RecordsList(w http.ResponseWriter, r *http.Request) {
	c, store, ok := a.collection(w, r)
	if !ok {
		return
	}
	records, err := store.List(r.Context())
	if err != nil {
		a.Logger.Error().Err(err).Str("collection", string(c)).Msg("list failed")
		a.error(w, http.StatusInternalServerError, "storage_unavailable", "failed to read collection")
		return
	}
	if records == nil {
		records = []domain.Record{}
	}
	a.json(w, http.StatusOK, records)
}

// RecordsCreate handles POST /api/{collection}. The body is an open field
// mapping; the store assigns id, timestamp, and the default status. When a
// geo resolver is configured the submitter's country is stamped into the
// payload for admin triage, never overwriting a caller-supplied value.
func (a *App) RecordsCreate(w http.ResponseWriter, r *http.Request) {
	c, store, ok := a.collection(w, r)
	if !ok {
		return
	}
	var fields domain.Record
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if fields == nil {
		fields = domain.Record{}
	}
	if a.Geo != nil {
		if _, present := fields["country"]; !present {
			if country, err := a.Geo.CountryCode(middleware.ClientIP(r)); err == nil && country != "" {
				fields["country"] = country
			}
		}
	}
	rec, err := store.Create(r.Context(), fields)
	if err != nil {
		a.Logger.Error().Err(err).Str("collection", string(c)).Msg("create failed")
		a.error(w, http.StatusInternalServerError, "storage_unavailable", "failed to save record")
		return
	}
	a.json(w, http.StatusCreated, rec)
}

// RecordsUpdate handles PUT /api/{collection}/{id} with a partial field
// mapping that may include a status value.
func (a *App) RecordsUpdate(w http.ResponseWriter, r *http.Request) {
	c, store, ok := a.collection(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")
	var patch domain.Record
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	rec, err := store.Update(r.Context(), id, patch)
	if err != nil {
		a.writeStoreError(w, c, "update", err)
		return
	}
	a.json(w, http.StatusOK, rec)
}

// RecordsDelete handles DELETE /api/{collection}/{id}. The removed record
// is echoed back for confirmation display.
func (a *App) RecordsDelete(w http.ResponseWriter, r *http.Request) {
	c, store, ok := a.collection(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")
	removed, err := store.Delete(r.Context(), id)
	if err != nil {
		a.writeStoreError(w, c, "delete", err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"message": "record deleted",
		"deleted": removed,
	})
}

func (a *App) writeStoreError(w http.ResponseWriter, c domain.Collection, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, "not_found", "record not found")
	case errors.Is(err, domain.ErrIllegalTransition):
		a.error(w, http.StatusConflict, "illegal_transition", err.Error())
	default:
		a.Logger.Error().Err(err).Str("collection", string(c)).Msgf("%s failed", op)
		a.error(w, http.StatusInternalServerError, "storage_unavailable", "failed to persist collection")
	}
}
