package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"donorhub/internal/domain"
)

// countingBackend serves configurable responses per path and records how
// many times each path was contacted.
type countingBackend struct {
	mu       sync.Mutex
	hits     map[string]int
	handlers map[string]http.HandlerFunc
}

func newCountingBackend() *countingBackend {
	return &countingBackend{
		hits:     make(map[string]int),
		handlers: make(map[string]http.HandlerFunc),
	}
}

func (b *countingBackend) handle(path string, h http.HandlerFunc) {
	b.handlers[path] = h
}

func (b *countingBackend) hitCount(path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hits[path]
}

func (b *countingBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.hits[r.URL.Path]++
	b.mu.Unlock()
	if h, ok := b.handlers[r.URL.Path]; ok {
		h(w, r)
		return
	}
	http.NotFound(w, r)
}

func serveRecords(records []domain.Record) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(records)
	}
}

func serveStatus(code int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(code)
	}
}

func TestFetchAllShortCircuitsOnFirstSuccess(t *testing.T) {
	backend := newCountingBackend()
	backend.handle("/api/recommendations", serveStatus(http.StatusInternalServerError))
	backend.handle("/api/contact", serveRecords([]domain.Record{{"id": "1", "status": "pending"}}))
	backend.handle("/api/contacts", serveRecords([]domain.Record{{"id": "ignored"}}))
	srv := httptest.NewServer(backend)
	defer srv.Close()

	c := New(Options{BaseURL: srv.URL})
	records, err := c.FetchAll(context.Background())
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	if len(records) != 1 || records[0].ID() != "1" {
		t.Fatalf("unexpected records: %#v", records)
	}

	if got := backend.hitCount("/api/recommendations"); got != 1 {
		t.Fatalf("first candidate attempts: got %d want 1", got)
	}
	if got := backend.hitCount("/api/contact"); got != 1 {
		t.Fatalf("second candidate attempts: got %d want 1", got)
	}
	if got := backend.hitCount("/api/contacts"); got != 0 {
		t.Fatalf("third candidate must never be contacted, got %d hits", got)
	}
}

func TestFetchAllExhaustionLeavesViewUnchanged(t *testing.T) {
	var healthy atomic.Bool
	healthy.Store(true)
	backend := newCountingBackend()
	backend.handle("/api/recommendations", func(w http.ResponseWriter, r *http.Request) {
		if !healthy.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		serveRecords([]domain.Record{{"id": "1", "status": "pending"}})(w, r)
	})
	srv := httptest.NewServer(backend)
	defer srv.Close()

	c := New(Options{BaseURL: srv.URL})
	if _, err := c.FetchAll(context.Background()); err != nil {
		t.Fatalf("seed fetch: %v", err)
	}

	healthy.Store(false)
	_, err := c.FetchAll(context.Background())
	if !errors.Is(err, domain.ErrAllEndpointsUnreachable) {
		t.Fatalf("expected ErrAllEndpointsUnreachable, got %v", err)
	}

	records := c.Records()
	if len(records) != 1 || records[0].ID() != "1" {
		t.Fatalf("local view changed on total failure: %#v", records)
	}
}

func TestFetchAllFallsBackToSecondOrigin(t *testing.T) {
	good := newCountingBackend()
	good.handle("/api/recommendations", serveRecords([]domain.Record{{"id": "7"}}))
	srv := httptest.NewServer(good)
	defer srv.Close()

	c := New(Options{
		BaseURL:      "http://127.0.0.1:1", // nothing listens here
		FallbackURLs: []string{srv.URL},
	})
	records, err := c.FetchAll(context.Background())
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	if len(records) != 1 || records[0].ID() != "7" {
		t.Fatalf("unexpected records: %#v", records)
	}
}

func TestUpdateStatusStopsAtFirstAcceptingCandidate(t *testing.T) {
	backend := newCountingBackend()
	backend.handle("/api/recommendations/9", serveStatus(http.StatusBadGateway))
	backend.handle("/api/contact/9", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		var patch domain.Record
		_ = json.NewDecoder(r.Body).Decode(&patch)
		_ = json.NewEncoder(w).Encode(domain.Record{"id": "9", "status": patch.Status()})
	})
	backend.handle("/api/contacts/9", serveStatus(http.StatusOK))
	backend.handle("/api/recommendations", serveRecords([]domain.Record{{"id": "9", "status": "approved"}}))
	srv := httptest.NewServer(backend)
	defer srv.Close()

	c := New(Options{BaseURL: srv.URL})
	rec, err := c.UpdateStatus(context.Background(), "9", domain.StatusApproved)
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if rec.Status() != domain.StatusApproved {
		t.Fatalf("status: got %q", rec.Status())
	}
	if got := backend.hitCount("/api/contacts/9"); got != 0 {
		t.Fatalf("probe continued past accepting candidate: %d hits", got)
	}
}

func TestMutationTotalFailureIsNeverFabricatedSuccess(t *testing.T) {
	backend := newCountingBackend()
	for _, path := range []string{"/api/recommendations/1", "/api/contact/1", "/api/contacts/1"} {
		backend.handle(path, serveStatus(http.StatusInternalServerError))
	}
	srv := httptest.NewServer(backend)
	defer srv.Close()

	c := New(Options{BaseURL: srv.URL})
	_, err := c.Delete(context.Background(), "1")
	if !errors.Is(err, domain.ErrAllEndpointsUnreachable) {
		t.Fatalf("expected ErrAllEndpointsUnreachable, got %v", err)
	}
}

func TestMutationRecordLevel404IsAuthoritative(t *testing.T) {
	backend := newCountingBackend()
	backend.handle("/api/recommendations/1", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "not_found", "message": "record not found"})
	})
	srv := httptest.NewServer(backend)
	defer srv.Close()

	c := New(Options{BaseURL: srv.URL})
	_, err := c.Delete(context.Background(), "1")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if got := backend.hitCount("/api/contact/1"); got != 0 {
		t.Fatalf("probe continued after authoritative 404: %d hits", got)
	}
}

func TestDeleteUnwrapsConfirmationEnvelope(t *testing.T) {
	backend := newCountingBackend()
	backend.handle("/api/recommendations/5", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"message": "record deleted",
			"deleted": domain.Record{"id": "5", "name": "gone"},
		})
	})
	backend.handle("/api/recommendations", serveRecords([]domain.Record{}))
	srv := httptest.NewServer(backend)
	defer srv.Close()

	c := New(Options{BaseURL: srv.URL})
	removed, err := c.Delete(context.Background(), "5")
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if removed.ID() != "5" || removed["name"] != "gone" {
		t.Fatalf("envelope not unwrapped: %#v", removed)
	}
}

func TestAggregatesRecomputedAfterMutation(t *testing.T) {
	// Server state is mutable so the refresh sees the post-update truth.
	var mu sync.Mutex
	records := []domain.Record{
		{"id": "a", "status": "pending", "amount": 40.0},
		{"id": "b", "status": "completed", "amount": 10.0},
	}
	backend := newCountingBackend()
	backend.handle("/api/donations", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		_ = json.NewEncoder(w).Encode(records)
	})
	backend.handle("/api/donations/a", func(w http.ResponseWriter, r *http.Request) {
		var patch domain.Record
		_ = json.NewDecoder(r.Body).Decode(&patch)
		mu.Lock()
		records[0] = records[0].Merge(patch)
		updated := records[0].Clone()
		mu.Unlock()
		_ = json.NewEncoder(w).Encode(updated)
	})
	srv := httptest.NewServer(backend)
	defer srv.Close()

	c := New(Options{BaseURL: srv.URL, Collection: domain.CollectionDonations})
	if _, err := c.FetchAll(context.Background()); err != nil {
		t.Fatalf("seed fetch: %v", err)
	}
	if got := c.Stats().AmountTotal; got != 50 {
		t.Fatalf("seed amount total: got %v want 50", got)
	}

	if _, err := c.Update(context.Background(), "a", domain.Record{"amount": 15.0}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	// The replaced amount must not stack on top of the old contribution.
	if got := c.Stats().AmountTotal; got != 25 {
		t.Fatalf("amount total after update: got %v want 25", got)
	}
	if got := c.Stats().ByStatus["pending"]; got != 1 {
		t.Fatalf("pending count: got %d want 1", got)
	}
}

func TestBearerTokenAttachedOnlyWhenConfigured(t *testing.T) {
	var sawAuth atomic.Value
	backend := newCountingBackend()
	backend.handle("/api/recommendations", func(w http.ResponseWriter, r *http.Request) {
		sawAuth.Store(r.Header.Get("Authorization"))
		serveRecords([]domain.Record{})(w, r)
	})
	srv := httptest.NewServer(backend)
	defer srv.Close()

	c := New(Options{BaseURL: srv.URL})
	if _, err := c.FetchAll(context.Background()); err != nil {
		t.Fatalf("FetchAll without token: %v", err)
	}
	if got := sawAuth.Load().(string); got != "" {
		t.Fatalf("unexpected Authorization header %q", got)
	}

	c = New(Options{BaseURL: srv.URL, Token: "secret"})
	if _, err := c.FetchAll(context.Background()); err != nil {
		t.Fatalf("FetchAll with token: %v", err)
	}
	if got := sawAuth.Load().(string); got != "Bearer secret" {
		t.Fatalf("Authorization header: got %q", got)
	}
}

func TestEmptyPayloadIsAttemptFailure(t *testing.T) {
	backend := newCountingBackend()
	backend.handle("/api/recommendations", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK) // 200 with empty body
	})
	backend.handle("/api/contact", serveRecords([]domain.Record{{"id": "1"}}))
	srv := httptest.NewServer(backend)
	defer srv.Close()

	c := New(Options{BaseURL: srv.URL})
	records, err := c.FetchAll(context.Background())
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected fallback past empty payload: %#v", records)
	}
}
