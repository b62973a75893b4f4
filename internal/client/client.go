// Package client is the sync client for admin tooling: it resolves a
// working endpoint out of several historical candidates, keeps a disposable
// local projection of one collection, and recomputes derived statistics
// after every confirmed mutation.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"donorhub/internal/domain"
	"donorhub/internal/infra"
)

// DefaultBaseURL is probed when no override is configured.
const DefaultBaseURL = "http://localhost:8080"

// Options configures the sync client.
type Options struct {
	// BaseURL is the primary server address; DefaultBaseURL when empty.
	BaseURL string
	// FallbackURLs are additional origins probed after BaseURL.
	FallbackURLs []string
	// Collection selects the logical resource; recommendations by default.
	Collection domain.Collection
	// Token, when set, is attached as a bearer credential. Absent tokens
	// simply omit the header.
	Token          string
	HTTPClient     *http.Client
	AttemptTimeout time.Duration
	Logger         *infra.Logger
}

// Client holds the in-memory projection of one collection. The projection
// is disposable: it is fully replaced after each successful store
// interaction and holds no authoritative state.
type Client struct {
	collection     domain.Collection
	baseURL        string
	fallbackURLs   []string
	token          string
	httpClient     *http.Client
	attemptTimeout time.Duration
	logger         *infra.Logger

	mu      sync.Mutex
	records []domain.Record
	stats   Aggregates
}

// New constructs a client with sane defaults and injected dependencies.
func New(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	baseURL := strings.TrimSpace(opts.BaseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	collection := opts.Collection
	if collection == "" {
		collection = domain.CollectionRecommendations
	}
	timeout := opts.AttemptTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	logger := opts.Logger
	if logger == nil {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	return &Client{
		collection:     collection,
		baseURL:        baseURL,
		fallbackURLs:   opts.FallbackURLs,
		token:          strings.TrimSpace(opts.Token),
		httpClient:     httpClient,
		attemptTimeout: timeout,
		logger:         logger,
	}
}

// Records returns the current local projection.
func (c *Client) Records() []domain.Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.Record, len(c.records))
	copy(out, c.records)
	return out
}

// Stats returns the aggregates computed at the last refresh.
func (c *Client) Stats() Aggregates {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// FetchAll probes the candidate endpoints strictly in order and accepts the
// first successful, parseable response; remaining candidates are never
// contacted. On total failure it returns ErrAllEndpointsUnreachable and
// leaves the local projection untouched.
func (c *Client) FetchAll(ctx context.Context) ([]domain.Record, error) {
	var lastErr error
	for _, candidate := range candidates(c.collection, c.baseURL, c.fallbackURLs) {
		records, err := c.fetchOne(ctx, candidate)
		if err != nil {
			c.logger.Debug().Err(err).Str("candidate", candidate).Msg("fetch attempt failed")
			lastErr = err
			continue
		}
		c.replaceView(records)
		return records, nil
	}
	return nil, exhausted(lastErr)
}

func (c *Client) fetchOne(ctx context.Context, url string) ([]domain.Record, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.attemptTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	c.authorize(req)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("request %s: status %d", url, resp.StatusCode)
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", url, err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, fmt.Errorf("request %s: empty payload", url)
	}
	records, ok := normalizeRecords(raw, c.collection)
	if !ok {
		return nil, fmt.Errorf("request %s: unparseable payload", url)
	}
	return records, nil
}

// Create submits a new record. Like all mutations it stops at the first
// candidate that accepts, and never reports success unless a remote
// endpoint confirmed the write. Canceling the context mid-flight is
// fire-and-forget: a request that already reached the store may still
// apply.
func (c *Client) Create(ctx context.Context, fields domain.Record) (domain.Record, error) {
	body, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("encode fields: %w", err)
	}
	rec, err := c.mutate(ctx, http.MethodPost, "", body)
	if err != nil {
		return nil, err
	}
	c.refresh(ctx)
	return rec, nil
}

// UpdateStatus requests a status transition for one record. Fire-and-forget
// on cancel, as Create.
func (c *Client) UpdateStatus(ctx context.Context, id, status string) (domain.Record, error) {
	return c.Update(ctx, id, domain.Record{domain.FieldStatus: status})
}

// Update applies a partial field patch to one record. Fire-and-forget on
// cancel, as Create.
func (c *Client) Update(ctx context.Context, id string, patch domain.Record) (domain.Record, error) {
	body, err := json.Marshal(patch)
	if err != nil {
		return nil, fmt.Errorf("encode patch: %w", err)
	}
	rec, err := c.mutate(ctx, http.MethodPut, id, body)
	if err != nil {
		return nil, err
	}
	c.refresh(ctx)
	return rec, nil
}

// Delete removes one record and returns the server's echo of what was
// deleted. Fire-and-forget on cancel, as Create.
func (c *Client) Delete(ctx context.Context, id string) (domain.Record, error) {
	rec, err := c.mutate(ctx, http.MethodDelete, id, nil)
	if err != nil {
		return nil, err
	}
	c.refresh(ctx)
	return rec, nil
}

// mutate walks the candidate list and stops at the first endpoint that
// accepts the mutation. A 404 from a live endpoint is authoritative (the
// endpoint worked, the record is gone) and ends the probe.
func (c *Client) mutate(ctx context.Context, method, id string, body []byte) (domain.Record, error) {
	var lastErr error
	for _, candidate := range candidates(c.collection, c.baseURL, c.fallbackURLs) {
		url := candidate
		if id != "" {
			url += "/" + id
		}
		rec, err := c.mutateOne(ctx, method, url, body)
		if err == nil {
			return rec, nil
		}
		if errorsIsNotFound(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
		}
		c.logger.Debug().Err(err).Str("candidate", url).Msg("mutation attempt failed")
		lastErr = err
	}
	return nil, exhausted(lastErr)
}

type notFoundError struct{ url string }

func (e *notFoundError) Error() string { return "not found at " + e.url }

func errorsIsNotFound(err error) bool {
	_, ok := err.(*notFoundError)
	return ok
}

// recordLevel404 distinguishes "this endpoint works but the record is gone"
// from "this path alias does not exist here". Only the former carries the
// store's not_found error body; the latter must not stop the probe.
func recordLevel404(raw []byte) bool {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return false
	}
	return body.Error == "not_found"
}

func (c *Client) mutateOne(ctx context.Context, method, url string, body []byte) (domain.Record, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.attemptTimeout)
	defer cancel()
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(attemptCtx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.authorize(req)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", url, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", url, err)
	}
	if resp.StatusCode == http.StatusNotFound && recordLevel404(raw) {
		return nil, &notFoundError{url: url}
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("request %s: status %d", url, resp.StatusCode)
	}
	return decodeMutationResponse(raw)
}

// decodeMutationResponse accepts either a bare record or the delete
// confirmation envelope wrapping one under "deleted".
func decodeMutationResponse(raw []byte) (domain.Record, error) {
	var envelope struct {
		Deleted domain.Record `json:"deleted"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Deleted != nil {
		return envelope.Deleted, nil
	}
	var rec domain.Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return rec, nil
}

// refresh re-runs the read path after an accepted mutation so the local
// projection never drifts from server truth. A failed refresh keeps the
// previous projection; the mutation itself already succeeded.
func (c *Client) refresh(ctx context.Context) {
	if _, err := c.FetchAll(ctx); err != nil {
		c.logger.Warn().Err(err).Msg("post-mutation refresh failed; projection is stale")
	}
}

func (c *Client) replaceView(records []domain.Record) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = records
	c.stats = Aggregate(c.collection, records)
}

func (c *Client) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

func exhausted(lastErr error) error {
	if lastErr != nil {
		return fmt.Errorf("%w: last attempt: %v", domain.ErrAllEndpointsUnreachable, lastErr)
	}
	return domain.ErrAllEndpointsUnreachable
}
