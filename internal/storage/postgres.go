package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"donorhub/internal/domain"
)

// PostgresStore keeps one row per collection holding the full serialized
// record list, mirroring the flat-file layout: the collection remains the
// unit of durability and is rewritten whole on every mutation. The
// per-collection mutex serializes read-modify-write spans within this
// process; the store assumes a single writer process, like the file
// backend.
type PostgresStore struct {
	pool        *pgxpool.Pool
	collections map[domain.Collection]*pgCollection
}

const createCollectionsTable = `
CREATE TABLE IF NOT EXISTS collections (
	name       TEXT PRIMARY KEY,
	records    JSONB NOT NULL DEFAULT '[]'::jsonb,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`

// NewPostgresStore ensures the schema and returns a store backed by pool.
func NewPostgresStore(ctx context.Context, pool *pgxpool.Pool, opts Options) (*PostgresStore, error) {
	if pool == nil {
		return nil, errors.New("storage: pgx pool is required")
	}
	if _, err := pool.Exec(ctx, createCollectionsTable); err != nil {
		return nil, fmt.Errorf("storage: ensure schema: %w", err)
	}
	s := &PostgresStore{pool: pool, collections: make(map[domain.Collection]*pgCollection)}
	for _, c := range domain.Collections() {
		s.collections[c] = &pgCollection{name: c, pool: pool, opts: opts}
	}
	return s, nil
}

// Collection returns the store bound to c.
func (s *PostgresStore) Collection(c domain.Collection) domain.CollectionStore {
	return s.collections[c]
}

type pgCollection struct {
	name domain.Collection
	pool *pgxpool.Pool
	opts Options
	mu   sync.Mutex
}

func (p *pgCollection) List(ctx context.Context) ([]domain.Record, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.load(ctx)
}

func (p *pgCollection) Create(ctx context.Context, fields domain.Record) (domain.Record, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	records, err := p.load(ctx)
	if err != nil {
		return nil, err
	}
	next, rec := applyCreate(p.name, records, fields, p.opts)
	if err := p.persist(ctx, next); err != nil {
		return nil, err
	}
	return rec, nil
}

func (p *pgCollection) Update(ctx context.Context, id string, patch domain.Record) (domain.Record, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	records, err := p.load(ctx)
	if err != nil {
		return nil, err
	}
	next, rec, err := applyUpdate(p.name, records, id, patch, p.opts)
	if err != nil {
		return nil, err
	}
	if err := p.persist(ctx, next); err != nil {
		return nil, err
	}
	return rec, nil
}

func (p *pgCollection) Delete(ctx context.Context, id string) (domain.Record, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	records, err := p.load(ctx)
	if err != nil {
		return nil, err
	}
	next, removed, err := applyDelete(p.name, records, id)
	if err != nil {
		return nil, err
	}
	if err := p.persist(ctx, next); err != nil {
		return nil, err
	}
	return removed, nil
}

func (p *pgCollection) load(ctx context.Context) ([]domain.Record, error) {
	row := p.pool.QueryRow(ctx, `SELECT records FROM collections WHERE name = $1;`, string(p.name))
	var raw []byte
	if err := row.Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: select %s: %v", domain.ErrStorageUnavailable, p.name, err)
	}
	var records []domain.Record
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", domain.ErrStorageUnavailable, p.name, err)
	}
	return records, nil
}

func (p *pgCollection) persist(ctx context.Context, records []domain.Record) error {
	if records == nil {
		records = []domain.Record{}
	}
	raw, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", domain.ErrStorageUnavailable, p.name, err)
	}
	_, err = p.pool.Exec(ctx, `
INSERT INTO collections (name, records, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (name) DO UPDATE SET records = EXCLUDED.records, updated_at = now();
`, string(p.name), raw)
	if err != nil {
		return fmt.Errorf("%w: upsert %s: %v", domain.ErrStorageUnavailable, p.name, err)
	}
	return nil
}

var _ domain.Store = (*PostgresStore)(nil)
