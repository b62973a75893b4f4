package storage

import (
	"context"
	"sync"

	"donorhub/internal/domain"
)

// MemoryStore keeps collections in process memory. It backs tests and
// throwaway environments; durability ends with the process.
type MemoryStore struct {
	collections map[domain.Collection]*memCollection
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore(opts Options) *MemoryStore {
	s := &MemoryStore{collections: make(map[domain.Collection]*memCollection)}
	for _, c := range domain.Collections() {
		s.collections[c] = &memCollection{name: c, opts: opts}
	}
	return s
}

// Collection returns the store bound to c.
func (s *MemoryStore) Collection(c domain.Collection) domain.CollectionStore {
	return s.collections[c]
}

type memCollection struct {
	name    domain.Collection
	opts    Options
	mu      sync.Mutex
	records []domain.Record
}

func (m *memCollection) List(ctx context.Context) ([]domain.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneAll(m.records), nil
}

func (m *memCollection) Create(ctx context.Context, fields domain.Record) (domain.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	next, rec := applyCreate(m.name, m.records, fields, m.opts)
	m.records = next
	return rec, nil
}

func (m *memCollection) Update(ctx context.Context, id string, patch domain.Record) (domain.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	next, rec, err := applyUpdate(m.name, m.records, id, patch, m.opts)
	if err != nil {
		return nil, err
	}
	m.records = next
	return rec, nil
}

func (m *memCollection) Delete(ctx context.Context, id string) (domain.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	next, removed, err := applyDelete(m.name, m.records, id)
	if err != nil {
		return nil, err
	}
	m.records = next
	return removed, nil
}

var _ domain.Store = (*MemoryStore)(nil)
