package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"donorhub/internal/domain"
)

// FileStore persists each collection as a single JSON document on the local
// filesystem. It is the default backend; one file per collection, rewritten
// whole on every mutation.
type FileStore struct {
	basePath    string
	opts        Options
	collections map[domain.Collection]*fileCollection
}

// NewFileStore initializes a FileStore rooted at basePath, creating the
// directory when missing.
func NewFileStore(basePath string, opts Options) (*FileStore, error) {
	basePath = strings.TrimSpace(basePath)
	if basePath == "" {
		return nil, errors.New("storage: base path is required")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("storage: ensure base path: %w", err)
	}
	s := &FileStore{
		basePath:    basePath,
		opts:        opts,
		collections: make(map[domain.Collection]*fileCollection),
	}
	for _, c := range domain.Collections() {
		s.collections[c] = &fileCollection{
			name: c,
			path: filepath.Join(basePath, string(c)+".json"),
			opts: opts,
		}
	}
	return s, nil
}

// BasePath returns the configured root directory.
func (s *FileStore) BasePath() string {
	if s == nil {
		return ""
	}
	return s.basePath
}

// Collection returns the store bound to c.
func (s *FileStore) Collection(c domain.Collection) domain.CollectionStore {
	return s.collections[c]
}

// fileCollection owns one collection file. The mutex is held across the
// whole read-modify-write span so concurrent mutations cannot lose updates.
type fileCollection struct {
	name domain.Collection
	path string
	opts Options
	mu   sync.Mutex
}

func (f *fileCollection) List(ctx context.Context) ([]domain.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	records, err := f.load()
	if err != nil {
		return nil, err
	}
	return cloneAll(records), nil
}

func (f *fileCollection) Create(ctx context.Context, fields domain.Record) (domain.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	records, err := f.load()
	if err != nil {
		return nil, err
	}
	next, rec := applyCreate(f.name, records, fields, f.opts)
	if err := f.persist(next); err != nil {
		return nil, err
	}
	return rec, nil
}

func (f *fileCollection) Update(ctx context.Context, id string, patch domain.Record) (domain.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	records, err := f.load()
	if err != nil {
		return nil, err
	}
	next, rec, err := applyUpdate(f.name, records, id, patch, f.opts)
	if err != nil {
		return nil, err
	}
	if err := f.persist(next); err != nil {
		return nil, err
	}
	return rec, nil
}

func (f *fileCollection) Delete(ctx context.Context, id string) (domain.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	records, err := f.load()
	if err != nil {
		return nil, err
	}
	next, removed, err := applyDelete(f.name, records, id)
	if err != nil {
		return nil, err
	}
	if err := f.persist(next); err != nil {
		return nil, err
	}
	return removed, nil
}

// load reads the collection file. A missing file is the empty collection;
// anything unreadable or undecodable is surfaced as ErrStorageUnavailable
// so callers treat the collection as unknown instead of crashing.
func (f *fileCollection) load() ([]domain.Record, error) {
	raw, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: read %s: %v", domain.ErrStorageUnavailable, f.path, err)
	}
	records, err := decodeRecords(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", domain.ErrStorageUnavailable, f.path, err)
	}
	return records, nil
}

// decodeRecords accepts the current bare-array layout and the older
// envelope layout so existing data files keep loading.
func decodeRecords(raw []byte) ([]domain.Record, error) {
	var records []domain.Record
	if err := json.Unmarshal(raw, &records); err == nil {
		return records, nil
	}
	var envelope struct {
		Records []domain.Record `json:"records"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, err
	}
	return envelope.Records, nil
}

// persist rewrites the whole collection atomically: write to a temp file in
// the same directory, then rename over the target.
func (f *fileCollection) persist(records []domain.Record) error {
	if records == nil {
		records = []domain.Record{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", domain.ErrStorageUnavailable, f.name, err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(f.path), string(f.name)+"-*.json")
	if err != nil {
		return fmt.Errorf("%w: temp file for %s: %v", domain.ErrStorageUnavailable, f.name, err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("%w: write %s: %v", domain.ErrStorageUnavailable, f.name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: close %s: %v", domain.ErrStorageUnavailable, f.name, err)
	}
	if err := os.Rename(tmpPath, f.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: replace %s: %v", domain.ErrStorageUnavailable, f.name, err)
	}
	return nil
}

var _ domain.Store = (*FileStore)(nil)
