package storage

import (
	"fmt"

	"donorhub/internal/domain"
)

// The apply* helpers hold the mutation semantics shared by every backend:
// each takes the collection's current full state and returns the next one.
// Callers serialize invocations per collection and persist the returned
// slice before reporting success.

func applyCreate(c domain.Collection, records []domain.Record, fields domain.Record, opts Options) ([]domain.Record, domain.Record) {
	rec := fields.Clone()
	rec[domain.FieldID] = opts.newID(records)
	rec[domain.FieldTimestamp] = domain.NewTimestamp(opts.now())
	if rec.Status() == "" {
		rec[domain.FieldStatus] = c.DefaultStatus()
	}
	return append(records, rec), rec.Clone()
}

func applyUpdate(c domain.Collection, records []domain.Record, id string, patch domain.Record, opts Options) ([]domain.Record, domain.Record, error) {
	idx := indexOf(records, id)
	if idx < 0 {
		return nil, nil, fmt.Errorf("%w: %s/%s", domain.ErrNotFound, c, id)
	}
	current := records[idx]
	if next, ok := patch[domain.FieldStatus].(string); ok {
		if err := opts.Policy.Check(c, current.StatusOrDefault(c), next); err != nil {
			return nil, nil, err
		}
	}
	merged := current.Merge(patch)
	out := append([]domain.Record(nil), records...)
	out[idx] = merged
	return out, merged.Clone(), nil
}

func applyDelete(c domain.Collection, records []domain.Record, id string) ([]domain.Record, domain.Record, error) {
	idx := indexOf(records, id)
	if idx < 0 {
		return nil, nil, fmt.Errorf("%w: %s/%s", domain.ErrNotFound, c, id)
	}
	removed := records[idx]
	out := append(append([]domain.Record(nil), records[:idx]...), records[idx+1:]...)
	return out, removed.Clone(), nil
}

func indexOf(records []domain.Record, id string) int {
	for i, r := range records {
		if r.ID() == id {
			return i
		}
	}
	return -1
}

func cloneAll(records []domain.Record) []domain.Record {
	out := make([]domain.Record, len(records))
	for i, r := range records {
		out[i] = r.Clone()
	}
	return out
}
