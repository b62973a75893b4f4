package domain

import "time"

// Reserved field names assigned by the store. They are set at creation time
// and never overwritten by a patch.
const (
	FieldID        = "id"
	FieldTimestamp = "timestamp"
	FieldStatus    = "status"
)

// Record is a single stored entity. Beyond the reserved fields the payload
// is opaque to the store; semantic validation happens at the submission
// boundary, not here.
type Record map[string]any

// ID returns the store-assigned identifier, or "" when unset.
func (r Record) ID() string {
	return r.stringField(FieldID)
}

// Timestamp returns the creation instant as recorded at create time.
func (r Record) Timestamp() string {
	return r.stringField(FieldTimestamp)
}

// Status returns the record's raw status value. Use StatusOrDefault when a
// collection default should stand in for a missing value.
func (r Record) Status() string {
	return r.stringField(FieldStatus)
}

// StatusOrDefault resolves a missing status to the collection's initial
// state. This is display/eligibility defaulting only; the stored payload is
// left untouched.
func (r Record) StatusOrDefault(c Collection) string {
	if s := r.Status(); s != "" {
		return s
	}
	return c.DefaultStatus()
}

func (r Record) stringField(key string) string {
	if v, ok := r[key].(string); ok {
		return v
	}
	return ""
}

// Clone returns a shallow copy so callers can hand records across goroutine
// boundaries without aliasing store-internal state.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Merge applies patch over r and returns the result. Patch fields overwrite,
// unspecified fields are retained; id and timestamp always keep their
// original values regardless of patch content.
func (r Record) Merge(patch Record) Record {
	out := r.Clone()
	for k, v := range patch {
		if k == FieldID || k == FieldTimestamp {
			continue
		}
		out[k] = v
	}
	return out
}

// NewTimestamp formats a creation instant the way records store it.
func NewTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
