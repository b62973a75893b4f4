package storage

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"donorhub/internal/domain"
)

// IDMode selects how new record identifiers are derived.
type IDMode int

const (
	// IDModeClock derives ids from wall-clock millis, re-deriving under
	// the collection lock until the id is unused. Matches the original
	// system's identifiers.
	IDModeClock IDMode = iota
	// IDModeUUID uses random UUIDs, trading familiarity for
	// collision-freedom under high concurrent create rates.
	IDModeUUID
)

// ParseIDMode maps a config string to an IDMode. Empty selects clock ids.
func ParseIDMode(s string) (IDMode, error) {
	switch s {
	case "", "clock":
		return IDModeClock, nil
	case "uuid":
		return IDModeUUID, nil
	}
	return IDModeClock, fmt.Errorf("unknown id mode %q", s)
}

// Options configure behavior shared by all store backends.
type Options struct {
	Policy domain.TransitionPolicy
	IDMode IDMode
	// Clock is overridable for tests; nil means time.Now.
	Clock func() time.Time
}

func (o Options) now() time.Time {
	if o.Clock != nil {
		return o.Clock()
	}
	return time.Now()
}

func (o Options) newID(existing []domain.Record) string {
	if o.IDMode == IDModeUUID {
		return uuid.NewString()
	}
	base := o.now().UnixMilli()
	for i := int64(0); ; i++ {
		id := strconv.FormatInt(base+i, 10)
		if !containsID(existing, id) {
			return id
		}
	}
}

func containsID(records []domain.Record, id string) bool {
	for _, r := range records {
		if r.ID() == id {
			return true
		}
	}
	return false
}
