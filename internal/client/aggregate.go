package client

import "donorhub/internal/domain"

// Aggregates are the derived statistics over the current record list. They
// are pure functions of the list, recomputed from scratch on every refresh
// and never persisted anywhere.
type Aggregates struct {
	Total       int
	ByStatus    map[string]int
	AmountTotal float64
}

// Aggregate computes statistics for the full record list. AmountTotal sums
// the numeric amount field; records without one contribute zero.
func Aggregate(c domain.Collection, records []domain.Record) Aggregates {
	agg := Aggregates{
		Total:    len(records),
		ByStatus: make(map[string]int),
	}
	for _, rec := range records {
		agg.ByStatus[rec.StatusOrDefault(c)]++
		agg.AmountTotal += numeric(rec["amount"])
	}
	return agg
}

func numeric(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	}
	return 0
}
