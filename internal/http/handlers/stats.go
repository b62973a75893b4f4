package handlers

import (
	"net/http"

	"donorhub/internal/domain"
)

// StatsSummary handles GET /api/stats: status counts per collection and
// the donation amount total. Everything is recomputed from the full lists
// on each request; nothing derived is ever persisted.
func (a *App) StatsSummary(w http.ResponseWriter, r *http.Request) {
	out := make(map[string]any, len(domain.Collections()))
	for _, c := range domain.Collections() {
		records, err := a.Stores.Collection(c).List(r.Context())
		if err != nil {
			a.Logger.Error().Err(err).Str("collection", string(c)).Msg("stats list failed")
			a.error(w, http.StatusInternalServerError, "storage_unavailable", "failed to read collection")
			return
		}
		counts := make(map[string]int)
		for _, rec := range records {
			counts[rec.StatusOrDefault(c)]++
		}
		entry := map[string]any{
			"total":     len(records),
			"by_status": counts,
		}
		if c == domain.CollectionDonations {
			entry["amount_total"] = donationTotal(records)
		}
		out[string(c)] = entry
	}
	a.json(w, http.StatusOK, out)
}

// donationTotal sums the numeric amount field across records. Amounts
// arrive as JSON numbers; anything else counts as zero.
func donationTotal(records []domain.Record) float64 {
	var total float64
	for _, rec := range records {
		if amount, ok := rec["amount"].(float64); ok {
			total += amount
		}
	}
	return total
}
