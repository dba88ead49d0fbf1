package analytics

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Reference bounds for the ranked report slices.
const (
	TopProcedureCount      = 10
	TopPackageCount        = 10
	TopProfessionalCount   = 8
	TopClientCount         = 10
	ClientAnalysisCount    = 25
	ClientAnalysisItemsCap = 6
)

// RankedEntry is one row of a bounded "most sold" style report.
type RankedEntry struct {
	ID         uuid.UUID       `json:"id"`
	Name       string          `json:"name"`
	Total      int             `json:"total"`
	Completed  int             `json:"completed"`
	Conversion int             `json:"conversion"`
	Revenue    decimal.Decimal `json:"revenue"`
}

// TopByTotal sorts entries descending by total and returns at most limit of
// them. The sort is stable: entries with equal totals keep their relative
// (insertion) order, so the outcome under ties depends on input order and is
// not deterministic across re-runs with re-ordered input.
func TopByTotal(entries []*Entry, limit int) []*Entry {
	ranked := make([]*Entry, len(entries))
	copy(ranked, entries)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Total > ranked[j].Total
	})
	if limit < len(ranked) {
		ranked = ranked[:limit]
	}
	return ranked
}

// rankedEntry builds the report row for an accumulator entry, with its
// display name resolved from a batched lookup.
func rankedEntry(e *Entry, names map[uuid.UUID]string) RankedEntry {
	return RankedEntry{
		ID:         e.ID,
		Name:       names[e.ID],
		Total:      e.Total,
		Completed:  e.Completed,
		Conversion: SafeRate(e.Completed, e.Total),
		Revenue:    e.Revenue,
	}
}

// entryIDs extracts the id set of a ranked slice for name resolution.
func entryIDs(entries []*Entry) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ID)
	}
	return ids
}
