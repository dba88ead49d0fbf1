package analytics

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ItemFrequency is one consumed procedure or package with its appointment count.
type ItemFrequency struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Total int       `json:"total"`
}

// ClientAnalysis is the per-client breakdown for the clients report.
type ClientAnalysis struct {
	ID         uuid.UUID       `json:"id"`
	Name       string          `json:"name"`
	Total      int             `json:"agendamentos_total"`
	Completed  int             `json:"agendamentos_completed"`
	Revenue    decimal.Decimal `json:"revenue"`
	Procedures []ItemFrequency `json:"procedures"`
	Packages   []ItemFrequency `json:"packages"`
}

// TopClientsByRevenue sorts client stats descending by revenue and returns
// at most limit of them. Stable under equal revenue, same caveat as
// TopByTotal.
func TopClientsByRevenue(clients []*ClientStats, limit int) []*ClientStats {
	ranked := make([]*ClientStats, len(clients))
	copy(ranked, clients)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Revenue.GreaterThan(ranked[j].Revenue)
	})
	if limit < len(ranked) {
		ranked = ranked[:limit]
	}
	return ranked
}

// ProjectClients builds the client analysis for an already-bounded top set.
// It reuses the frequency maps built by the accumulator fold, so the raw
// record set is never re-scanned. Each client is limited to the
// ClientAnalysisItemsCap most frequent procedures and packages.
func ProjectClients(top []*ClientStats, clientNames, procedureNames, packageNames map[uuid.UUID]string) []ClientAnalysis {
	out := make([]ClientAnalysis, 0, len(top))
	for _, c := range top {
		out = append(out, ClientAnalysis{
			ID:         c.ID,
			Name:       clientNames[c.ID],
			Total:      c.Total,
			Completed:  c.Completed,
			Revenue:    c.Revenue,
			Procedures: topFrequencies(c.ProcedureFreq, c.procedureOrder, procedureNames, ClientAnalysisItemsCap),
			Packages:   topFrequencies(c.PackageFreq, c.packageOrder, packageNames, ClientAnalysisItemsCap),
		})
	}
	return out
}

// ItemIDs collects every procedure and package id the projection will need a
// display name for, so the service can batch each dimension's lookup into a
// single call together with the ranking ids.
func ItemIDs(top []*ClientStats) (procedures, packages []uuid.UUID) {
	for _, c := range top {
		procedures = append(procedures, c.procedureOrder...)
		packages = append(packages, c.packageOrder...)
	}
	return procedures, packages
}

func topFrequencies(freq map[uuid.UUID]int, order []uuid.UUID, names map[uuid.UUID]string, limit int) []ItemFrequency {
	items := make([]ItemFrequency, 0, len(order))
	for _, id := range order {
		items = append(items, ItemFrequency{ID: id, Name: names[id], Total: freq[id]})
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Total > items[j].Total
	})
	if limit < len(items) {
		items = items[:limit]
	}
	return items
}
