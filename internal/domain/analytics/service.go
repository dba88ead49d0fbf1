package analytics

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const isoMillis = "2006-01-02T15:04:05.000-07:00"

// ---------------------------------------------------------------------------
// Snapshot types
// ---------------------------------------------------------------------------

// PeriodRange is the resolved window echoed back with every snapshot.
type PeriodRange struct {
	StartISO string `json:"start_iso"`
	EndISO   string `json:"end_iso"`
}

// GlobalMetrics are the headline numbers on the dashboard.
type GlobalMetrics struct {
	Revenue       decimal.Decimal `json:"revenue"`
	AverageTicket decimal.Decimal `json:"average_ticket"`
	Conversion    int             `json:"conversion"`
	NewClients    int             `json:"new_clients_count"`
	Total         int             `json:"total"`
	Completed     int             `json:"completed"`
}

// ProfessionalAnalysis is one professional's row in the professionals
// report: the ranked entry plus status breakdown and items-sold counts.
type ProfessionalAnalysis struct {
	RankedEntry
	StatusCounts   map[string]int `json:"status_counts"`
	ProceduresSold int            `json:"procedures_sold"`
	PackagesSold   int            `json:"packages_sold"`
}

// Snapshot is the immutable result of one pipeline invocation. It is
// recomputed in full on every call; nothing in it is shared or mutated
// afterwards.
type Snapshot struct {
	Period             PeriodRange            `json:"period"`
	Metrics            GlobalMetrics          `json:"metrics"`
	TopProcedures      []RankedEntry          `json:"top_procedures"`
	TopPackages        []RankedEntry          `json:"top_packages"`
	TopProfessionals   []RankedEntry          `json:"top_professionals"`
	Professionals      []ProfessionalAnalysis `json:"professional_analysis"`
	TopClients         []RankedEntry          `json:"top_clients"`
	ClientAnalysis     []ClientAnalysis       `json:"client_analysis"`
	DailySeries        []DayBucket            `json:"daily_series"`
	StatusDistribution []StatusCount          `json:"status_distribution"`
}

// ---------------------------------------------------------------------------
// Service: the aggregate assembler
// ---------------------------------------------------------------------------

// Service orchestrates one dashboard computation: resolve the window, read
// raw rows, fold once, rank, resolve names, assemble. Each invocation is
// independent and idempotent; the service holds no per-call state and caches
// nothing across calls.
type Service struct {
	readers Readers
	windows *WindowResolver
	rowCap  int
	now     func() time.Time
}

// NewService creates an analytics service. rowCap bounds how many
// appointment rows a single invocation will read.
func NewService(readers Readers, windows *WindowResolver, rowCap int) *Service {
	return &Service{
		readers: readers,
		windows: windows,
		rowCap:  rowCap,
		now:     time.Now,
	}
}

// Compute produces the dashboard snapshot for one tenant and period. If any
// required read fails the whole call fails with the underlying cause; a
// partial snapshot is never returned.
func (s *Service) Compute(ctx context.Context, tenant string, period Period, custom *Window) (*Snapshot, error) {
	if tenant == "" {
		return nil, ErrNoTenant
	}

	w, err := s.windows.Resolve(s.now(), period, custom)
	if err != nil {
		return nil, err
	}

	// The two window-scoped reads are independent; issue them together.
	var (
		txs        []*Transaction
		newClients int
		txErr      error
		ncErr      error
		wg         sync.WaitGroup
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		txs, txErr = s.readers.Transactions.ListByWindow(ctx, tenant, w, s.rowCap)
	}()
	go func() {
		defer wg.Done()
		newClients, ncErr = s.readers.NewClients.CountCreatedIn(ctx, tenant, w)
	}()
	wg.Wait()
	if txErr != nil {
		return nil, fmt.Errorf("fetch appointments: %w", txErr)
	}
	if ncErr != nil {
		return nil, fmt.Errorf("count new clients: %w", ncErr)
	}

	planPackages := map[uuid.UUID]uuid.UUID{}
	if planIDs := PlanIDs(txs); len(planIDs) > 0 {
		planPackages, err = s.readers.Plans.ResolvePlans(ctx, tenant, planIDs)
		if err != nil {
			return nil, fmt.Errorf("resolve plan packages: %w", err)
		}
	}

	records := Normalize(txs, planPackages)
	acc := Accumulate(records)

	topProcedures := TopByTotal(acc.ProcedureEntries(), TopProcedureCount)
	topPackages := TopByTotal(acc.PackageEntries(), TopPackageCount)

	profStats := acc.ProfessionalEntries()
	topProfessionals := TopByTotal(entryView(profStats, func(p *ProfessionalStats) *Entry { return &p.Entry }), TopProfessionalCount)

	clientStats := acc.ClientEntries()
	topClients := TopByTotal(entryView(clientStats, func(c *ClientStats) *Entry { return &c.Entry }), TopClientCount)
	analysisClients := TopClientsByRevenue(clientStats, ClientAnalysisCount)

	// One batched lookup per dimension: the id set is the union of
	// everything the snapshot will display for it.
	analysisProcIDs, analysisPkgIDs := ItemIDs(analysisClients)

	procNames, err := s.resolveNames(ctx, tenant, s.readers.ProcedureNames, append(entryIDs(topProcedures), analysisProcIDs...))
	if err != nil {
		return nil, fmt.Errorf("resolve procedure names: %w", err)
	}
	pkgNames, err := s.resolveNames(ctx, tenant, s.readers.PackageNames, append(entryIDs(topPackages), analysisPkgIDs...))
	if err != nil {
		return nil, fmt.Errorf("resolve package names: %w", err)
	}
	profNames, err := s.resolveNames(ctx, tenant, s.readers.ProfessionalNames, entryIDs(topProfessionals))
	if err != nil {
		return nil, fmt.Errorf("resolve professional names: %w", err)
	}
	clientIDs := entryIDs(topClients)
	for _, c := range analysisClients {
		clientIDs = append(clientIDs, c.ID)
	}
	clientNames, err := s.resolveNames(ctx, tenant, s.readers.ClientNames, clientIDs)
	if err != nil {
		return nil, fmt.Errorf("resolve client names: %w", err)
	}

	avgTicket := decimal.Zero
	if acc.Completed > 0 {
		avgTicket = acc.Revenue.Div(decimal.NewFromInt(int64(acc.Completed))).Round(2)
	}

	return &Snapshot{
		Period: PeriodRange{
			StartISO: w.Start.Format(isoMillis),
			EndISO:   w.End.Format(isoMillis),
		},
		Metrics: GlobalMetrics{
			Revenue:       acc.Revenue,
			AverageTicket: avgTicket,
			Conversion:    SafeRate(acc.Completed, acc.Total),
			NewClients:    newClients,
			Total:         acc.Total,
			Completed:     acc.Completed,
		},
		TopProcedures:      rankedEntries(topProcedures, procNames),
		TopPackages:        rankedEntries(topPackages, pkgNames),
		TopProfessionals:   rankedEntries(topProfessionals, profNames),
		Professionals:      professionalAnalysis(topProfessionals, acc, profNames),
		TopClients:         rankedEntries(topClients, clientNames),
		ClientAnalysis:     ProjectClients(analysisClients, clientNames, procNames, pkgNames),
		DailySeries:        BuildDaySeries(records, w, s.windows.Location()),
		StatusDistribution: BuildStatusDistribution(records),
	}, nil
}

// resolveNames deduplicates the id set and issues a single lookup. An empty
// set costs zero round trips.
func (s *Service) resolveNames(ctx context.Context, tenant string, resolver NameResolver, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	seen := make(map[uuid.UUID]bool, len(ids))
	distinct := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		distinct = append(distinct, id)
	}
	if len(distinct) == 0 {
		return map[uuid.UUID]string{}, nil
	}
	return resolver.ResolveNames(ctx, tenant, distinct)
}

func rankedEntries(entries []*Entry, names map[uuid.UUID]string) []RankedEntry {
	out := make([]RankedEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, rankedEntry(e, names))
	}
	return out
}

func professionalAnalysis(ranked []*Entry, acc *Accumulation, names map[uuid.UUID]string) []ProfessionalAnalysis {
	out := make([]ProfessionalAnalysis, 0, len(ranked))
	for _, e := range ranked {
		p := acc.professionals[e.ID]
		statusCounts := make(map[string]int, len(p.StatusCounts))
		for k, v := range p.StatusCounts {
			statusCounts[k] = v
		}
		out = append(out, ProfessionalAnalysis{
			RankedEntry:    rankedEntry(e, names),
			StatusCounts:   statusCounts,
			ProceduresSold: p.ProceduresSold,
			PackagesSold:   p.PackagesSold,
		})
	}
	return out
}

func entryView[T any](stats []T, pick func(T) *Entry) []*Entry {
	out := make([]*Entry, 0, len(stats))
	for _, s := range stats {
		out = append(out, pick(s))
	}
	return out
}
