package analytics

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Accumulator entries
// ---------------------------------------------------------------------------

// Entry is a keyed running total built by one pass over the record set.
// Invariants: 0 <= Completed <= Total; Revenue >= 0; Revenue only grows when
// the contributing record is completed.
type Entry struct {
	ID        uuid.UUID
	Total     int
	Completed int
	Revenue   decimal.Decimal
}

// ProfessionalStats extends Entry with the per-professional breakdowns the
// professional analysis needs: a status tally and counts of completed
// appointments that carried at least one procedure or package link. The sold
// counts are appointment counts, not revenue-weighted.
type ProfessionalStats struct {
	Entry
	StatusCounts   map[string]int
	ProceduresSold int
	PackagesSold   int
}

// ClientStats extends Entry with per-item frequency maps, consumed by the
// client analysis projection so it never re-scans the raw record set.
type ClientStats struct {
	Entry
	ProcedureFreq  map[uuid.UUID]int
	PackageFreq    map[uuid.UUID]int
	procedureOrder []uuid.UUID
	packageOrder   []uuid.UUID
}

// ---------------------------------------------------------------------------
// Accumulation: four keyed folds built in a single pass
// ---------------------------------------------------------------------------

// Accumulation holds the four dimension accumulators plus insertion order
// per dimension. Order matters: rankings break ties by first appearance in
// the record set, which keeps repeated runs over identical input
// byte-identical.
type Accumulation struct {
	procedures    map[uuid.UUID]*Entry
	packages      map[uuid.UUID]*Entry
	professionals map[uuid.UUID]*ProfessionalStats
	clients       map[uuid.UUID]*ClientStats

	procedureOrder    []uuid.UUID
	packageOrder      []uuid.UUID
	professionalOrder []uuid.UUID
	clientOrder       []uuid.UUID

	Total     int
	Completed int
	Revenue   decimal.Decimal
}

// Accumulate folds the normalized records into all four accumulators.
//
// Attribution rule: a completed record's value is divided evenly across the
// distinct linked ids of the procedure and package dimensions, so several
// items sharing one appointment slot never double-count the full value.
// Professionals and clients receive the full, undivided value since a record
// has at most one of each.
func Accumulate(records []*Record) *Accumulation {
	acc := &Accumulation{
		procedures:    make(map[uuid.UUID]*Entry),
		packages:      make(map[uuid.UUID]*Entry),
		professionals: make(map[uuid.UUID]*ProfessionalStats),
		clients:       make(map[uuid.UUID]*ClientStats),
		Revenue:       decimal.Zero,
	}

	for _, r := range records {
		acc.Total++
		if r.Completed {
			acc.Completed++
			acc.Revenue = acc.Revenue.Add(r.Value)
		}

		acc.foldSplit(acc.procedures, &acc.procedureOrder, r.ProcedureIDs, r)
		acc.foldSplit(acc.packages, &acc.packageOrder, r.PackageIDs, r)
		acc.foldProfessional(r)
		acc.foldClient(r)
	}

	return acc
}

// foldSplit applies the even-split attribution rule for one dimension. With
// zero links the dimension is untouched: the record stays visible to the
// global totals and the day series only.
func (acc *Accumulation) foldSplit(dim map[uuid.UUID]*Entry, order *[]uuid.UUID, ids []uuid.UUID, r *Record) {
	if len(ids) == 0 {
		return
	}

	var share decimal.Decimal
	if r.Completed {
		share = r.Value.Div(decimal.NewFromInt(int64(len(ids))))
	}

	for _, id := range ids {
		e, ok := dim[id]
		if !ok {
			e = &Entry{ID: id, Revenue: decimal.Zero}
			dim[id] = e
			*order = append(*order, id)
		}
		e.Total++
		if r.Completed {
			e.Completed++
			e.Revenue = e.Revenue.Add(share)
		}
	}
}

func (acc *Accumulation) foldProfessional(r *Record) {
	if r.ProfessionalID == nil {
		return
	}
	id := *r.ProfessionalID
	p, ok := acc.professionals[id]
	if !ok {
		p = &ProfessionalStats{
			Entry:        Entry{ID: id, Revenue: decimal.Zero},
			StatusCounts: make(map[string]int),
		}
		acc.professionals[id] = p
		acc.professionalOrder = append(acc.professionalOrder, id)
	}

	p.Total++
	p.StatusCounts[r.Status]++
	if r.Completed {
		p.Completed++
		p.Revenue = p.Revenue.Add(r.Value)
		if len(r.ProcedureIDs) > 0 {
			p.ProceduresSold++
		}
		if len(r.PackageIDs) > 0 {
			p.PackagesSold++
		}
	}
}

func (acc *Accumulation) foldClient(r *Record) {
	if r.ClientID == nil {
		return
	}
	id := *r.ClientID
	c, ok := acc.clients[id]
	if !ok {
		c = &ClientStats{
			Entry:         Entry{ID: id, Revenue: decimal.Zero},
			ProcedureFreq: make(map[uuid.UUID]int),
			PackageFreq:   make(map[uuid.UUID]int),
		}
		acc.clients[id] = c
		acc.clientOrder = append(acc.clientOrder, id)
	}

	c.Total++
	if r.Completed {
		c.Completed++
		c.Revenue = c.Revenue.Add(r.Value)
	}
	for _, pid := range r.ProcedureIDs {
		if c.ProcedureFreq[pid] == 0 {
			c.procedureOrder = append(c.procedureOrder, pid)
		}
		c.ProcedureFreq[pid]++
	}
	for _, pid := range r.PackageIDs {
		if c.PackageFreq[pid] == 0 {
			c.packageOrder = append(c.packageOrder, pid)
		}
		c.PackageFreq[pid]++
	}
}

// ---------------------------------------------------------------------------
// Ordered accessors
// ---------------------------------------------------------------------------

// ProcedureEntries returns the by-procedure accumulator in insertion order.
func (acc *Accumulation) ProcedureEntries() []*Entry {
	return orderedEntries(acc.procedures, acc.procedureOrder)
}

// PackageEntries returns the by-package accumulator in insertion order.
func (acc *Accumulation) PackageEntries() []*Entry {
	return orderedEntries(acc.packages, acc.packageOrder)
}

// ProfessionalEntries returns the by-professional accumulator in insertion order.
func (acc *Accumulation) ProfessionalEntries() []*ProfessionalStats {
	out := make([]*ProfessionalStats, 0, len(acc.professionalOrder))
	for _, id := range acc.professionalOrder {
		out = append(out, acc.professionals[id])
	}
	return out
}

// ClientEntries returns the by-client accumulator in insertion order.
func (acc *Accumulation) ClientEntries() []*ClientStats {
	out := make([]*ClientStats, 0, len(acc.clientOrder))
	for _, id := range acc.clientOrder {
		out = append(out, acc.clients[id])
	}
	return out
}

func orderedEntries(dim map[uuid.UUID]*Entry, order []uuid.UUID) []*Entry {
	out := make([]*Entry, 0, len(order))
	for _, id := range order {
		out = append(out, dim[id])
	}
	return out
}
