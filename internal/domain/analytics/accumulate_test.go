package analytics

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func completedRecord(value string) *Record {
	return &Record{
		ID:        uuid.New(),
		Status:    StatusCompleted,
		Completed: true,
		Value:     decimal.RequireFromString(value),
		OccursAt:  time.Now(),
	}
}

func TestAccumulate_EvenSplitAcrossLinks(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	r := completedRecord("100")
	r.ProcedureIDs = []uuid.UUID{a, b}

	acc := Accumulate([]*Record{r})

	entries := acc.ProcedureEntries()
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	for _, e := range entries {
		if !e.Revenue.Equal(decimal.NewFromInt(50)) {
			t.Errorf("entry %s revenue = %s, want 50", e.ID, e.Revenue)
		}
		if e.Total != 1 || e.Completed != 1 {
			t.Errorf("entry %s total/completed = %d/%d, want 1/1", e.ID, e.Total, e.Completed)
		}
	}
	// Global revenue counts the record once, not per link.
	if !acc.Revenue.Equal(decimal.NewFromInt(100)) {
		t.Errorf("global revenue = %s, want 100", acc.Revenue)
	}
}

func TestAccumulate_NonCompletedCountsTotalOnly(t *testing.T) {
	a := uuid.New()
	r := &Record{
		ID:           uuid.New(),
		Status:       StatusScheduled,
		Value:        decimal.NewFromInt(100),
		ProcedureIDs: []uuid.UUID{a},
		OccursAt:     time.Now(),
	}

	acc := Accumulate([]*Record{r})
	e := acc.ProcedureEntries()[0]
	if e.Total != 1 || e.Completed != 0 {
		t.Errorf("total/completed = %d/%d, want 1/0", e.Total, e.Completed)
	}
	if !e.Revenue.IsZero() {
		t.Errorf("revenue = %s, want 0 for non-completed record", e.Revenue)
	}
	if acc.Completed != 0 || !acc.Revenue.IsZero() {
		t.Errorf("global completed/revenue = %d/%s, want 0/0", acc.Completed, acc.Revenue)
	}
}

func TestAccumulate_ProfessionalFullValue(t *testing.T) {
	prof := uuid.New()
	r := completedRecord("100")
	r.ProfessionalID = ptr(prof)
	r.ProcedureIDs = []uuid.UUID{uuid.New(), uuid.New()}

	acc := Accumulate([]*Record{r})
	p := acc.ProfessionalEntries()[0]
	// The professional dimension receives the undivided value even when the
	// procedure dimension splits it.
	if !p.Revenue.Equal(decimal.NewFromInt(100)) {
		t.Errorf("professional revenue = %s, want 100", p.Revenue)
	}
	if p.ProceduresSold != 1 {
		t.Errorf("ProceduresSold = %d, want 1 (appointment count, not link count)", p.ProceduresSold)
	}
	if p.PackagesSold != 0 {
		t.Errorf("PackagesSold = %d, want 0", p.PackagesSold)
	}
	if p.StatusCounts[StatusCompleted] != 1 {
		t.Errorf("StatusCounts[completed] = %d, want 1", p.StatusCounts[StatusCompleted])
	}
}

func TestAccumulate_ClientFrequenciesCountAllStatuses(t *testing.T) {
	client := uuid.New()
	proc := uuid.New()

	cancelled := &Record{
		ID:           uuid.New(),
		ClientID:     ptr(client),
		ProcedureIDs: []uuid.UUID{proc},
		Status:       StatusCancelled,
		OccursAt:     time.Now(),
	}
	done := completedRecord("60")
	done.ClientID = ptr(client)
	done.ProcedureIDs = []uuid.UUID{proc}

	acc := Accumulate([]*Record{cancelled, done})
	c := acc.ClientEntries()[0]
	if c.Total != 2 || c.Completed != 1 {
		t.Errorf("total/completed = %d/%d, want 2/1", c.Total, c.Completed)
	}
	// Frequency tracks consumption interest, so the cancelled visit counts.
	if c.ProcedureFreq[proc] != 2 {
		t.Errorf("ProcedureFreq = %d, want 2", c.ProcedureFreq[proc])
	}
	if !c.Revenue.Equal(decimal.NewFromInt(60)) {
		t.Errorf("revenue = %s, want 60", c.Revenue)
	}
}

func TestAccumulate_UnlinkedRecordStillCountsGlobally(t *testing.T) {
	r := completedRecord("40")

	acc := Accumulate([]*Record{r})
	if acc.Total != 1 || acc.Completed != 1 {
		t.Errorf("global total/completed = %d/%d, want 1/1", acc.Total, acc.Completed)
	}
	if len(acc.ProcedureEntries()) != 0 || len(acc.PackageEntries()) != 0 {
		t.Error("unlinked record leaked into a dimension")
	}
	if len(acc.ProfessionalEntries()) != 0 || len(acc.ClientEntries()) != 0 {
		t.Error("record without professional/client leaked into those dimensions")
	}
}

func TestAccumulate_InsertionOrderPreserved(t *testing.T) {
	first, second, third := uuid.New(), uuid.New(), uuid.New()
	records := []*Record{
		{ID: uuid.New(), ProcedureIDs: []uuid.UUID{first}, Status: StatusScheduled, OccursAt: time.Now()},
		{ID: uuid.New(), ProcedureIDs: []uuid.UUID{second, third}, Status: StatusScheduled, OccursAt: time.Now()},
		{ID: uuid.New(), ProcedureIDs: []uuid.UUID{first}, Status: StatusScheduled, OccursAt: time.Now()},
	}

	acc := Accumulate(records)
	entries := acc.ProcedureEntries()
	want := []uuid.UUID{first, second, third}
	for i, e := range entries {
		if e.ID != want[i] {
			t.Fatalf("entry %d = %s, want %s (first-seen order)", i, e.ID, want[i])
		}
	}
	if entries[0].Total != 2 {
		t.Errorf("first entry total = %d, want 2", entries[0].Total)
	}
}

func TestAccumulate_Invariants(t *testing.T) {
	prof := uuid.New()
	records := []*Record{
		completedRecord("10"),
		{ID: uuid.New(), ProfessionalID: ptr(prof), Status: StatusNoShow, OccursAt: time.Now()},
		{ID: uuid.New(), ProfessionalID: ptr(prof), Status: StatusCompleted, Completed: true, Value: decimal.NewFromInt(25), OccursAt: time.Now()},
	}

	acc := Accumulate(records)
	if acc.Completed > acc.Total {
		t.Errorf("completed %d exceeds total %d", acc.Completed, acc.Total)
	}
	if acc.Revenue.IsNegative() {
		t.Errorf("revenue is negative: %s", acc.Revenue)
	}
	for _, p := range acc.ProfessionalEntries() {
		if p.Completed > p.Total {
			t.Errorf("professional %s: completed %d exceeds total %d", p.ID, p.Completed, p.Total)
		}
	}
}
