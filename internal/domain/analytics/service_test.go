package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// -- Mock readers --

type mockTxReader struct {
	txs   []*Transaction
	err   error
	calls int
}

func (m *mockTxReader) ListByWindow(_ context.Context, tenant string, w Window, rowCap int) ([]*Transaction, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if rowCap < len(m.txs) {
		return m.txs[:rowCap], nil
	}
	return m.txs, nil
}

type mockClientCounter struct {
	count int
	err   error
}

func (m *mockClientCounter) CountCreatedIn(_ context.Context, tenant string, w Window) (int, error) {
	return m.count, m.err
}

type mockPlanResolver struct {
	plans map[uuid.UUID]uuid.UUID
	calls int
}

func (m *mockPlanResolver) ResolvePlans(_ context.Context, tenant string, planIDs []uuid.UUID) (map[uuid.UUID]uuid.UUID, error) {
	m.calls++
	return m.plans, nil
}

type mockNameResolver struct {
	names map[uuid.UUID]string
	calls int
}

func (m *mockNameResolver) ResolveNames(_ context.Context, tenant string, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	m.calls++
	out := make(map[uuid.UUID]string, len(ids))
	for _, id := range ids {
		if name, ok := m.names[id]; ok {
			out[id] = name
		}
	}
	return out, nil
}

type testReaders struct {
	txs     *mockTxReader
	counter *mockClientCounter
	plans   *mockPlanResolver
	procs   *mockNameResolver
	pkgs    *mockNameResolver
	profs   *mockNameResolver
	clients *mockNameResolver
}

func newTestReaders() *testReaders {
	return &testReaders{
		txs:     &mockTxReader{},
		counter: &mockClientCounter{},
		plans:   &mockPlanResolver{plans: map[uuid.UUID]uuid.UUID{}},
		procs:   &mockNameResolver{names: map[uuid.UUID]string{}},
		pkgs:    &mockNameResolver{names: map[uuid.UUID]string{}},
		profs:   &mockNameResolver{names: map[uuid.UUID]string{}},
		clients: &mockNameResolver{names: map[uuid.UUID]string{}},
	}
}

func (r *testReaders) readers() Readers {
	return Readers{
		Transactions:      r.txs,
		NewClients:        r.counter,
		Plans:             r.plans,
		ProcedureNames:    r.procs,
		PackageNames:      r.pkgs,
		ProfessionalNames: r.profs,
		ClientNames:       r.clients,
	}
}

func newTestService(t *testing.T, r *testReaders) *Service {
	t.Helper()
	windows, err := NewWindowResolver("America/Sao_Paulo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	svc := NewService(r.readers(), windows, 5000)
	svc.now = func() time.Time {
		return time.Date(2024, 3, 15, 12, 0, 0, 0, windows.Location())
	}
	return svc
}

func TestCompute_RequiresTenant(t *testing.T) {
	svc := newTestService(t, newTestReaders())
	_, err := svc.Compute(context.Background(), "", PeriodMonth, nil)
	if !errors.Is(err, ErrNoTenant) {
		t.Errorf("err = %v, want ErrNoTenant", err)
	}
}

func TestCompute_FullSnapshot(t *testing.T) {
	r := newTestReaders()

	proc := uuid.New()
	prof := uuid.New()
	client := uuid.New()
	plan := uuid.New()
	pkg := uuid.New()
	r.plans.plans[plan] = pkg
	r.procs.names[proc] = "Botox"
	r.pkgs.names[pkg] = "Pacote Verao"
	r.profs.names[prof] = "Dra. Ana"
	r.clients.names[client] = "Joana"
	r.counter.count = 4

	loc, _ := time.LoadLocation("America/Sao_Paulo")
	day := time.Date(2024, 3, 14, 10, 0, 0, 0, loc)
	r.txs.txs = []*Transaction{
		{ID: uuid.New(), ClientID: ptr(client), ProfessionalID: ptr(prof),
			ProcedureID: ptr(proc), Status: StatusCompleted, Value: money("200"), OccursAt: day},
		{ID: uuid.New(), ClientID: ptr(client), PlanID: ptr(plan),
			Status: StatusCompleted, Value: money("100"), OccursAt: day.Add(time.Hour)},
		{ID: uuid.New(), ProfessionalID: ptr(prof),
			Status: StatusCancelled, OccursAt: day.Add(2 * time.Hour)},
	}

	svc := newTestService(t, r)
	snap, err := svc.Compute(context.Background(), "acme", PeriodMonth, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	m := snap.Metrics
	if m.Total != 3 || m.Completed != 2 {
		t.Errorf("total/completed = %d/%d, want 3/2", m.Total, m.Completed)
	}
	if !m.Revenue.Equal(decimal.NewFromInt(300)) {
		t.Errorf("revenue = %s, want 300", m.Revenue)
	}
	if !m.AverageTicket.Equal(decimal.NewFromInt(150)) {
		t.Errorf("average ticket = %s, want 150", m.AverageTicket)
	}
	if m.Conversion != 67 {
		t.Errorf("conversion = %d, want 67", m.Conversion)
	}
	if m.NewClients != 4 {
		t.Errorf("new clients = %d, want 4", m.NewClients)
	}

	if len(snap.TopProcedures) != 1 || snap.TopProcedures[0].Name != "Botox" {
		t.Errorf("top procedures = %+v", snap.TopProcedures)
	}
	if len(snap.TopPackages) != 1 || snap.TopPackages[0].Name != "Pacote Verao" {
		t.Errorf("plan-resolved package missing: %+v", snap.TopPackages)
	}
	if len(snap.TopProfessionals) != 1 || snap.TopProfessionals[0].Name != "Dra. Ana" {
		t.Errorf("top professionals = %+v", snap.TopProfessionals)
	}
	if len(snap.Professionals) != 1 {
		t.Fatalf("professional analysis rows = %d, want 1", len(snap.Professionals))
	}
	pa := snap.Professionals[0]
	if pa.StatusCounts[StatusCompleted] != 1 || pa.StatusCounts[StatusCancelled] != 1 {
		t.Errorf("status counts = %v", pa.StatusCounts)
	}
	if len(snap.TopClients) != 1 || snap.TopClients[0].Name != "Joana" {
		t.Errorf("top clients = %+v", snap.TopClients)
	}
	if len(snap.ClientAnalysis) != 1 || snap.ClientAnalysis[0].Total != 2 {
		t.Errorf("client analysis = %+v", snap.ClientAnalysis)
	}

	// The month window spans 30 calendar days, gap-filled.
	if len(snap.DailySeries) != 30 {
		t.Errorf("daily series length = %d, want 30", len(snap.DailySeries))
	}
	if len(snap.StatusDistribution) != 2 {
		t.Errorf("status distribution = %+v", snap.StatusDistribution)
	}
	if snap.Period.StartISO == "" || snap.Period.EndISO == "" {
		t.Error("period range not populated")
	}
}

func TestCompute_OneLookupPerDimension(t *testing.T) {
	r := newTestReaders()
	proc := uuid.New()
	client := uuid.New()
	loc, _ := time.LoadLocation("America/Sao_Paulo")
	r.txs.txs = []*Transaction{
		{ID: uuid.New(), ClientID: ptr(client), ProcedureID: ptr(proc),
			Status: StatusCompleted, Value: money("50"),
			OccursAt: time.Date(2024, 3, 15, 9, 0, 0, 0, loc)},
	}

	svc := newTestService(t, r)
	if _, err := svc.Compute(context.Background(), "acme", PeriodWeek, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Ranking ids and client-analysis item ids share one batched call.
	if r.procs.calls != 1 {
		t.Errorf("procedure lookups = %d, want 1", r.procs.calls)
	}
	if r.clients.calls != 1 {
		t.Errorf("client lookups = %d, want 1", r.clients.calls)
	}
	// Nothing referenced a package or plan, so those cost zero calls.
	if r.pkgs.calls != 0 {
		t.Errorf("package lookups = %d, want 0", r.pkgs.calls)
	}
	if r.plans.calls != 0 {
		t.Errorf("plan resolutions = %d, want 0", r.plans.calls)
	}
}

func TestCompute_Idempotent(t *testing.T) {
	r := newTestReaders()
	proc1, proc2 := uuid.New(), uuid.New()
	client := uuid.New()
	loc, _ := time.LoadLocation("America/Sao_Paulo")
	day := time.Date(2024, 3, 15, 9, 0, 0, 0, loc)
	r.txs.txs = []*Transaction{
		{ID: uuid.New(), ClientID: ptr(client), ProcedureIDs: []uuid.UUID{proc1, proc2},
			Status: StatusCompleted, Value: money("99.99"), OccursAt: day},
		{ID: uuid.New(), ClientID: ptr(client), ProcedureIDs: []uuid.UUID{proc2},
			Status: StatusScheduled, OccursAt: day.Add(time.Hour)},
	}

	svc := newTestService(t, r)
	first, err := svc.Compute(context.Background(), "acme", PeriodWeek, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.Compute(context.Background(), "acme", PeriodWeek, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	b1, err := json.Marshal(first)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	b2, err := json.Marshal(second)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b1) != string(b2) {
		t.Error("identical inputs produced different snapshots")
	}
}

func TestCompute_ReadErrorPropagates(t *testing.T) {
	r := newTestReaders()
	r.txs.err = errors.New("connection refused")

	svc := newTestService(t, r)
	_, err := svc.Compute(context.Background(), "acme", PeriodMonth, nil)
	if err == nil || !errors.Is(err, r.txs.err) {
		t.Errorf("err = %v, want wrapped read error", err)
	}
}

func TestCompute_CounterErrorPropagates(t *testing.T) {
	r := newTestReaders()
	r.counter.err = errors.New("timeout")

	svc := newTestService(t, r)
	if _, err := svc.Compute(context.Background(), "acme", PeriodMonth, nil); err == nil {
		t.Error("expected error from new-client count")
	}
}

func TestCompute_EmptyWindow(t *testing.T) {
	svc := newTestService(t, newTestReaders())
	snap, err := svc.Compute(context.Background(), "acme", PeriodToday, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.Metrics.Total != 0 || !snap.Metrics.Revenue.IsZero() {
		t.Errorf("metrics = %+v, want zeros", snap.Metrics)
	}
	if !snap.Metrics.AverageTicket.IsZero() {
		t.Errorf("average ticket = %s, want 0 with no completions", snap.Metrics.AverageTicket)
	}
	if len(snap.DailySeries) != 1 {
		t.Errorf("daily series length = %d, want 1 zero bucket", len(snap.DailySeries))
	}
	if len(snap.TopProcedures) != 0 || len(snap.ClientAnalysis) != 0 {
		t.Error("empty window produced ranked rows")
	}
}

func TestCompute_RowCapBoundsRead(t *testing.T) {
	r := newTestReaders()
	loc, _ := time.LoadLocation("America/Sao_Paulo")
	for i := 0; i < 10; i++ {
		r.txs.txs = append(r.txs.txs, &Transaction{
			ID: uuid.New(), Status: StatusScheduled,
			OccursAt: time.Date(2024, 3, 15, 9, 0, 0, 0, loc),
		})
	}

	windows, _ := NewWindowResolver("America/Sao_Paulo")
	svc := NewService(r.readers(), windows, 3)
	svc.now = func() time.Time { return time.Date(2024, 3, 15, 12, 0, 0, 0, windows.Location()) }

	snap, err := svc.Compute(context.Background(), "acme", PeriodToday, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.Metrics.Total != 3 {
		t.Errorf("total = %d, want 3 under the row cap", snap.Metrics.Total)
	}
}
