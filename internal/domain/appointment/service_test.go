package appointment

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// -- Mock Repository --

type mockRepo struct {
	appts map[uuid.UUID]*Appointment
}

func newMockRepo() *mockRepo {
	return &mockRepo{appts: make(map[uuid.UUID]*Appointment)}
}

func (m *mockRepo) Create(_ context.Context, _ string, a *Appointment) error {
	a.ID = uuid.New()
	a.CreatedAt = time.Now()
	a.UpdatedAt = time.Now()
	m.appts[a.ID] = a
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, _ string, id uuid.UUID) (*Appointment, error) {
	a, ok := m.appts[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return a, nil
}

func (m *mockRepo) Update(_ context.Context, _ string, a *Appointment) error {
	m.appts[a.ID] = a
	return nil
}

func (m *mockRepo) Delete(_ context.Context, _ string, id uuid.UUID) error {
	delete(m.appts, id)
	return nil
}

func (m *mockRepo) Search(_ context.Context, _ string, params map[string]string, limit, offset int) ([]*Appointment, int, error) {
	var result []*Appointment
	for _, a := range m.appts {
		if status, ok := params["status"]; ok && a.Status != status {
			continue
		}
		result = append(result, a)
	}
	return result, len(result), nil
}

func newTestService() *Service {
	return NewService(newMockRepo())
}

func TestService_Create(t *testing.T) {
	svc := newTestService()
	a := &Appointment{OccursAt: time.Now()}

	if err := svc.Create(context.Background(), "acme", a); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.ID == uuid.Nil {
		t.Error("id not assigned")
	}
	if a.Status != "scheduled" {
		t.Errorf("status = %q, want default scheduled", a.Status)
	}
}

func TestService_Create_RequiresOccursAt(t *testing.T) {
	svc := newTestService()
	if err := svc.Create(context.Background(), "acme", &Appointment{}); err == nil {
		t.Error("expected error for missing occurs_at")
	}
}

func TestService_Create_InvalidStatus(t *testing.T) {
	svc := newTestService()
	a := &Appointment{OccursAt: time.Now(), Status: "booked"}
	if err := svc.Create(context.Background(), "acme", a); err == nil {
		t.Error("expected error for unknown status")
	}
}

func TestService_Create_NegativeValue(t *testing.T) {
	svc := newTestService()
	a := &Appointment{
		OccursAt: time.Now(),
		Value:    decimal.NewNullDecimal(decimal.NewFromInt(-10)),
	}
	if err := svc.Create(context.Background(), "acme", a); err == nil {
		t.Error("expected error for negative value")
	}
}

func TestService_Update_InvalidStatus(t *testing.T) {
	svc := newTestService()
	a := &Appointment{OccursAt: time.Now()}
	if err := svc.Create(context.Background(), "acme", a); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	a.Status = "done"
	if err := svc.Update(context.Background(), "acme", a); err == nil {
		t.Error("expected error for unknown status")
	}
}

func TestService_GetAndDelete(t *testing.T) {
	svc := newTestService()
	a := &Appointment{OccursAt: time.Now(), Status: "confirmed"}
	if err := svc.Create(context.Background(), "acme", a); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := svc.Get(context.Background(), "acme", a.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != "confirmed" {
		t.Errorf("status = %q", got.Status)
	}

	if err := svc.Delete(context.Background(), "acme", a.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Get(context.Background(), "acme", a.ID); err == nil {
		t.Error("expected error after delete")
	}
}

func TestService_Search_ByStatus(t *testing.T) {
	svc := newTestService()
	for _, status := range []string{"scheduled", "completed", "completed"} {
		a := &Appointment{OccursAt: time.Now(), Status: status}
		if err := svc.Create(context.Background(), "acme", a); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	items, total, err := svc.Search(context.Background(), "acme", map[string]string{"status": "completed"}, 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 2 || len(items) != 2 {
		t.Errorf("got %d/%d, want 2/2", len(items), total)
	}
}
