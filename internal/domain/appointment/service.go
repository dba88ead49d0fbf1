package appointment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

var validStatuses = map[string]bool{
	"scheduled": true, "confirmed": true, "completed": true,
	"cancelled": true, "no-show": true, "rescheduled": true,
}

func (s *Service) Create(ctx context.Context, tenant string, a *Appointment) error {
	if a.OccursAt.IsZero() {
		return fmt.Errorf("occurs_at is required")
	}
	if a.Status == "" {
		a.Status = "scheduled"
	}
	if !validStatuses[a.Status] {
		return fmt.Errorf("invalid appointment status: %s", a.Status)
	}
	if a.Value.Valid && a.Value.Decimal.IsNegative() {
		return fmt.Errorf("value must not be negative")
	}
	return s.repo.Create(ctx, tenant, a)
}

func (s *Service) Get(ctx context.Context, tenant string, id uuid.UUID) (*Appointment, error) {
	return s.repo.GetByID(ctx, tenant, id)
}

func (s *Service) Update(ctx context.Context, tenant string, a *Appointment) error {
	if a.Status != "" && !validStatuses[a.Status] {
		return fmt.Errorf("invalid appointment status: %s", a.Status)
	}
	if a.Value.Valid && a.Value.Decimal.IsNegative() {
		return fmt.Errorf("value must not be negative")
	}
	return s.repo.Update(ctx, tenant, a)
}

func (s *Service) Delete(ctx context.Context, tenant string, id uuid.UUID) error {
	return s.repo.Delete(ctx, tenant, id)
}

func (s *Service) Search(ctx context.Context, tenant string, params map[string]string, limit, offset int) ([]*Appointment, int, error) {
	return s.repo.Search(ctx, tenant, params, limit, offset)
}
