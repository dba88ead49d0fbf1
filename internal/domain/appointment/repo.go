package appointment

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, tenant string, a *Appointment) error
	GetByID(ctx context.Context, tenant string, id uuid.UUID) (*Appointment, error)
	Update(ctx context.Context, tenant string, a *Appointment) error
	Delete(ctx context.Context, tenant string, id uuid.UUID) error
	Search(ctx context.Context, tenant string, params map[string]string, limit, offset int) ([]*Appointment, int, error)
}
