package appointment

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Appointment maps to the appointments table: one scheduled or performed
// clinical event. A row may link procedures through the legacy singular
// column, the list column, or both, and may reference a treatment package
// directly or through the plan it was sold under.
type Appointment struct {
	ID             uuid.UUID           `db:"id" json:"id"`
	ClientID       *uuid.UUID          `db:"client_id" json:"client_id,omitempty"`
	ProfessionalID *uuid.UUID          `db:"professional_id" json:"professional_id,omitempty"`
	PlanID         *uuid.UUID          `db:"plan_id" json:"plan_id,omitempty"`
	ProcedureID    *uuid.UUID          `db:"procedure_id" json:"procedure_id,omitempty"`
	ProcedureIDs   []uuid.UUID         `db:"procedure_ids" json:"procedure_ids,omitempty"`
	PackageIDs     []uuid.UUID         `db:"package_ids" json:"package_ids,omitempty"`
	Status         string              `db:"status" json:"status"`
	Value          decimal.NullDecimal `db:"value" json:"value,omitempty"`
	Notes          *string             `db:"notes" json:"notes,omitempty"`
	OccursAt       time.Time           `db:"occurs_at" json:"occurs_at"`
	CreatedAt      time.Time           `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time           `db:"updated_at" json:"updated_at"`
}
