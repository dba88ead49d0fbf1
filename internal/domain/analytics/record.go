package analytics

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Appointment status labels. Legacy rows may carry anything else; unknown
// labels are tallied under StatusUnknown.
const (
	StatusScheduled   = "scheduled"
	StatusConfirmed   = "confirmed"
	StatusCompleted   = "completed"
	StatusCancelled   = "cancelled"
	StatusNoShow      = "no-show"
	StatusRescheduled = "rescheduled"
	StatusUnknown     = "unknown"
)

// Transaction is one raw appointment row as read from storage. Associations
// are loosely shaped: a row may carry a single procedure link, a list, both,
// or neither, and packages may be referenced directly or only through a plan.
type Transaction struct {
	ID             uuid.UUID
	ClientID       *uuid.UUID
	ProfessionalID *uuid.UUID
	PlanID         *uuid.UUID
	ProcedureID    *uuid.UUID
	ProcedureIDs   []uuid.UUID
	PackageIDs     []uuid.UUID
	Status         string
	Value          decimal.NullDecimal
	OccursAt       time.Time
}

// Record is the canonical shape every fold runs over. Multi-valued
// associations are merged and deduplicated at this boundary so nothing
// deeper in the pipeline branches on raw row shape.
type Record struct {
	ID             uuid.UUID
	ClientID       *uuid.UUID
	ProfessionalID *uuid.UUID
	ProcedureIDs   []uuid.UUID
	PackageIDs     []uuid.UUID
	Status         string
	Completed      bool
	Value          decimal.Decimal
	OccursAt       time.Time
}

// PlanIDs collects the distinct plan ids referenced by the given rows, for
// one bulk plan-to-package resolution per invocation.
func PlanIDs(txs []*Transaction) []uuid.UUID {
	seen := make(map[uuid.UUID]bool)
	var ids []uuid.UUID
	for _, tx := range txs {
		if tx.PlanID == nil || seen[*tx.PlanID] {
			continue
		}
		seen[*tx.PlanID] = true
		ids = append(ids, *tx.PlanID)
	}
	return ids
}

// Normalize canonicalizes raw rows into Records. planPackages maps plan id
// to package id; rows that only reference a plan still contribute to the
// package dimension through it. A row with no links in a dimension is simply
// invisible to that dimension but still counts toward totals, the day
// series, and the status distribution.
func Normalize(txs []*Transaction, planPackages map[uuid.UUID]uuid.UUID) []*Record {
	records := make([]*Record, 0, len(txs))
	for _, tx := range txs {
		status := tx.Status
		if status == "" {
			status = StatusUnknown
		}

		r := &Record{
			ID:             tx.ID,
			ClientID:       tx.ClientID,
			ProfessionalID: tx.ProfessionalID,
			ProcedureIDs:   mergeIDs(tx.ProcedureID, tx.ProcedureIDs),
			PackageIDs:     mergePackageIDs(tx, planPackages),
			Status:         status,
			Completed:      status == StatusCompleted,
			Value:          SafeAmount(tx.Value),
			OccursAt:       tx.OccursAt,
		}
		records = append(records, r)
	}
	return records
}

// mergeIDs merges an optional singular link with a multi-link list,
// preserving first-seen order and dropping duplicates.
func mergeIDs(single *uuid.UUID, many []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(many)+1)
	var merged []uuid.UUID
	if single != nil {
		seen[*single] = true
		merged = append(merged, *single)
	}
	for _, id := range many {
		if seen[id] {
			continue
		}
		seen[id] = true
		merged = append(merged, id)
	}
	return merged
}

func mergePackageIDs(tx *Transaction, planPackages map[uuid.UUID]uuid.UUID) []uuid.UUID {
	ids := mergeIDs(nil, tx.PackageIDs)
	if tx.PlanID == nil {
		return ids
	}
	pkg, ok := planPackages[*tx.PlanID]
	if !ok {
		return ids
	}
	for _, id := range ids {
		if id == pkg {
			return ids
		}
	}
	return append(ids, pkg)
}
