package analytics

import (
	"context"

	"github.com/google/uuid"
)

// The pipeline reads everything through these collaborator interfaces. Every
// call takes an explicit tenant identifier; nothing is read from ambient
// state. Every read is bounded: transactions by the row cap, lookups by the
// id set they are given.

// TransactionReader fetches the appointment rows whose occurs_at falls
// within the window. Rows beyond rowCap are silently excluded, a documented
// memory bound rather than a correctness guarantee.
type TransactionReader interface {
	ListByWindow(ctx context.Context, tenant string, w Window, rowCap int) ([]*Transaction, error)
}

// NewClientCounter counts client records created within the window.
type NewClientCounter interface {
	CountCreatedIn(ctx context.Context, tenant string, w Window) (int, error)
}

// PlanPackageResolver bulk-resolves plan ids to the package they sell.
type PlanPackageResolver interface {
	ResolvePlans(ctx context.Context, tenant string, planIDs []uuid.UUID) (map[uuid.UUID]uuid.UUID, error)
}

// NameResolver batch-resolves display names for an id set in one call.
type NameResolver interface {
	ResolveNames(ctx context.Context, tenant string, ids []uuid.UUID) (map[uuid.UUID]string, error)
}

// Readers bundles every collaborator the assembler needs.
type Readers struct {
	Transactions      TransactionReader
	NewClients        NewClientCounter
	Plans             PlanPackageResolver
	ProcedureNames    NameResolver
	PackageNames      NameResolver
	ProfessionalNames NameResolver
	ClientNames       NameResolver
}
