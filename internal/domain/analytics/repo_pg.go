package analytics

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinix/clinix/internal/platform/db"
)

// NewPGReaders wires every collaborator interface to Postgres. All queries
// run on a tenant-scoped connection (search_path set to the tenant schema)
// and are bounded: appointments by the caller's row cap, lookups by the id
// set they receive.
func NewPGReaders(pool *pgxpool.Pool) Readers {
	return Readers{
		Transactions:      &appointmentReaderPG{pool: pool},
		NewClients:        &clientCounterPG{pool: pool},
		Plans:             &planResolverPG{pool: pool},
		ProcedureNames:    &nameResolverPG{pool: pool, table: "procedures"},
		PackageNames:      &nameResolverPG{pool: pool, table: "packages"},
		ProfessionalNames: &nameResolverPG{pool: pool, table: "professionals"},
		ClientNames:       &nameResolverPG{pool: pool, table: "clients"},
	}
}

type appointmentReaderPG struct{ pool *pgxpool.Pool }

func (r *appointmentReaderPG) ListByWindow(ctx context.Context, tenant string, w Window, rowCap int) ([]*Transaction, error) {
	conn, err := db.AcquireTenant(ctx, r.pool, tenant)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	// Ordered read so identical data always yields identical fold order.
	rows, err := conn.Query(ctx, `
		SELECT id, client_id, professional_id, plan_id, procedure_id,
			procedure_ids, package_ids, status, value, occurs_at
		FROM appointments
		WHERE occurs_at BETWEEN $1 AND $2
		ORDER BY occurs_at, id
		LIMIT $3`,
		w.Start, w.End, rowCap)
	if err != nil {
		return nil, fmt.Errorf("query appointments: %w", err)
	}
	defer rows.Close()

	var txs []*Transaction
	for rows.Next() {
		var tx Transaction
		if err := rows.Scan(&tx.ID, &tx.ClientID, &tx.ProfessionalID, &tx.PlanID,
			&tx.ProcedureID, &tx.ProcedureIDs, &tx.PackageIDs, &tx.Status,
			&tx.Value, &tx.OccursAt); err != nil {
			return nil, fmt.Errorf("scan appointment: %w", err)
		}
		txs = append(txs, &tx)
	}
	return txs, rows.Err()
}

type clientCounterPG struct{ pool *pgxpool.Pool }

func (r *clientCounterPG) CountCreatedIn(ctx context.Context, tenant string, w Window) (int, error) {
	conn, err := db.AcquireTenant(ctx, r.pool, tenant)
	if err != nil {
		return 0, err
	}
	defer conn.Release()

	var count int
	err = conn.QueryRow(ctx,
		`SELECT COUNT(*) FROM clients WHERE created_at BETWEEN $1 AND $2`,
		w.Start, w.End).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count clients: %w", err)
	}
	return count, nil
}

type planResolverPG struct{ pool *pgxpool.Pool }

func (r *planResolverPG) ResolvePlans(ctx context.Context, tenant string, planIDs []uuid.UUID) (map[uuid.UUID]uuid.UUID, error) {
	resolved := make(map[uuid.UUID]uuid.UUID, len(planIDs))
	if len(planIDs) == 0 {
		return resolved, nil
	}

	conn, err := db.AcquireTenant(ctx, r.pool, tenant)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	rows, err := conn.Query(ctx,
		`SELECT id, package_id FROM plans WHERE id = ANY($1) AND package_id IS NOT NULL`,
		planIDs)
	if err != nil {
		return nil, fmt.Errorf("query plans: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var planID, packageID uuid.UUID
		if err := rows.Scan(&planID, &packageID); err != nil {
			return nil, fmt.Errorf("scan plan: %w", err)
		}
		resolved[planID] = packageID
	}
	return resolved, rows.Err()
}

// nameResolverPG resolves display names for one of the lookup tables. The
// table name comes from the fixed set in NewPGReaders, never from input.
type nameResolverPG struct {
	pool  *pgxpool.Pool
	table string
}

func (r *nameResolverPG) ResolveNames(ctx context.Context, tenant string, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	names := make(map[uuid.UUID]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}

	conn, err := db.AcquireTenant(ctx, r.pool, tenant)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	rows, err := conn.Query(ctx,
		fmt.Sprintf(`SELECT id, name FROM %s WHERE id = ANY($1)`, r.table), ids)
	if err != nil {
		return nil, fmt.Errorf("query %s names: %w", r.table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var id uuid.UUID
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("scan %s name: %w", r.table, err)
		}
		names[id] = name
	}
	return names, rows.Err()
}
