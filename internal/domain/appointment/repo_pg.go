package appointment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinix/clinix/internal/platform/db"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

const apptCols = `id, client_id, professional_id, plan_id, procedure_id,
	procedure_ids, package_ids, status, value, notes, occurs_at, created_at, updated_at`

func scanAppt(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.ClientID, &a.ProfessionalID, &a.PlanID, &a.ProcedureID,
		&a.ProcedureIDs, &a.PackageIDs, &a.Status, &a.Value, &a.Notes,
		&a.OccursAt, &a.CreatedAt, &a.UpdatedAt)
	return &a, err
}

func (r *repoPG) Create(ctx context.Context, tenant string, a *Appointment) error {
	conn, err := db.AcquireTenant(ctx, r.pool, tenant)
	if err != nil {
		return err
	}
	defer conn.Release()

	a.ID = uuid.New()
	_, err = conn.Exec(ctx, `
		INSERT INTO appointments (id, client_id, professional_id, plan_id, procedure_id,
			procedure_ids, package_ids, status, value, notes, occurs_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		a.ID, a.ClientID, a.ProfessionalID, a.PlanID, a.ProcedureID,
		a.ProcedureIDs, a.PackageIDs, a.Status, a.Value, a.Notes, a.OccursAt)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, tenant string, id uuid.UUID) (*Appointment, error) {
	conn, err := db.AcquireTenant(ctx, r.pool, tenant)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	return scanAppt(conn.QueryRow(ctx, `SELECT `+apptCols+` FROM appointments WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, tenant string, a *Appointment) error {
	conn, err := db.AcquireTenant(ctx, r.pool, tenant)
	if err != nil {
		return err
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
		UPDATE appointments SET client_id=$2, professional_id=$3, plan_id=$4, procedure_id=$5,
			procedure_ids=$6, package_ids=$7, status=$8, value=$9, notes=$10,
			occurs_at=$11, updated_at=NOW()
		WHERE id = $1`,
		a.ID, a.ClientID, a.ProfessionalID, a.PlanID, a.ProcedureID,
		a.ProcedureIDs, a.PackageIDs, a.Status, a.Value, a.Notes, a.OccursAt)
	return err
}

func (r *repoPG) Delete(ctx context.Context, tenant string, id uuid.UUID) error {
	conn, err := db.AcquireTenant(ctx, r.pool, tenant)
	if err != nil {
		return err
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	return err
}

func (r *repoPG) Search(ctx context.Context, tenant string, params map[string]string, limit, offset int) ([]*Appointment, int, error) {
	conn, err := db.AcquireTenant(ctx, r.pool, tenant)
	if err != nil {
		return nil, 0, err
	}
	defer conn.Release()

	query := `SELECT ` + apptCols + ` FROM appointments WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM appointments WHERE 1=1`
	var args []interface{}
	idx := 1

	if p, ok := params["client"]; ok {
		query += fmt.Sprintf(` AND client_id = $%d`, idx)
		countQuery += fmt.Sprintf(` AND client_id = $%d`, idx)
		args = append(args, p)
		idx++
	}
	if p, ok := params["professional"]; ok {
		query += fmt.Sprintf(` AND professional_id = $%d`, idx)
		countQuery += fmt.Sprintf(` AND professional_id = $%d`, idx)
		args = append(args, p)
		idx++
	}
	if p, ok := params["status"]; ok {
		query += fmt.Sprintf(` AND status = $%d`, idx)
		countQuery += fmt.Sprintf(` AND status = $%d`, idx)
		args = append(args, p)
		idx++
	}
	if p, ok := params["date"]; ok {
		query += fmt.Sprintf(` AND occurs_at::date = $%d`, idx)
		countQuery += fmt.Sprintf(` AND occurs_at::date = $%d`, idx)
		args = append(args, p)
		idx++
	}

	var total int
	if err := conn.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(` ORDER BY occurs_at DESC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := conn.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Appointment
	for rows.Next() {
		a, err := scanAppt(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, a)
	}
	return items, total, rows.Err()
}
