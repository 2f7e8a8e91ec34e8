package billing

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/omarmosa2/dental-clinic-sub005/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const cols = `id, patient_id, tooth_treatment_id, amount, total_amount_due, treatment_total_paid,
	remaining_balance, status, payment_date, description, notes, created_at, updated_at`

func (r *repoPG) scan(row pgx.Row) (*Entry, error) {
	var e Entry
	err := row.Scan(&e.ID, &e.PatientID, &e.TreatmentID, &e.Amount, &e.TotalDue, &e.TotalPaid,
		&e.RemainingBalance, &e.Status, &e.PaymentDate, &e.Description, &e.Notes,
		&e.CreatedAt, &e.UpdatedAt)
	return &e, err
}

func (r *repoPG) Create(ctx context.Context, e *Entry) error {
	e.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO billing_entries (id, patient_id, tooth_treatment_id, amount, total_amount_due,
			treatment_total_paid, remaining_balance, status, payment_date, description, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		e.ID, e.PatientID, e.TreatmentID, e.Amount, e.TotalDue, e.TotalPaid,
		e.RemainingBalance, e.Status, e.PaymentDate, e.Description, e.Notes)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Entry, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx, `SELECT `+cols+` FROM billing_entries WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, e *Entry) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE billing_entries SET tooth_treatment_id=$2, amount=$3, total_amount_due=$4,
			treatment_total_paid=$5, remaining_balance=$6, status=$7, payment_date=$8,
			description=$9, notes=$10, updated_at=NOW()
		WHERE id = $1`,
		e.ID, e.TreatmentID, e.Amount, e.TotalDue, e.TotalPaid, e.RemainingBalance,
		e.Status, e.PaymentDate, e.Description, e.Notes)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM billing_entries WHERE id = $1`, id)
	return err
}

func (r *repoPG) list(ctx context.Context, query string, args ...interface{}) ([]*Entry, error) {
	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		e, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Entry, error) {
	return r.list(ctx, `SELECT `+cols+` FROM billing_entries
		WHERE patient_id = $1 ORDER BY payment_date DESC`, patientID)
}

func (r *repoPG) ListByTreatment(ctx context.Context, treatmentID uuid.UUID) ([]*Entry, error) {
	return r.list(ctx, `SELECT `+cols+` FROM billing_entries
		WHERE tooth_treatment_id = $1 ORDER BY created_at`, treatmentID)
}

func (r *repoPG) ListLinked(ctx context.Context) ([]*Entry, error) {
	return r.list(ctx, `SELECT `+cols+` FROM billing_entries
		WHERE tooth_treatment_id IS NOT NULL ORDER BY created_at`)
}
