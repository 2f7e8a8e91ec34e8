package laborder

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

const cols = `id, lab_id, patient_id, tooth_treatment_id, tooth_number, service_name, cost,
	paid_amount, remaining_balance, status, order_date, notes, created_at, updated_at`

func (r *repoPG) scan(row pgx.Row) (*Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.LabID, &o.PatientID, &o.TreatmentID, &o.ToothNumber, &o.ServiceName,
		&o.Cost, &o.PaidAmount, &o.RemainingBalance, &o.Status, &o.OrderDate, &o.Notes,
		&o.CreatedAt, &o.UpdatedAt)
	return &o, err
}

func (r *repoPG) Create(ctx context.Context, o *Order) error {
	o.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO lab_orders (id, lab_id, patient_id, tooth_treatment_id, tooth_number,
			service_name, cost, paid_amount, remaining_balance, status, order_date, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		o.ID, o.LabID, o.PatientID, o.TreatmentID, o.ToothNumber, o.ServiceName,
		o.Cost, o.PaidAmount, o.RemainingBalance, o.Status, o.OrderDate, o.Notes)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx, `SELECT `+cols+` FROM lab_orders WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, o *Order) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE lab_orders SET lab_id=$2, tooth_treatment_id=$3, tooth_number=$4, service_name=$5,
			cost=$6, paid_amount=$7, remaining_balance=$8, status=$9, order_date=$10, notes=$11,
			updated_at=NOW()
		WHERE id = $1`,
		o.ID, o.LabID, o.TreatmentID, o.ToothNumber, o.ServiceName, o.Cost, o.PaidAmount,
		o.RemainingBalance, o.Status, o.OrderDate, o.Notes)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM lab_orders WHERE id = $1`, id)
	return err
}

func (r *repoPG) list(ctx context.Context, query string, args ...interface{}) ([]*Order, error) {
	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*Order
	for rows.Next() {
		o, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Order, error) {
	return r.list(ctx, `SELECT `+cols+` FROM lab_orders
		WHERE patient_id = $1 ORDER BY order_date DESC`, patientID)
}

func (r *repoPG) ListByTreatment(ctx context.Context, treatmentID uuid.UUID) ([]*Order, error) {
	return r.list(ctx, `SELECT `+cols+` FROM lab_orders
		WHERE tooth_treatment_id = $1 ORDER BY created_at`, treatmentID)
}

func (r *repoPG) ListUnlinkedByPatient(ctx context.Context, patientID uuid.UUID) ([]*Order, error) {
	return r.list(ctx, `SELECT `+cols+` FROM lab_orders
		WHERE patient_id = $1 AND tooth_treatment_id IS NULL AND status = 'pending'
		ORDER BY created_at`, patientID)
}

func (r *repoPG) ListLinked(ctx context.Context) ([]*Order, error) {
	return r.list(ctx, `SELECT `+cols+` FROM lab_orders
		WHERE tooth_treatment_id IS NOT NULL ORDER BY created_at`)
}
