package treatment

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

const cols = `id, patient_id, tooth_number, tooth_name, treatment_type, treatment_category,
	treatment_status, cost, priority, start_date, completion_date, notes, created_at, updated_at`

func (r *repoPG) scan(row pgx.Row) (*ToothTreatment, error) {
	var t ToothTreatment
	err := row.Scan(&t.ID, &t.PatientID, &t.ToothNumber, &t.ToothName, &t.TreatmentType,
		&t.Category, &t.Status, &t.Cost, &t.Priority, &t.StartDate, &t.CompletionDate,
		&t.Notes, &t.CreatedAt, &t.UpdatedAt)
	return &t, err
}

func (r *repoPG) Create(ctx context.Context, t *ToothTreatment) error {
	t.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO tooth_treatments (id, patient_id, tooth_number, tooth_name, treatment_type,
			treatment_category, treatment_status, cost, priority, start_date, completion_date, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		t.ID, t.PatientID, t.ToothNumber, t.ToothName, t.TreatmentType, t.Category,
		t.Status, t.Cost, t.Priority, t.StartDate, t.CompletionDate, t.Notes)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*ToothTreatment, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx, `SELECT `+cols+` FROM tooth_treatments WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, t *ToothTreatment) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE tooth_treatments SET tooth_name=$2, treatment_type=$3, treatment_category=$4,
			treatment_status=$5, cost=$6, priority=$7, start_date=$8, completion_date=$9,
			notes=$10, updated_at=NOW()
		WHERE id = $1`,
		t.ID, t.ToothName, t.TreatmentType, t.Category, t.Status, t.Cost, t.Priority,
		t.StartDate, t.CompletionDate, t.Notes)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM tooth_treatments WHERE id = $1`, id)
	return err
}

func (r *repoPG) list(ctx context.Context, query string, args ...interface{}) ([]*ToothTreatment, error) {
	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var treatments []*ToothTreatment
	for rows.Next() {
		t, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		treatments = append(treatments, t)
	}
	return treatments, rows.Err()
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*ToothTreatment, error) {
	return r.list(ctx, `SELECT `+cols+` FROM tooth_treatments
		WHERE patient_id = $1 ORDER BY tooth_number, priority`, patientID)
}

func (r *repoPG) ListByTooth(ctx context.Context, patientID uuid.UUID, toothNumber int) ([]*ToothTreatment, error) {
	return r.list(ctx, `SELECT `+cols+` FROM tooth_treatments
		WHERE patient_id = $1 AND tooth_number = $2 ORDER BY priority`, patientID, toothNumber)
}

func (r *repoPG) MaxPriority(ctx context.Context, patientID uuid.UUID, toothNumber int) (int, error) {
	var max int
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT COALESCE(MAX(priority), 0) FROM tooth_treatments
		WHERE patient_id = $1 AND tooth_number = $2`, patientID, toothNumber).Scan(&max)
	return max, err
}

func (r *repoPG) Reorder(ctx context.Context, orderedIDs []uuid.UUID) error {
	return db.RunInTx(ctx, r.pool, func(ctx context.Context) error {
		for i, id := range orderedIDs {
			if _, err := r.conn(ctx).Exec(ctx,
				`UPDATE tooth_treatments SET priority = $2, updated_at = NOW() WHERE id = $1`,
				id, i+1); err != nil {
				return err
			}
		}
		return nil
	})
}

type sessionRepoPG struct{ pool *pgxpool.Pool }

func NewSessionRepoPG(pool *pgxpool.Pool) SessionRepository { return &sessionRepoPG{pool: pool} }

func (r *sessionRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const sessionCols = `id, tooth_treatment_id, session_date, description, notes, created_at, updated_at`

func (r *sessionRepoPG) scan(row pgx.Row) (*Session, error) {
	var s Session
	err := row.Scan(&s.ID, &s.TreatmentID, &s.Date, &s.Description, &s.Notes, &s.CreatedAt, &s.UpdatedAt)
	return &s, err
}

func (r *sessionRepoPG) Create(ctx context.Context, s *Session) error {
	s.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO treatment_sessions (id, tooth_treatment_id, session_date, description, notes)
		VALUES ($1,$2,$3,$4,$5)`,
		s.ID, s.TreatmentID, s.Date, s.Description, s.Notes)
	return err
}

func (r *sessionRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Session, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx, `SELECT `+sessionCols+` FROM treatment_sessions WHERE id = $1`, id))
}

func (r *sessionRepoPG) Update(ctx context.Context, s *Session) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE treatment_sessions SET session_date=$2, description=$3, notes=$4, updated_at=NOW()
		WHERE id = $1`,
		s.ID, s.Date, s.Description, s.Notes)
	return err
}

func (r *sessionRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM treatment_sessions WHERE id = $1`, id)
	return err
}

func (r *sessionRepoPG) ListByTreatment(ctx context.Context, treatmentID uuid.UUID) ([]*Session, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+sessionCols+` FROM treatment_sessions
		WHERE tooth_treatment_id = $1 ORDER BY session_date`, treatmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		s, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

func (r *sessionRepoPG) DeleteByTreatment(ctx context.Context, treatmentID uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM treatment_sessions WHERE tooth_treatment_id = $1`, treatmentID)
	return err
}
