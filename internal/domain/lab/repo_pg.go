package lab

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

const cols = `id, name, phone, address, notes, created_at, updated_at`

func (r *repoPG) scan(row pgx.Row) (*Laboratory, error) {
	var l Laboratory
	err := row.Scan(&l.ID, &l.Name, &l.Phone, &l.Address, &l.Notes, &l.CreatedAt, &l.UpdatedAt)
	return &l, err
}

func (r *repoPG) Create(ctx context.Context, l *Laboratory) error {
	l.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO laboratories (id, name, phone, address, notes)
		VALUES ($1,$2,$3,$4,$5)`,
		l.ID, l.Name, l.Phone, l.Address, l.Notes)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Laboratory, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx, `SELECT `+cols+` FROM laboratories WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, l *Laboratory) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE laboratories SET name=$2, phone=$3, address=$4, notes=$5, updated_at=NOW()
		WHERE id = $1`,
		l.ID, l.Name, l.Phone, l.Address, l.Notes)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM laboratories WHERE id = $1`, id)
	return err
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Laboratory, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM laboratories`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx, `SELECT `+cols+` FROM laboratories ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var labs []*Laboratory
	for rows.Next() {
		l, err := r.scan(rows)
		if err != nil {
			return nil, 0, err
		}
		labs = append(labs, l)
	}
	return labs, total, rows.Err()
}
