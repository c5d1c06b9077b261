package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-ddd-lms/internal/domain/entity"
	"github.com/oksasatya/go-ddd-lms/internal/domain/repository"
)

// PurchaseRepository stores the append-only purchase ledger.
type PurchaseRepository struct {
	pool *pgxpool.Pool
}

func NewPurchaseRepository(pool *pgxpool.Pool) *PurchaseRepository {
	return &PurchaseRepository{pool: pool}
}

const purchaseColumns = `id, user_id, course_id, amount, currency, payment_ref, created_at`

func scanPurchase(row pgx.Row) (*entity.Purchase, error) {
	p := &entity.Purchase{}
	if err := row.Scan(&p.ID, &p.UserID, &p.CourseID, &p.Amount, &p.Currency, &p.PaymentRef, &p.CreatedAt); err != nil {
		return nil, mapErr(err)
	}
	return p, nil
}

func (r *PurchaseRepository) Create(ctx context.Context, p *entity.Purchase) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO purchases (user_id, course_id, amount, currency, payment_ref)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, p.UserID, p.CourseID, p.Amount, p.Currency, p.PaymentRef)
	return mapErr(row.Scan(&p.ID, &p.CreatedAt))
}

func (r *PurchaseRepository) GetByUserAndCourse(ctx context.Context, userID, courseID string) (*entity.Purchase, error) {
	return scanPurchase(r.pool.QueryRow(ctx, `
		SELECT `+purchaseColumns+` FROM purchases
		WHERE user_id = $1 AND course_id = $2
		ORDER BY created_at LIMIT 1
	`, userID, courseID))
}

func (r *PurchaseRepository) ListByUser(ctx context.Context, userID string) ([]*entity.Purchase, error) {
	return r.query(ctx, `SELECT `+purchaseColumns+` FROM purchases WHERE user_id = $1 ORDER BY created_at DESC`, userID)
}

func (r *PurchaseRepository) ListByCourses(ctx context.Context, courseIDs []string) ([]*entity.Purchase, error) {
	if len(courseIDs) == 0 {
		return []*entity.Purchase{}, nil
	}
	return r.query(ctx, `SELECT `+purchaseColumns+` FROM purchases WHERE course_id = ANY($1::uuid[]) ORDER BY created_at DESC`, courseIDs)
}

func (r *PurchaseRepository) query(ctx context.Context, query string, args ...any) ([]*entity.Purchase, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	out := []*entity.Purchase{}
	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

var _ repository.PurchaseRepository = (*PurchaseRepository)(nil)
