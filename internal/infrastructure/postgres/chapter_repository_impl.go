package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-ddd-lms/internal/domain/entity"
	"github.com/oksasatya/go-ddd-lms/internal/domain/repository"
)

type ChapterRepository struct {
	pool *pgxpool.Pool
}

func NewChapterRepository(pool *pgxpool.Pool) *ChapterRepository {
	return &ChapterRepository{pool: pool}
}

func (r *ChapterRepository) Create(ctx context.Context, ch *entity.Chapter) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO chapters (course_id, title, position)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`, ch.CourseID, ch.Title, ch.Position)
	return mapErr(row.Scan(&ch.ID, &ch.CreatedAt, &ch.UpdatedAt))
}

func (r *ChapterRepository) GetByID(ctx context.Context, id string) (*entity.Chapter, error) {
	ch := &entity.Chapter{}
	err := r.pool.QueryRow(ctx, `
		SELECT id, course_id, title, position, created_at, updated_at
		FROM chapters WHERE id = $1
	`, id).Scan(&ch.ID, &ch.CourseID, &ch.Title, &ch.Position, &ch.CreatedAt, &ch.UpdatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return ch, nil
}

func (r *ChapterRepository) Update(ctx context.Context, ch *entity.Chapter) error {
	ch.UpdatedAt = time.Now()
	res, err := r.pool.Exec(ctx, `
		UPDATE chapters SET title = $1, position = $2, updated_at = $3 WHERE id = $4
	`, ch.Title, ch.Position, ch.UpdatedAt, ch.ID)
	if err != nil {
		return mapErr(err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *ChapterRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM lectures WHERE chapter_id = $1`, id); err != nil {
		return mapErr(err)
	}
	res, err := tx.Exec(ctx, `DELETE FROM chapters WHERE id = $1`, id)
	if err != nil {
		return mapErr(err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return tx.Commit(ctx)
}

func (r *ChapterRepository) ListByCourse(ctx context.Context, courseID string) ([]*entity.Chapter, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, course_id, title, position, created_at, updated_at
		FROM chapters WHERE course_id = $1
		ORDER BY position, created_at
	`, courseID)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	out := []*entity.Chapter{}
	for rows.Next() {
		ch := &entity.Chapter{}
		if err := rows.Scan(&ch.ID, &ch.CourseID, &ch.Title, &ch.Position, &ch.CreatedAt, &ch.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, ch)
	}
	return out, rows.Err()
}

func (r *ChapterRepository) NextPosition(ctx context.Context, courseID string) (int, error) {
	var next int
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(MAX(position), 0) + 1 FROM chapters WHERE course_id = $1`, courseID).Scan(&next)
	return next, mapErr(err)
}

var _ repository.ChapterRepository = (*ChapterRepository)(nil)
