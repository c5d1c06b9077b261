package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-ddd-lms/internal/domain/entity"
	"github.com/oksasatya/go-ddd-lms/internal/domain/repository"
)

type LectureRepository struct {
	pool *pgxpool.Pool
}

func NewLectureRepository(pool *pgxpool.Pool) *LectureRepository {
	return &LectureRepository{pool: pool}
}

const lectureColumns = `id, chapter_id, course_id, title, video_url, duration, lecture_order,
	is_preview_free, created_at, updated_at`

func scanLecture(row pgx.Row) (*entity.Lecture, error) {
	l := &entity.Lecture{}
	if err := row.Scan(&l.ID, &l.ChapterID, &l.CourseID, &l.Title, &l.VideoURL, &l.Duration, &l.Order,
		&l.IsPreviewFree, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return nil, mapErr(err)
	}
	return l, nil
}

func (r *LectureRepository) Create(ctx context.Context, l *entity.Lecture) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO lectures (chapter_id, course_id, title, video_url, duration, lecture_order, is_preview_free)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`, l.ChapterID, l.CourseID, l.Title, l.VideoURL, l.Duration, l.Order, l.IsPreviewFree)
	return mapErr(row.Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt))
}

func (r *LectureRepository) GetByID(ctx context.Context, id string) (*entity.Lecture, error) {
	return scanLecture(r.pool.QueryRow(ctx, `SELECT `+lectureColumns+` FROM lectures WHERE id = $1`, id))
}

func (r *LectureRepository) Update(ctx context.Context, l *entity.Lecture) error {
	l.UpdatedAt = time.Now()
	res, err := r.pool.Exec(ctx, `
		UPDATE lectures
		SET title = $1, video_url = $2, duration = $3, lecture_order = $4, is_preview_free = $5, updated_at = $6
		WHERE id = $7
	`, l.Title, l.VideoURL, l.Duration, l.Order, l.IsPreviewFree, l.UpdatedAt, l.ID)
	if err != nil {
		return mapErr(err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *LectureRepository) Delete(ctx context.Context, id string) error {
	res, err := r.pool.Exec(ctx, `DELETE FROM lectures WHERE id = $1`, id)
	if err != nil {
		return mapErr(err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *LectureRepository) ListByChapter(ctx context.Context, chapterID string) ([]*entity.Lecture, error) {
	return r.query(ctx, `SELECT `+lectureColumns+` FROM lectures WHERE chapter_id = $1 ORDER BY lecture_order`, chapterID)
}

func (r *LectureRepository) ListByCourse(ctx context.Context, courseID string) ([]*entity.Lecture, error) {
	return r.query(ctx, `
		SELECT l.id, l.chapter_id, l.course_id, l.title, l.video_url, l.duration, l.lecture_order,
			l.is_preview_free, l.created_at, l.updated_at
		FROM lectures l JOIN chapters c ON c.id = l.chapter_id
		WHERE l.course_id = $1
		ORDER BY c.position, l.lecture_order
	`, courseID)
}

func (r *LectureRepository) CountByCourse(ctx context.Context, courseID string) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM lectures WHERE course_id = $1`, courseID).Scan(&n)
	return n, mapErr(err)
}

func (r *LectureRepository) OrderTaken(ctx context.Context, chapterID string, order int, excludeID string) (bool, error) {
	var taken bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM lectures
			WHERE chapter_id = $1 AND lecture_order = $2 AND id::text <> $3
		)
	`, chapterID, order, excludeID).Scan(&taken)
	return taken, mapErr(err)
}

func (r *LectureRepository) query(ctx context.Context, query string, args ...any) ([]*entity.Lecture, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	out := []*entity.Lecture{}
	for rows.Next() {
		l, err := scanLecture(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

var _ repository.LectureRepository = (*LectureRepository)(nil)
