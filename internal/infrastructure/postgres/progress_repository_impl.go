package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-ddd-lms/internal/domain/entity"
	"github.com/oksasatya/go-ddd-lms/internal/domain/repository"
)

type ProgressRepository struct {
	pool *pgxpool.Pool
}

func NewProgressRepository(pool *pgxpool.Pool) *ProgressRepository {
	return &ProgressRepository{pool: pool}
}

const progressColumns = `id, user_id, course_id, completed, progress, completed_lectures,
	last_chapter_index, last_lecture_index, created_at, updated_at`

func scanProgress(row pgx.Row) (*entity.CourseProgress, error) {
	p := &entity.CourseProgress{}
	var raw []byte
	var lastChapter, lastLecture *int
	if err := row.Scan(&p.ID, &p.UserID, &p.CourseID, &p.Completed, &p.Progress, &raw,
		&lastChapter, &lastLecture, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, mapErr(err)
	}
	p.CompletedLectures = []entity.CompletedLecture{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &p.CompletedLectures); err != nil {
			return nil, err
		}
	}
	if lastChapter != nil && lastLecture != nil {
		p.LastPosition = &entity.Position{ChapterIndex: *lastChapter, LectureIndex: *lastLecture}
	}
	return p, nil
}

func (r *ProgressRepository) Get(ctx context.Context, userID, courseID string) (*entity.CourseProgress, error) {
	return scanProgress(r.pool.QueryRow(ctx, `
		SELECT `+progressColumns+` FROM course_progress WHERE user_id = $1 AND course_id = $2
	`, userID, courseID))
}

// Save upserts on (user_id, course_id).
func (r *ProgressRepository) Save(ctx context.Context, p *entity.CourseProgress) error {
	if p.CompletedLectures == nil {
		p.CompletedLectures = []entity.CompletedLecture{}
	}
	raw, err := json.Marshal(p.CompletedLectures)
	if err != nil {
		return err
	}
	var lastChapter, lastLecture *int
	if p.LastPosition != nil {
		lastChapter, lastLecture = &p.LastPosition.ChapterIndex, &p.LastPosition.LectureIndex
	}
	p.UpdatedAt = time.Now()

	row := r.pool.QueryRow(ctx, `
		INSERT INTO course_progress (user_id, course_id, completed, progress, completed_lectures,
			last_chapter_index, last_lecture_index, updated_at)
		VALUES ($1, $2, $3, $4, $5::jsonb, $6, $7, $8)
		ON CONFLICT (user_id, course_id) DO UPDATE SET
			completed = EXCLUDED.completed,
			progress = EXCLUDED.progress,
			completed_lectures = EXCLUDED.completed_lectures,
			last_chapter_index = EXCLUDED.last_chapter_index,
			last_lecture_index = EXCLUDED.last_lecture_index,
			updated_at = EXCLUDED.updated_at
		RETURNING id, created_at
	`, p.UserID, p.CourseID, p.Completed, p.Progress, string(raw), lastChapter, lastLecture, p.UpdatedAt)
	return mapErr(row.Scan(&p.ID, &p.CreatedAt))
}

func (r *ProgressRepository) ListByUser(ctx context.Context, userID string) ([]*entity.CourseProgress, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+progressColumns+` FROM course_progress WHERE user_id = $1 ORDER BY updated_at DESC
	`, userID)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	out := []*entity.CourseProgress{}
	for rows.Next() {
		p, err := scanProgress(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

var _ repository.ProgressRepository = (*ProgressRepository)(nil)
