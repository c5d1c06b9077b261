package postgres

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-ddd-lms/internal/domain/entity"
	"github.com/oksasatya/go-ddd-lms/internal/domain/repository"
)

type CourseRepository struct {
	pool *pgxpool.Pool
}

func NewCourseRepository(pool *pgxpool.Pool) *CourseRepository {
	return &CourseRepository{pool: pool}
}

const courseColumns = `id, educator_id, title, description, category, thumbnail_url,
	price, discount, is_published, enrolled_students, created_at, updated_at`

func scanCourse(row pgx.Row) (*entity.Course, error) {
	c := &entity.Course{}
	if err := row.Scan(&c.ID, &c.EducatorID, &c.Title, &c.Description, &c.Category, &c.ThumbnailURL,
		&c.Price, &c.Discount, &c.IsPublished, &c.EnrolledStudents, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, mapErr(err)
	}
	c.Ratings = []entity.Rating{}
	return c, nil
}

func (r *CourseRepository) Create(ctx context.Context, c *entity.Course) error {
	if c.EnrolledStudents == nil {
		c.EnrolledStudents = []string{}
	}
	if c.Ratings == nil {
		c.Ratings = []entity.Rating{}
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO courses (educator_id, title, description, category, thumbnail_url, price, discount, is_published)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`, c.EducatorID, c.Title, c.Description, c.Category, c.ThumbnailURL, c.Price, c.Discount, c.IsPublished)
	return mapErr(row.Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt))
}

func (r *CourseRepository) GetByID(ctx context.Context, id string) (*entity.Course, error) {
	c, err := scanCourse(r.pool.QueryRow(ctx, `SELECT `+courseColumns+` FROM courses WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	if err := r.attachRatings(ctx, []*entity.Course{c}); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *CourseRepository) Update(ctx context.Context, c *entity.Course) error {
	c.UpdatedAt = time.Now()
	res, err := r.pool.Exec(ctx, `
		UPDATE courses
		SET title = $1, description = $2, category = $3, thumbnail_url = $4, price = $5,
			discount = $6, is_published = $7, updated_at = $8
		WHERE id = $9
	`, c.Title, c.Description, c.Category, c.ThumbnailURL, c.Price, c.Discount, c.IsPublished, c.UpdatedAt, c.ID)
	if err != nil {
		return mapErr(err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes lectures, chapters and the course in one transaction.
func (r *CourseRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM lectures WHERE course_id = $1`, id); err != nil {
		return mapErr(err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM chapters WHERE course_id = $1`, id); err != nil {
		return mapErr(err)
	}
	res, err := tx.Exec(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return mapErr(err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return tx.Commit(ctx)
}

func (r *CourseRepository) ListPublished(ctx context.Context, f repository.CourseFilter) ([]*entity.Course, int, error) {
	where := []string{"is_published = TRUE"}
	args := []any{}
	if f.Category != "" {
		args = append(args, f.Category)
		where = append(where, "lower(category) = lower($"+strconv.Itoa(len(args))+")")
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		args = append(args, "%"+q+"%")
		n := strconv.Itoa(len(args))
		where = append(where, "(title ILIKE $"+n+" OR description ILIKE $"+n+")")
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM courses WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, mapErr(err)
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 20
	}
	args = append(args, limit, f.Offset)
	query := `SELECT ` + courseColumns + ` FROM courses WHERE ` + cond +
		` ORDER BY created_at DESC LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))

	out, err := r.queryCourses(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *CourseRepository) ListByEducator(ctx context.Context, educatorID string) ([]*entity.Course, error) {
	return r.queryCourses(ctx, `SELECT `+courseColumns+` FROM courses WHERE educator_id = $1 ORDER BY created_at DESC`, educatorID)
}

func (r *CourseRepository) ListByIDs(ctx context.Context, ids []string) ([]*entity.Course, error) {
	if len(ids) == 0 {
		return []*entity.Course{}, nil
	}
	return r.queryCourses(ctx, `SELECT `+courseColumns+` FROM courses WHERE id = ANY($1::uuid[]) ORDER BY created_at DESC`, ids)
}

func (r *CourseRepository) AddStudent(ctx context.Context, courseID, userID string) (bool, error) {
	res, err := r.pool.Exec(ctx, `
		UPDATE courses
		SET enrolled_students = array_append(enrolled_students, $2), updated_at = now()
		WHERE id = $1 AND NOT ($2 = ANY(enrolled_students))
	`, courseID, userID)
	if err != nil {
		return false, mapErr(err)
	}
	if res.RowsAffected() == 1 {
		return true, nil
	}
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM courses WHERE id = $1)`, courseID).Scan(&exists); err != nil {
		return false, mapErr(err)
	}
	if !exists {
		return false, repository.ErrNotFound
	}
	return false, nil
}

func (r *CourseRepository) UpsertRating(ctx context.Context, courseID string, rt entity.Rating) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO course_ratings (course_id, user_id, rating, review, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (course_id, user_id)
		DO UPDATE SET rating = EXCLUDED.rating, review = EXCLUDED.review, updated_at = EXCLUDED.updated_at
	`, courseID, rt.UserID, rt.Rating, rt.Review, rt.UpdatedAt)
	return mapErr(err)
}

func (r *CourseRepository) queryCourses(ctx context.Context, query string, args ...any) ([]*entity.Course, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	out := []*entity.Course{}
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr(err)
	}
	if err := r.attachRatings(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *CourseRepository) attachRatings(ctx context.Context, courses []*entity.Course) error {
	if len(courses) == 0 {
		return nil
	}
	byID := make(map[string]*entity.Course, len(courses))
	ids := make([]string, 0, len(courses))
	for _, c := range courses {
		byID[c.ID] = c
		ids = append(ids, c.ID)
	}
	rows, err := r.pool.Query(ctx, `
		SELECT course_id, user_id, rating, review, updated_at
		FROM course_ratings
		WHERE course_id = ANY($1::uuid[])
		ORDER BY updated_at
	`, ids)
	if err != nil {
		return mapErr(err)
	}
	defer rows.Close()

	for rows.Next() {
		var courseID string
		var rt entity.Rating
		if err := rows.Scan(&courseID, &rt.UserID, &rt.Rating, &rt.Review, &rt.UpdatedAt); err != nil {
			return err
		}
		if c, ok := byID[courseID]; ok {
			c.Ratings = append(c.Ratings, rt)
		}
	}
	return rows.Err()
}

var _ repository.CourseRepository = (*CourseRepository)(nil)
