package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-ddd-lms/internal/domain/entity"
	"github.com/oksasatya/go-ddd-lms/internal/domain/repository"
)

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = `id, email, password_hash, name, role, bio, avatar_url, is_verified,
	otp_code, otp_expires_at, otp_attempts, reset_otp_code, reset_otp_expiry, reset_token_hash, reset_token_exp,
	enrolled_courses, created_at, updated_at`

func scanUser(row pgx.Row) (*entity.User, error) {
	u := &entity.User{}
	var role string
	if err := row.Scan(&u.ID, &u.Email, &u.Password, &u.Name, &role, &u.Bio, &u.AvatarURL, &u.IsVerified,
		&u.OTPCode, &u.OTPExpiresAt, &u.OTPAttempts, &u.ResetOTPCode, &u.ResetOTPExpiry, &u.ResetTokenHash, &u.ResetTokenExp,
		&u.EnrolledCourses, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, mapErr(err)
	}
	u.Role = entity.Role(role)
	return u, nil
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	if u.EnrolledCourses == nil {
		u.EnrolledCourses = []string{}
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (email, password_hash, name, role, bio, avatar_url, is_verified,
			otp_code, otp_expires_at, enrolled_courses)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`, u.Email, u.Password, u.Name, string(u.Role), u.Bio, u.AvatarURL, u.IsVerified,
		u.OTPCode, u.OTPExpiresAt, u.EnrolledCourses)

	return mapErr(row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt))
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email))
}

func (r *UserRepository) GetByResetTokenHash(ctx context.Context, hash string) (*entity.User, error) {
	if hash == "" {
		return nil, repository.ErrNotFound
	}
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE reset_token_hash = $1`, hash))
}

// Update writes profile, credential and verification fields.
// Enrollment is only changed through AddEnrolledCourse.
func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	u.UpdatedAt = time.Now()

	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET email = $1, password_hash = $2, name = $3, role = $4, bio = $5, avatar_url = $6,
			is_verified = $7, otp_code = $8, otp_expires_at = $9, reset_otp_code = $10,
			reset_otp_expiry = $11, reset_token_hash = $12, reset_token_exp = $13, updated_at = $14,
			otp_attempts = $15
		WHERE id = $16
	`, u.Email, u.Password, u.Name, string(u.Role), u.Bio, u.AvatarURL,
		u.IsVerified, u.OTPCode, u.OTPExpiresAt, u.ResetOTPCode,
		u.ResetOTPExpiry, u.ResetTokenHash, u.ResetTokenExp, u.UpdatedAt, u.OTPAttempts, u.ID)
	if err != nil {
		return mapErr(err)
	}

	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (r *UserRepository) AddEnrolledCourse(ctx context.Context, userID, courseID string) (bool, error) {
	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET enrolled_courses = array_append(enrolled_courses, $2), updated_at = now()
		WHERE id = $1 AND NOT ($2 = ANY(enrolled_courses))
	`, userID, courseID)
	if err != nil {
		return false, mapErr(err)
	}
	if res.RowsAffected() == 1 {
		return true, nil
	}
	if _, err := r.GetByID(ctx, userID); err != nil {
		return false, err
	}
	return false, nil
}

func (r *UserRepository) ListByIDs(ctx context.Context, ids []string) ([]*entity.User, error) {
	if len(ids) == 0 {
		return []*entity.User{}, nil
	}
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users WHERE id = ANY($1::uuid[]) ORDER BY name`, ids)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	out := make([]*entity.User, 0, len(ids))
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, mapErr(rows.Err())
}

var _ repository.UserRepository = (*UserRepository)(nil)
