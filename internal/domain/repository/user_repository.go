package repository

import (
	"context"

	"github.com/oksasatya/go-ddd-lms/internal/domain/entity"
)

// UserRepository defines the interface for user-related database operations.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByResetTokenHash(ctx context.Context, hash string) (*entity.User, error)
	Update(ctx context.Context, u *entity.User) error
	// AddEnrolledCourse reports false when the course was already present.
	AddEnrolledCourse(ctx context.Context, userID, courseID string) (bool, error)
	ListByIDs(ctx context.Context, ids []string) ([]*entity.User, error)
}
