package repository

import (
	"context"

	"github.com/oksasatya/go-ddd-lms/internal/domain/entity"
)

type PurchaseRepository interface {
	Create(ctx context.Context, p *entity.Purchase) error
	GetByUserAndCourse(ctx context.Context, userID, courseID string) (*entity.Purchase, error)
	ListByUser(ctx context.Context, userID string) ([]*entity.Purchase, error)
	ListByCourses(ctx context.Context, courseIDs []string) ([]*entity.Purchase, error)
}

type ProgressRepository interface {
	Get(ctx context.Context, userID, courseID string) (*entity.CourseProgress, error)
	Save(ctx context.Context, p *entity.CourseProgress) error
	ListByUser(ctx context.Context, userID string) ([]*entity.CourseProgress, error)
}
