package repository

import (
	"context"

	"github.com/oksasatya/go-ddd-lms/internal/domain/entity"
)

type CourseFilter struct {
	Category string
	Query    string
	Limit    int
	Offset   int
}

type CourseRepository interface {
	Create(ctx context.Context, c *entity.Course) error
	GetByID(ctx context.Context, id string) (*entity.Course, error)
	Update(ctx context.Context, c *entity.Course) error
	// Delete removes the course with its chapters and lectures.
	Delete(ctx context.Context, id string) error
	ListPublished(ctx context.Context, f CourseFilter) ([]*entity.Course, int, error)
	ListByEducator(ctx context.Context, educatorID string) ([]*entity.Course, error)
	ListByIDs(ctx context.Context, ids []string) ([]*entity.Course, error)
	// AddStudent reports false when the student was already present.
	AddStudent(ctx context.Context, courseID, userID string) (bool, error)
	UpsertRating(ctx context.Context, courseID string, r entity.Rating) error
}

type ChapterRepository interface {
	Create(ctx context.Context, ch *entity.Chapter) error
	GetByID(ctx context.Context, id string) (*entity.Chapter, error)
	Update(ctx context.Context, ch *entity.Chapter) error
	// Delete removes the chapter with its lectures.
	Delete(ctx context.Context, id string) error
	ListByCourse(ctx context.Context, courseID string) ([]*entity.Chapter, error)
	NextPosition(ctx context.Context, courseID string) (int, error)
}

type LectureRepository interface {
	Create(ctx context.Context, l *entity.Lecture) error
	GetByID(ctx context.Context, id string) (*entity.Lecture, error)
	Update(ctx context.Context, l *entity.Lecture) error
	Delete(ctx context.Context, id string) error
	ListByChapter(ctx context.Context, chapterID string) ([]*entity.Lecture, error)
	ListByCourse(ctx context.Context, courseID string) ([]*entity.Lecture, error)
	CountByCourse(ctx context.Context, courseID string) (int, error)
	// OrderTaken reports whether another lecture in the chapter uses order.
	OrderTaken(ctx context.Context, chapterID string, order int, excludeID string) (bool, error)
}
