package application

import (
	"context"
	"errors"
	"strings"

	"github.com/oksasatya/go-ddd-lms/internal/domain/entity"
	"github.com/oksasatya/go-ddd-lms/internal/domain/repository"
	"github.com/oksasatya/go-ddd-lms/pkg/apperr"
)

var ErrInvalidOrder = apperr.Validation("invalid_order", "order must be positive")

func (s *CatalogService) CreateChapter(ctx context.Context, callerID, courseID, title string) (*entity.Chapter, error) {
	if strings.TrimSpace(title) == "" {
		return nil, ErrTitleRequired
	}
	c, err := s.authorizeOwner(ctx, ResourceCourse, courseID, callerID)
	if err != nil {
		return nil, err
	}
	pos, err := s.Chapters.NextPosition(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	ch := &entity.Chapter{CourseID: c.ID, Title: strings.TrimSpace(title), Position: pos}
	if err := s.Chapters.Create(ctx, ch); err != nil {
		return nil, err
	}
	return ch, nil
}

func (s *CatalogService) UpdateChapter(ctx context.Context, callerID, chapterID string, title *string, position *int) (*entity.Chapter, error) {
	if _, err := s.authorizeOwner(ctx, ResourceChapter, chapterID, callerID); err != nil {
		return nil, err
	}
	ch, err := s.Chapters.GetByID(ctx, chapterID)
	if err != nil {
		return nil, notFound(err, ErrChapterNotFound)
	}
	if title != nil {
		if strings.TrimSpace(*title) == "" {
			return nil, ErrTitleRequired
		}
		ch.Title = strings.TrimSpace(*title)
	}
	if position != nil {
		if *position < 1 {
			return nil, ErrInvalidOrder
		}
		ch.Position = *position
	}
	if err := s.Chapters.Update(ctx, ch); err != nil {
		return nil, err
	}
	return ch, nil
}

// DeleteChapter removes the chapter and its lectures.
func (s *CatalogService) DeleteChapter(ctx context.Context, callerID, chapterID string) error {
	if _, err := s.authorizeOwner(ctx, ResourceChapter, chapterID, callerID); err != nil {
		return err
	}
	return notFoundOrNil(s.Chapters.Delete(ctx, chapterID), ErrChapterNotFound)
}

// ListChapters follows the visibility rules of GetCourse.
func (s *CatalogService) ListChapters(ctx context.Context, viewerID, courseID string) ([]ChapterView, error) {
	d, err := s.GetCourse(ctx, viewerID, courseID)
	if err != nil {
		return nil, err
	}
	return d.Chapters, nil
}

type LectureInput struct {
	ChapterID     string
	Title         string
	VideoURL      string
	Duration      int
	Order         *int
	IsPreviewFree bool
}

type LectureUpdate struct {
	Title         *string
	VideoURL      *string
	Duration      *int
	Order         *int
	IsPreviewFree *bool
}

// CreateLecture appends to the chapter when no order is given.
func (s *CatalogService) CreateLecture(ctx context.Context, callerID string, in LectureInput) (*entity.Lecture, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, ErrTitleRequired
	}
	c, err := s.authorizeOwner(ctx, ResourceChapter, in.ChapterID, callerID)
	if err != nil {
		return nil, err
	}

	order := 0
	if in.Order != nil {
		order = *in.Order
		if order < 1 {
			return nil, ErrInvalidOrder
		}
		taken, err := s.Lectures.OrderTaken(ctx, in.ChapterID, order, "")
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrLectureOrder
		}
	} else {
		existing, err := s.Lectures.ListByChapter(ctx, in.ChapterID)
		if err != nil {
			return nil, err
		}
		order = 1
		for _, l := range existing {
			if l.Order >= order {
				order = l.Order + 1
			}
		}
	}

	l := &entity.Lecture{
		ChapterID:     in.ChapterID,
		CourseID:      c.ID,
		Title:         strings.TrimSpace(in.Title),
		VideoURL:      in.VideoURL,
		Duration:      max(in.Duration, 0),
		Order:         order,
		IsPreviewFree: in.IsPreviewFree,
	}
	if err := s.Lectures.Create(ctx, l); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrLectureOrder
		}
		return nil, err
	}
	return l, nil
}

func (s *CatalogService) UpdateLecture(ctx context.Context, callerID, lectureID string, in LectureUpdate) (*entity.Lecture, error) {
	if _, err := s.authorizeOwner(ctx, ResourceLecture, lectureID, callerID); err != nil {
		return nil, err
	}
	l, err := s.Lectures.GetByID(ctx, lectureID)
	if err != nil {
		return nil, notFound(err, ErrLectureNotFound)
	}
	if in.Title != nil {
		if strings.TrimSpace(*in.Title) == "" {
			return nil, ErrTitleRequired
		}
		l.Title = strings.TrimSpace(*in.Title)
	}
	if in.VideoURL != nil {
		l.VideoURL = *in.VideoURL
	}
	if in.Duration != nil {
		l.Duration = max(*in.Duration, 0)
	}
	if in.IsPreviewFree != nil {
		l.IsPreviewFree = *in.IsPreviewFree
	}
	if in.Order != nil && *in.Order != l.Order {
		if *in.Order < 1 {
			return nil, ErrInvalidOrder
		}
		taken, err := s.Lectures.OrderTaken(ctx, l.ChapterID, *in.Order, l.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrLectureOrder
		}
		l.Order = *in.Order
	}
	if err := s.Lectures.Update(ctx, l); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrLectureOrder
		}
		return nil, err
	}
	return l, nil
}

func (s *CatalogService) DeleteLecture(ctx context.Context, callerID, lectureID string) error {
	if _, err := s.authorizeOwner(ctx, ResourceLecture, lectureID, callerID); err != nil {
		return err
	}
	return notFoundOrNil(s.Lectures.Delete(ctx, lectureID), ErrLectureNotFound)
}

// GetLecture applies the same visibility and video rules as GetCourse.
func (s *CatalogService) GetLecture(ctx context.Context, viewerID, lectureID string) (*entity.Lecture, error) {
	l, err := s.Lectures.GetByID(ctx, lectureID)
	if err != nil {
		return nil, notFound(err, ErrLectureNotFound)
	}
	c, err := s.Courses.GetByID(ctx, l.CourseID)
	if err != nil {
		return nil, notFound(err, ErrCourseNotFound)
	}
	owner := c.OwnedBy(viewerID)
	if !c.IsPublished && !owner {
		return nil, ErrLectureNotFound
	}
	if !owner && !l.IsPreviewFree && !enrolledIn(ctx, s.Users, c, viewerID) {
		l.VideoURL = ""
	}
	return l, nil
}

func notFoundOrNil(err error, domainErr *apperr.Error) error {
	if err == nil {
		return nil
	}
	return notFound(err, domainErr)
}
