package application

import (
	"context"

	"github.com/oksasatya/go-ddd-lms/internal/domain/entity"
	"github.com/oksasatya/go-ddd-lms/internal/domain/repository"
)

type ResourceKind string

const (
	ResourceCourse  ResourceKind = "course"
	ResourceChapter ResourceKind = "chapter"
	ResourceLecture ResourceKind = "lecture"
)

// authorizeOwner resolves a course, chapter or lecture to its course and
// checks that callerID owns it. The course is returned for further use.
func (s *CatalogService) authorizeOwner(ctx context.Context, kind ResourceKind, id, callerID string) (*entity.Course, error) {
	courseID := id
	switch kind {
	case ResourceChapter:
		ch, err := s.Chapters.GetByID(ctx, id)
		if err != nil {
			return nil, notFound(err, ErrChapterNotFound)
		}
		courseID = ch.CourseID
	case ResourceLecture:
		l, err := s.Lectures.GetByID(ctx, id)
		if err != nil {
			return nil, notFound(err, ErrLectureNotFound)
		}
		courseID = l.CourseID
	}

	c, err := s.Courses.GetByID(ctx, courseID)
	if err != nil {
		return nil, notFound(err, ErrCourseNotFound)
	}
	if !c.OwnedBy(callerID) {
		return nil, ErrNotOwner
	}
	return c, nil
}

// enrolledIn accepts either side of the enrollment pair since the two sets
// are written separately.
func enrolledIn(ctx context.Context, users repository.UserRepository, c *entity.Course, userID string) bool {
	if userID == "" {
		return false
	}
	if c.HasStudent(userID) {
		return true
	}
	u, err := users.GetByID(ctx, userID)
	return err == nil && u.IsEnrolled(c.ID)
}
