package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-ddd-lms/internal/domain/entity"
	"github.com/oksasatya/go-ddd-lms/internal/domain/repository"
)

func TestCourseDelete_Cascades(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	c := &entity.Course{EducatorID: "e1", Title: "Go"}
	require.NoError(t, s.Courses().Create(ctx, c))
	ch := &entity.Chapter{CourseID: c.ID, Title: "Intro", Position: 1}
	require.NoError(t, s.Chapters().Create(ctx, ch))
	l := &entity.Lecture{ChapterID: ch.ID, CourseID: c.ID, Title: "Hello", Order: 1}
	require.NoError(t, s.Lectures().Create(ctx, l))

	require.NoError(t, s.Courses().Delete(ctx, c.ID))

	_, err := s.Chapters().GetByID(ctx, ch.ID)
	assert.True(t, errors.Is(err, repository.ErrNotFound))
	_, err = s.Lectures().GetByID(ctx, l.ID)
	assert.True(t, errors.Is(err, repository.ErrNotFound))
}

func TestLectureOrder_UniquePerChapter(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	c := &entity.Course{EducatorID: "e1"}
	require.NoError(t, s.Courses().Create(ctx, c))
	ch := &entity.Chapter{CourseID: c.ID}
	require.NoError(t, s.Chapters().Create(ctx, ch))

	require.NoError(t, s.Lectures().Create(ctx, &entity.Lecture{ChapterID: ch.ID, CourseID: c.ID, Order: 1}))
	err := s.Lectures().Create(ctx, &entity.Lecture{ChapterID: ch.ID, CourseID: c.ID, Order: 1})
	assert.True(t, errors.Is(err, repository.ErrDuplicate))

	taken, err := s.Lectures().OrderTaken(ctx, ch.ID, 1, "")
	require.NoError(t, err)
	assert.True(t, taken)
}

func TestEnrollmentSets_Idempotent(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	u := &entity.User{Email: "s@example.com"}
	require.NoError(t, s.Users().Create(ctx, u))
	c := &entity.Course{EducatorID: "e1"}
	require.NoError(t, s.Courses().Create(ctx, c))

	added, err := s.Users().AddEnrolledCourse(ctx, u.ID, c.ID)
	require.NoError(t, err)
	assert.True(t, added)
	added, err = s.Users().AddEnrolledCourse(ctx, u.ID, c.ID)
	require.NoError(t, err)
	assert.False(t, added)

	added, err = s.Courses().AddStudent(ctx, c.ID, u.ID)
	require.NoError(t, err)
	assert.True(t, added)
	added, err = s.Courses().AddStudent(ctx, c.ID, u.ID)
	require.NoError(t, err)
	assert.False(t, added)

	got, err := s.Users().GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{c.ID}, got.EnrolledCourses)

	// mutating a returned copy leaves the store alone
	got.EnrolledCourses[0] = "tampered"
	again, _ := s.Users().GetByID(ctx, u.ID)
	assert.Equal(t, c.ID, again.EnrolledCourses[0])
}

func TestUserCreate_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	require.NoError(t, s.Users().Create(ctx, &entity.User{Email: "a@example.com"}))
	err := s.Users().Create(ctx, &entity.User{Email: "A@example.com"})
	assert.True(t, errors.Is(err, repository.ErrDuplicate))
}
