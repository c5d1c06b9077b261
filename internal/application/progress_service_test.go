package application

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-ddd-lms/internal/domain/entity"
)

func TestProgress_TwoChaptersThreeLectures(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	edu := env.newUser(t, "edu", entity.RoleEducator)
	stu := env.newUser(t, "stu", entity.RoleStudent)
	c, lectures := env.newCourse(t, edu, 0, 0, 2, 1)
	require.Len(t, lectures, 3)

	_, err := env.progress.RecordLectureCompletion(ctx, stu.ID, c.ID, LectureRef{LectureID: lectures[0].ID})
	assert.True(t, errors.Is(err, ErrNotEnrolled))

	_, err = env.enrollment.EnrollFree(ctx, stu.ID, c.ID)
	require.NoError(t, err)

	last := 0
	for i, l := range lectures[:2] {
		p, err := env.progress.RecordLectureCompletion(ctx, stu.ID, c.ID, LectureRef{LectureID: l.ID})
		require.NoError(t, err, i)
		assert.GreaterOrEqual(t, p.Progress, last)
		last = p.Progress
	}
	p, err := env.progress.RecordLectureCompletion(ctx, stu.ID, c.ID, LectureRef{LectureID: lectures[1].ID})
	require.NoError(t, err)
	assert.Equal(t, 67, p.Progress)
	assert.False(t, p.Completed)
	assert.Len(t, p.CompletedLectures, 2)

	p, err = env.progress.RecordLectureCompletion(ctx, stu.ID, c.ID, LectureRef{LectureID: lectures[2].ID})
	require.NoError(t, err)
	assert.Equal(t, 100, p.Progress)
	assert.True(t, p.Completed)

	stored, err := env.progress.Get(ctx, stu.ID, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, stored.Progress)
	assert.True(t, stored.Completed)
}

func TestProgress_LegacyIndexPair(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	edu := env.newUser(t, "edu", entity.RoleEducator)
	stu := env.newUser(t, "stu", entity.RoleStudent)
	c, _ := env.newCourse(t, edu, 0, 0, 2)
	_, err := env.enrollment.EnrollFree(ctx, stu.ID, c.ID)
	require.NoError(t, err)

	zero := 0
	ref := LectureRef{ChapterIndex: &zero, LectureIndex: &zero}
	_, err = env.progress.RecordLectureCompletion(ctx, stu.ID, c.ID, ref)
	require.NoError(t, err)
	p, err := env.progress.RecordLectureCompletion(ctx, stu.ID, c.ID, ref)
	require.NoError(t, err)
	assert.Len(t, p.CompletedLectures, 1)
	assert.Equal(t, 50, p.Progress)

	_, err = env.progress.RecordLectureCompletion(ctx, stu.ID, c.ID, LectureRef{})
	assert.True(t, errors.Is(err, ErrLectureRefRequired))
}

func TestProgress_IndexPairOutsideOutline(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	edu := env.newUser(t, "edu", entity.RoleEducator)
	stu := env.newUser(t, "stu", entity.RoleStudent)
	c, _ := env.newCourse(t, edu, 0, 0, 2, 1)
	_, err := env.enrollment.EnrollFree(ctx, stu.ID, c.ID)
	require.NoError(t, err)

	pairs := [][2]int{{90, 90}, {91, 91}, {0, 2}, {1, 1}, {2, 0}, {-1, 0}}
	for _, pair := range pairs {
		ci, li := pair[0], pair[1]
		_, err := env.progress.RecordLectureCompletion(ctx, stu.ID, c.ID, LectureRef{ChapterIndex: &ci, LectureIndex: &li})
		assert.True(t, errors.Is(err, ErrLectureNotInCourse), "pair %v", pair)
	}

	p, err := env.progress.Get(ctx, stu.ID, c.ID)
	require.NoError(t, err)
	assert.Zero(t, p.Progress)
	assert.False(t, p.Completed)
	assert.Empty(t, p.CompletedLectures)
}

func TestProgress_SameLectureByIDThenIndex(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	edu := env.newUser(t, "edu", entity.RoleEducator)
	stu := env.newUser(t, "stu", entity.RoleStudent)
	c, lectures := env.newCourse(t, edu, 0, 0, 1, 1)
	require.Len(t, lectures, 2)
	_, err := env.enrollment.EnrollFree(ctx, stu.ID, c.ID)
	require.NoError(t, err)

	p, err := env.progress.RecordLectureCompletion(ctx, stu.ID, c.ID, LectureRef{LectureID: lectures[0].ID})
	require.NoError(t, err)
	require.Len(t, p.CompletedLectures, 1)
	ev := p.CompletedLectures[0]
	require.NotNil(t, ev.ChapterIndex)
	require.NotNil(t, ev.LectureIndex)
	assert.Equal(t, 0, *ev.ChapterIndex)
	assert.Equal(t, 0, *ev.LectureIndex)

	zero := 0
	p, err = env.progress.RecordLectureCompletion(ctx, stu.ID, c.ID, LectureRef{ChapterIndex: &zero, LectureIndex: &zero})
	require.NoError(t, err)
	assert.Len(t, p.CompletedLectures, 1)
	assert.Equal(t, 50, p.Progress)
	assert.False(t, p.Completed)

	one := 1
	p, err = env.progress.RecordLectureCompletion(ctx, stu.ID, c.ID, LectureRef{ChapterIndex: &one, LectureIndex: &zero})
	require.NoError(t, err)
	require.Len(t, p.CompletedLectures, 2)
	assert.Equal(t, lectures[1].ID, p.CompletedLectures[1].LectureID)
	assert.Equal(t, 100, p.Progress)
	assert.True(t, p.Completed)

	p, err = env.progress.RecordLectureCompletion(ctx, stu.ID, c.ID, LectureRef{LectureID: lectures[1].ID})
	require.NoError(t, err)
	assert.Len(t, p.CompletedLectures, 2)
}

func TestProgress_LectureFromOtherCourse(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	edu := env.newUser(t, "edu", entity.RoleEducator)
	stu := env.newUser(t, "stu", entity.RoleStudent)
	c, _ := env.newCourse(t, edu, 0, 0, 1)
	_, foreign := env.newCourse(t, edu, 0, 0, 1)
	_, err := env.enrollment.EnrollFree(ctx, stu.ID, c.ID)
	require.NoError(t, err)

	_, err = env.progress.RecordLectureCompletion(ctx, stu.ID, c.ID, LectureRef{LectureID: foreign[0].ID})
	assert.True(t, errors.Is(err, ErrLectureNotInCourse))
}

func TestSetLastPosition(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	edu := env.newUser(t, "edu", entity.RoleEducator)
	stu := env.newUser(t, "stu", entity.RoleStudent)
	c, _ := env.newCourse(t, edu, 0, 0, 1)

	_, err := env.progress.SetLastPosition(ctx, stu.ID, c.ID, entity.Position{ChapterIndex: 0, LectureIndex: 0})
	assert.True(t, errors.Is(err, ErrNotEnrolled))

	_, err = env.enrollment.EnrollFree(ctx, stu.ID, c.ID)
	require.NoError(t, err)
	p, err := env.progress.SetLastPosition(ctx, stu.ID, c.ID, entity.Position{ChapterIndex: 1, LectureIndex: 2})
	require.NoError(t, err)
	assert.Equal(t, &entity.Position{ChapterIndex: 1, LectureIndex: 2}, p.LastPosition)
	assert.Zero(t, p.Progress)

	all, err := env.progress.ListMine(ctx, stu.ID)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = env.progress.SetLastPosition(ctx, stu.ID, c.ID, entity.Position{ChapterIndex: -1})
	assert.True(t, errors.Is(err, ErrInvalidPosition))
}

func TestEnrolledCourses_IncludeProgress(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	edu := env.newUser(t, "edu", entity.RoleEducator)
	stu := env.newUser(t, "stu", entity.RoleStudent)
	c, lectures := env.newCourse(t, edu, 0, 0, 2)
	_, err := env.enrollment.EnrollFree(ctx, stu.ID, c.ID)
	require.NoError(t, err)
	_, err = env.progress.RecordLectureCompletion(ctx, stu.ID, c.ID, LectureRef{LectureID: lectures[0].ID})
	require.NoError(t, err)

	list, err := env.users.EnrolledCourses(ctx, stu.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, c.ID, list[0].ID)
	assert.Equal(t, 50, list[0].Progress)
}
