package application

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-ddd-lms/internal/domain/entity"
	"github.com/oksasatya/go-ddd-lms/internal/domain/repository"
	"github.com/oksasatya/go-ddd-lms/pkg/apperr"
)

func TestOwnership_OnlyOwnerMutates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.newUser(t, "owner", entity.RoleEducator)
	other := env.newUser(t, "other", entity.RoleEducator)
	c, lectures := env.newCourse(t, owner, 10, 0, 1)

	title := "stolen"
	_, err := env.catalog.UpdateCourse(ctx, other.ID, c.ID, CourseUpdate{Title: &title})
	assert.True(t, errors.Is(err, ErrNotOwner))
	assert.Equal(t, 403, apperr.From(err).HTTPStatus())

	_, err = env.catalog.TogglePublish(ctx, other.ID, c.ID)
	assert.True(t, errors.Is(err, ErrNotOwner))
	assert.True(t, errors.Is(env.catalog.DeleteCourse(ctx, other.ID, c.ID), ErrNotOwner))
	assert.True(t, errors.Is(env.catalog.DeleteLecture(ctx, other.ID, lectures[0].ID), ErrNotOwner))
	assert.True(t, errors.Is(env.catalog.DeleteChapter(ctx, other.ID, lectures[0].ChapterID), ErrNotOwner))
	_, err = env.catalog.CreateChapter(ctx, other.ID, c.ID, "extra")
	assert.True(t, errors.Is(err, ErrNotOwner))

	updated, err := env.catalog.UpdateCourse(ctx, owner.ID, c.ID, CourseUpdate{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "stolen", updated.Title)
}

func TestCreateCourse_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	edu := env.newUser(t, "edu", entity.RoleEducator)
	stu := env.newUser(t, "stu", entity.RoleStudent)

	_, err := env.catalog.CreateCourse(ctx, actorOf(stu), CourseInput{Title: "x"})
	assert.True(t, errors.Is(err, ErrEducatorOnly))
	_, err = env.catalog.CreateCourse(ctx, actorOf(edu), CourseInput{Title: "x", Discount: 120})
	assert.True(t, errors.Is(err, ErrInvalidDiscount))
	_, err = env.catalog.CreateCourse(ctx, actorOf(edu), CourseInput{Title: "x", Price: -1})
	assert.True(t, errors.Is(err, ErrInvalidPrice))
	_, err = env.catalog.CreateCourse(ctx, actorOf(edu), CourseInput{Title: "  "})
	assert.True(t, errors.Is(err, ErrTitleRequired))
}

func TestGetCourse_VisibilityAndVideoURLs(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	edu := env.newUser(t, "edu", entity.RoleEducator)
	stu := env.newUser(t, "stu", entity.RoleStudent)
	c, lectures := env.newCourse(t, edu, 0, 0, 2)

	free := true
	_, err := env.catalog.UpdateLecture(ctx, edu.ID, lectures[0].ID, LectureUpdate{IsPreviewFree: &free})
	require.NoError(t, err)

	d, err := env.catalog.GetCourse(ctx, stu.ID, c.ID)
	require.NoError(t, err)
	require.Len(t, d.Chapters, 1)
	require.Len(t, d.Chapters[0].Lectures, 2)
	assert.NotEmpty(t, d.Chapters[0].Lectures[0].VideoURL)
	assert.Empty(t, d.Chapters[0].Lectures[1].VideoURL)
	assert.Equal(t, 2, d.TotalLectures)
	assert.Equal(t, 120, d.TotalDuration)
	assert.Equal(t, "edu", d.EducatorName)

	_, err = env.enrollment.EnrollFree(ctx, stu.ID, c.ID)
	require.NoError(t, err)
	d, err = env.catalog.GetCourse(ctx, stu.ID, c.ID)
	require.NoError(t, err)
	assert.True(t, d.IsEnrolled)
	assert.NotEmpty(t, d.Chapters[0].Lectures[1].VideoURL)

	_, err = env.catalog.TogglePublish(ctx, edu.ID, c.ID)
	require.NoError(t, err)
	_, err = env.catalog.GetCourse(ctx, stu.ID, c.ID)
	assert.True(t, errors.Is(err, ErrCourseNotFound))
	d, err = env.catalog.GetCourse(ctx, edu.ID, c.ID)
	require.NoError(t, err)
	assert.True(t, d.IsOwner)

	views, total, err := env.catalog.ListPublished(ctx, repository.CourseFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, views)
}

func TestLectureOrder_Conflict(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	edu := env.newUser(t, "edu", entity.RoleEducator)
	_, lectures := env.newCourse(t, edu, 0, 0, 2)
	assert.Equal(t, 1, lectures[0].Order)
	assert.Equal(t, 2, lectures[1].Order)

	one := 1
	_, err := env.catalog.CreateLecture(ctx, edu.ID, LectureInput{ChapterID: lectures[0].ChapterID, Title: "dup", Order: &one})
	assert.True(t, errors.Is(err, ErrLectureOrder))
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	_, err = env.catalog.UpdateLecture(ctx, edu.ID, lectures[1].ID, LectureUpdate{Order: &one})
	assert.True(t, errors.Is(err, ErrLectureOrder))

	five := 5
	l, err := env.catalog.UpdateLecture(ctx, edu.ID, lectures[1].ID, LectureUpdate{Order: &five})
	require.NoError(t, err)
	assert.Equal(t, 5, l.Order)
}

func TestDeleteCourse_Cascades(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	edu := env.newUser(t, "edu", entity.RoleEducator)
	c, lectures := env.newCourse(t, edu, 0, 0, 1, 2)

	require.NoError(t, env.catalog.DeleteCourse(ctx, edu.ID, c.ID))
	for _, l := range lectures {
		_, err := env.store.Lectures().GetByID(ctx, l.ID)
		assert.True(t, errors.Is(err, repository.ErrNotFound))
	}
	_, err := env.catalog.GetCourse(ctx, edu.ID, c.ID)
	assert.True(t, errors.Is(err, ErrCourseNotFound))
}

func TestDeleteChapter_CascadesLectures(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	edu := env.newUser(t, "edu", entity.RoleEducator)
	c, lectures := env.newCourse(t, edu, 0, 0, 2, 1)

	require.NoError(t, env.catalog.DeleteChapter(ctx, edu.ID, lectures[0].ChapterID))
	n, err := env.store.Lectures().CountByCourse(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestRateCourse(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	edu := env.newUser(t, "edu", entity.RoleEducator)
	a := env.newUser(t, "a", entity.RoleStudent)
	b := env.newUser(t, "b", entity.RoleStudent)
	c, _ := env.newCourse(t, edu, 0, 0, 1)

	_, err := env.catalog.RateCourse(ctx, a.ID, c.ID, 5, "")
	assert.True(t, errors.Is(err, ErrNotEnrolled))

	for _, u := range []*entity.User{a, b} {
		_, err := env.enrollment.EnrollFree(ctx, u.ID, c.ID)
		require.NoError(t, err)
	}
	_, err = env.catalog.RateCourse(ctx, a.ID, c.ID, 6, "")
	assert.True(t, errors.Is(err, ErrInvalidRating))

	avg, err := env.catalog.RateCourse(ctx, a.ID, c.ID, 5, "great")
	require.NoError(t, err)
	assert.Equal(t, 5.0, avg)
	avg, err = env.catalog.RateCourse(ctx, b.ID, c.ID, 2, "")
	require.NoError(t, err)
	assert.Equal(t, 3.5, avg)
	avg, err = env.catalog.RateCourse(ctx, a.ID, c.ID, 4, "revised")
	require.NoError(t, err)
	assert.Equal(t, 3.0, avg)

	stored, err := env.store.Courses().GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Ratings, 2)
}

func TestUploads(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	edu := env.newUser(t, "edu", entity.RoleEducator)
	c, lectures := env.newCourse(t, edu, 0, 0, 1)

	_, err := env.catalog.UploadThumbnail(ctx, edu.ID, c.ID, Upload{Filename: "a.pdf", ContentType: "application/pdf", Body: bytes.NewReader(nil)})
	assert.True(t, errors.Is(err, ErrUnsupportedFile))

	updated, err := env.catalog.UploadThumbnail(ctx, edu.ID, c.ID, Upload{
		Filename: "cover.PNG", ContentType: "image/png", Size: 3, Body: bytes.NewReader([]byte("png")),
	})
	require.NoError(t, err)
	assert.Contains(t, updated.ThumbnailURL, "courses/"+c.ID+"/thumbnail-")
	assert.Contains(t, updated.ThumbnailURL, ".png")

	url, err := env.catalog.UploadVideo(ctx, actorOf(edu), lectures[0].ID, Upload{
		Filename: "intro.mp4", ContentType: "video/mp4", Size: 4, Body: bytes.NewReader([]byte("mp4!")),
	})
	require.NoError(t, err)
	l, err := env.store.Lectures().GetByID(ctx, lectures[0].ID)
	require.NoError(t, err)
	assert.Equal(t, url, l.VideoURL)

	env.catalog.MaxVideoBytes = 1
	_, err = env.catalog.UploadVideo(ctx, actorOf(edu), "", Upload{Filename: "big.mp4", ContentType: "video/mp4", Size: 2, Body: bytes.NewReader([]byte("xx"))})
	assert.True(t, errors.Is(err, ErrFileTooLarge))

	env.media.err = errBoom
	_, err = env.catalog.UploadVideo(ctx, actorOf(edu), "", Upload{Filename: "x.mp4", ContentType: "video/mp4", Body: bytes.NewReader(nil)})
	assert.Equal(t, apperr.KindExternal, apperr.KindOf(err))
}
