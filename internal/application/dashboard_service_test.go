package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-ddd-lms/internal/domain/entity"
)

func TestChangePercent(t *testing.T) {
	assert.Equal(t, 0.0, ChangePercent(0, 0))
	assert.Equal(t, 100.0, ChangePercent(25, 0))
	assert.Equal(t, 50.0, ChangePercent(150, 100))
	assert.Equal(t, -33.3, ChangePercent(2, 3))
}

func TestDashboard(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	edu := env.newUser(t, "edu", entity.RoleEducator)
	a := env.newUser(t, "a", entity.RoleStudent)
	b := env.newUser(t, "b", entity.RoleStudent)
	c, _ := env.newCourse(t, edu, 100, 20, 1)
	_, err := env.catalog.CreateCourse(ctx, actorOf(edu), CourseInput{Title: "draft"})
	require.NoError(t, err)

	// a bought 40 days ago, b today
	env.enrollment.Now = func() time.Time { return time.Now().Add(-40 * 24 * time.Hour) }
	_, err = env.enrollment.RecordPurchase(ctx, a.ID, c.ID, Charge{Ref: "cs_a"})
	require.NoError(t, err)
	env.enrollment.Now = time.Now
	_, err = env.enrollment.RecordPurchase(ctx, b.ID, c.ID, Charge{Ref: "cs_b"})
	require.NoError(t, err)

	d, err := env.dashboard.Dashboard(ctx, actorOf(edu))
	require.NoError(t, err)
	assert.Equal(t, 2, d.TotalCourses)
	assert.Equal(t, 1, d.PublishedCourses)
	assert.Equal(t, 2, d.TotalStudents)
	assert.Equal(t, 160.0, d.TotalEarnings)
	assert.Equal(t, 80.0, d.EarningsLast30)
	assert.Equal(t, 80.0, d.EarningsPrev30)
	assert.Equal(t, 0.0, d.EarningsChange)

	students, err := env.dashboard.Students(ctx, actorOf(edu))
	require.NoError(t, err)
	require.Len(t, students, 2)
	assert.Equal(t, "b", students[0].Name)
	assert.NotNil(t, students[0].PurchaseDate)

	_, err = env.dashboard.Dashboard(ctx, actorOf(a))
	assert.True(t, errors.Is(err, ErrEducatorOnly))
}
