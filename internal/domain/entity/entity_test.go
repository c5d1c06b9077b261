package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFinalPrice(t *testing.T) {
	cases := []struct {
		price, discount, want float64
	}{
		{100, 20, 80},
		{100, 0, 100},
		{100, 100, 0},
		{100, 150, 0},
		{100, -10, 100},
		{49.99, 15, 42.49},
	}
	for _, c := range cases {
		assert.InDelta(t, c.want, FinalPrice(c.price, c.discount), 0.001, "price=%v discount=%v", c.price, c.discount)
	}
	assert.True(t, (&Course{Price: 0}).IsFree())
	assert.False(t, (&Course{Price: 10, Discount: 50}).IsFree())
}

func TestCourse_SetRatingOverwrites(t *testing.T) {
	c := &Course{}
	c.SetRating(Rating{UserID: "a", Rating: 5})
	c.SetRating(Rating{UserID: "b", Rating: 2})
	c.SetRating(Rating{UserID: "a", Rating: 3, Review: "changed my mind"})

	assert.Len(t, c.Ratings, 2)
	assert.Equal(t, 2.5, c.AverageRating())
	assert.Equal(t, "changed my mind", c.Ratings[0].Review)
	assert.Equal(t, 0.0, (&Course{}).AverageRating())
}

func TestProgress_ThreeLectures(t *testing.T) {
	p := NewCourseProgress("s", "c")
	now := time.Now()

	assert.True(t, p.Complete(CompletedLecture{LectureID: "l1", CompletedAt: now}, 3))
	assert.True(t, p.Complete(CompletedLecture{LectureID: "l2", CompletedAt: now}, 3))
	assert.Equal(t, 67, p.Progress)
	assert.False(t, p.Completed)

	assert.False(t, p.Complete(CompletedLecture{LectureID: "l2", CompletedAt: now}, 3))
	assert.Len(t, p.CompletedLectures, 2)

	assert.True(t, p.Complete(CompletedLecture{LectureID: "l3", CompletedAt: now}, 3))
	assert.Equal(t, 100, p.Progress)
	assert.True(t, p.Completed)
}

func TestProgress_NeverDecreases(t *testing.T) {
	p := NewCourseProgress("s", "c")
	p.Complete(CompletedLecture{LectureID: "l1"}, 2)
	assert.Equal(t, 50, p.Progress)

	// a lecture was added to the course afterwards
	p.Recompute(4)
	assert.Equal(t, 50, p.Progress)

	p.Complete(CompletedLecture{LectureID: "l2"}, 4)
	assert.Equal(t, 50, p.Progress)
	p.Complete(CompletedLecture{LectureID: "l3"}, 4)
	assert.Equal(t, 75, p.Progress)
}

func TestCompletedLecture_SameByIndexPair(t *testing.T) {
	zero, one := 0, 1
	a := CompletedLecture{ChapterIndex: &zero, LectureIndex: &one}
	b := CompletedLecture{ChapterIndex: &zero, LectureIndex: &one}
	c := CompletedLecture{ChapterIndex: &one, LectureIndex: &one}

	assert.True(t, a.Same(b))
	assert.False(t, a.Same(c))
	assert.False(t, a.Same(CompletedLecture{}))
	assert.True(t, CompletedLecture{LectureID: "x", ChapterIndex: &one}.Same(CompletedLecture{LectureID: "x"}))

	// a resolved event still matches an index-only row
	resolved := CompletedLecture{LectureID: "l-1", ChapterIndex: &zero, LectureIndex: &one}
	assert.True(t, resolved.Same(a))
	assert.False(t, resolved.Same(CompletedLecture{LectureID: "l-2", ChapterIndex: &zero, LectureIndex: &one}))
}

func TestPercent(t *testing.T) {
	assert.Equal(t, 0, Percent(0, 0))
	assert.Equal(t, 33, Percent(1, 3))
	assert.Equal(t, 100, Percent(5, 3))
}
