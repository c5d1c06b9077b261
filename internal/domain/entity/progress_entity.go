package entity

import (
	"math"
	"time"
)

// CompletedLecture is one completion event. New events carry the lecture id
// and its indexes; rows written by older clients may hold indexes only.
type CompletedLecture struct {
	LectureID    string    `json:"lecture_id,omitempty"`
	ChapterIndex *int      `json:"chapter_index,omitempty"`
	LectureIndex *int      `json:"lecture_index,omitempty"`
	CompletedAt  time.Time `json:"completed_at"`
}

// Same reports whether both events refer to the same lecture.
func (c CompletedLecture) Same(o CompletedLecture) bool {
	if c.LectureID != "" && o.LectureID != "" {
		return c.LectureID == o.LectureID
	}
	if c.ChapterIndex == nil || c.LectureIndex == nil || o.ChapterIndex == nil || o.LectureIndex == nil {
		return false
	}
	return *c.ChapterIndex == *o.ChapterIndex && *c.LectureIndex == *o.LectureIndex
}

type Position struct {
	ChapterIndex int `json:"chapter_index"`
	LectureIndex int `json:"lecture_index"`
}

type CourseProgress struct {
	ID                string             `json:"id"`
	UserID            string             `json:"user_id"`
	CourseID          string             `json:"course_id"`
	Completed         bool               `json:"completed"`
	Progress          int                `json:"progress"`
	CompletedLectures []CompletedLecture `json:"completed_lectures"`
	LastPosition      *Position          `json:"last_position,omitempty"`
	CreatedAt         time.Time          `json:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at"`
}

func NewCourseProgress(userID, courseID string) *CourseProgress {
	return &CourseProgress{UserID: userID, CourseID: courseID, CompletedLectures: []CompletedLecture{}}
}

// Complete records ev unless an equivalent event exists, then recomputes
// the percentage against totalLectures. It reports whether ev was new.
func (p *CourseProgress) Complete(ev CompletedLecture, totalLectures int) bool {
	for _, done := range p.CompletedLectures {
		if done.Same(ev) {
			p.Recompute(totalLectures)
			return false
		}
	}
	p.CompletedLectures = append(p.CompletedLectures, ev)
	p.Recompute(totalLectures)
	return true
}

// Recompute never lowers the percentage and never clears Completed.
func (p *CourseProgress) Recompute(totalLectures int) {
	count := len(p.CompletedLectures)
	pct := Percent(count, totalLectures)
	if pct > p.Progress {
		p.Progress = pct
	}
	if totalLectures > 0 && count >= totalLectures {
		p.Completed = true
		p.Progress = 100
	}
}

// Percent is round(done/total*100) capped at 100.
func Percent(done, total int) int {
	if total <= 0 || done <= 0 {
		return 0
	}
	pct := int(math.Round(float64(done) / float64(total) * 100))
	if pct > 100 {
		pct = 100
	}
	return pct
}
