package application

import (
	"time"

	"github.com/oksasatya/go-ddd-lms/internal/domain/entity"
)

// CourseView is the public shape of a course. Student ids and individual
// ratings stay private.
type CourseView struct {
	ID            string    `json:"id"`
	EducatorID    string    `json:"educator_id"`
	EducatorName  string    `json:"educator_name,omitempty"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Category      string    `json:"category,omitempty"`
	ThumbnailURL  string    `json:"thumbnail_url,omitempty"`
	Price         float64   `json:"price"`
	Discount      float64   `json:"discount"`
	FinalPrice    float64   `json:"final_price"`
	IsPublished   bool      `json:"is_published"`
	AverageRating float64   `json:"average_rating"`
	RatingCount   int       `json:"rating_count"`
	StudentCount  int       `json:"student_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func NewCourseView(c *entity.Course) CourseView {
	return CourseView{
		ID:            c.ID,
		EducatorID:    c.EducatorID,
		Title:         c.Title,
		Description:   c.Description,
		Category:      c.Category,
		ThumbnailURL:  c.ThumbnailURL,
		Price:         c.Price,
		Discount:      c.Discount,
		FinalPrice:    c.FinalPrice(),
		IsPublished:   c.IsPublished,
		AverageRating: c.AverageRating(),
		RatingCount:   len(c.Ratings),
		StudentCount:  len(c.EnrolledStudents),
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

func courseViews(cs []*entity.Course) []CourseView {
	out := make([]CourseView, 0, len(cs))
	for _, c := range cs {
		out = append(out, NewCourseView(c))
	}
	return out
}

type ChapterView struct {
	*entity.Chapter
	Lectures []*entity.Lecture `json:"lectures"`
}

type CourseDetail struct {
	CourseView
	Chapters      []ChapterView  `json:"chapters"`
	TotalLectures int            `json:"total_lectures"`
	TotalDuration int            `json:"total_duration"`
	IsOwner       bool           `json:"is_owner"`
	IsEnrolled    bool           `json:"is_enrolled"`
	MyRating      *entity.Rating `json:"my_rating,omitempty"`
}
