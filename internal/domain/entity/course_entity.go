package entity

import (
	"math"
	"slices"
	"time"
)

type Rating struct {
	UserID    string    `json:"user_id"`
	Rating    int       `json:"rating"`
	Review    string    `json:"review,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Course is owned by exactly one educator.
type Course struct {
	ID               string    `json:"id"`
	EducatorID       string    `json:"educator_id"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	Category         string    `json:"category,omitempty"`
	ThumbnailURL     string    `json:"thumbnail_url,omitempty"`
	Price            float64   `json:"price"`
	Discount         float64   `json:"discount"`
	IsPublished      bool      `json:"is_published"`
	Ratings          []Rating  `json:"ratings"`
	EnrolledStudents []string  `json:"enrolled_students"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// FinalPrice is price minus the percentage discount, rounded to cents.
// Discount is clamped to [0,100].
func (c *Course) FinalPrice() float64 {
	return FinalPrice(c.Price, c.Discount)
}

func FinalPrice(price, discount float64) float64 {
	d := math.Max(0, math.Min(100, discount))
	p := price - price*d/100
	return math.Round(p*100) / 100
}

func (c *Course) IsFree() bool { return c.FinalPrice() <= 0 }

func (c *Course) OwnedBy(userID string) bool {
	return userID != "" && c.EducatorID == userID
}

func (c *Course) HasStudent(userID string) bool {
	return slices.Contains(c.EnrolledStudents, userID)
}

// AverageRating is recomputed from the embedded ratings, rounded to one decimal.
func (c *Course) AverageRating() float64 {
	if len(c.Ratings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range c.Ratings {
		sum += r.Rating
	}
	avg := float64(sum) / float64(len(c.Ratings))
	return math.Round(avg*10) / 10
}

// SetRating overwrites the caller's previous rating or appends a new one.
func (c *Course) SetRating(r Rating) {
	for i := range c.Ratings {
		if c.Ratings[i].UserID == r.UserID {
			c.Ratings[i] = r
			return
		}
	}
	c.Ratings = append(c.Ratings, r)
}

type Chapter struct {
	ID        string    `json:"id"`
	CourseID  string    `json:"course_id"`
	Title     string    `json:"title"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Lecture struct {
	ID            string    `json:"id"`
	ChapterID     string    `json:"chapter_id"`
	CourseID      string    `json:"course_id"`
	Title         string    `json:"title"`
	VideoURL      string    `json:"video_url,omitempty"`
	Duration      int       `json:"duration"`
	Order         int       `json:"order"`
	IsPreviewFree bool      `json:"is_preview_free"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
