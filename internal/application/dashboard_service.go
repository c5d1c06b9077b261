package application

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/oksasatya/go-ddd-lms/internal/domain/entity"
	"github.com/oksasatya/go-ddd-lms/internal/domain/repository"
)

const dashboardPeriod = 30 * 24 * time.Hour

type DashboardService struct {
	Courses   repository.CourseRepository
	Purchases repository.PurchaseRepository
	Users     repository.UserRepository
	Now       func() time.Time
}

func NewDashboardService(courses repository.CourseRepository, purchases repository.PurchaseRepository,
	users repository.UserRepository) *DashboardService {
	return &DashboardService{Courses: courses, Purchases: purchases, Users: users, Now: time.Now}
}

type CourseStat struct {
	CourseID      string  `json:"course_id"`
	Title         string  `json:"title"`
	IsPublished   bool    `json:"is_published"`
	Students      int     `json:"students"`
	Earnings      float64 `json:"earnings"`
	AverageRating float64 `json:"average_rating"`
}

type Dashboard struct {
	TotalCourses      int          `json:"total_courses"`
	PublishedCourses  int          `json:"published_courses"`
	TotalStudents     int          `json:"total_students"`
	TotalEarnings     float64      `json:"total_earnings"`
	EarningsLast30    float64      `json:"earnings_last_30_days"`
	EarningsPrev30    float64      `json:"earnings_previous_30_days"`
	EarningsChange    float64      `json:"earnings_change_pct"`
	EnrollmentsLast30 int          `json:"enrollments_last_30_days"`
	EnrollmentsPrev30 int          `json:"enrollments_previous_30_days"`
	EnrollmentsChange float64      `json:"enrollments_change_pct"`
	Courses           []CourseStat `json:"courses"`
}

type StudentEnrollment struct {
	StudentID    string     `json:"student_id"`
	Name         string     `json:"name"`
	AvatarURL    string     `json:"avatar_url,omitempty"`
	CourseID     string     `json:"course_id"`
	CourseTitle  string     `json:"course_title"`
	PurchaseDate *time.Time `json:"purchase_date,omitempty"`
}

// ChangePercent compares two periods. A zero previous period reads as 100%
// growth when anything happened and 0% otherwise.
func ChangePercent(current, previous float64) float64 {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return math.Round((current-previous)/previous*1000) / 10
}

func (s *DashboardService) Dashboard(ctx context.Context, actor Actor) (*Dashboard, error) {
	if actor.Role != entity.RoleEducator {
		return nil, ErrEducatorOnly
	}
	courses, err := s.Courses.ListByEducator(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	purchases, err := s.Purchases.ListByCourses(ctx, courseIDs(courses))
	if err != nil {
		return nil, err
	}

	now := s.Now()
	recentFrom := now.Add(-dashboardPeriod)
	prevFrom := now.Add(-2 * dashboardPeriod)

	d := &Dashboard{TotalCourses: len(courses), Courses: make([]CourseStat, 0, len(courses))}
	stats := make(map[string]*CourseStat, len(courses))
	students := map[string]struct{}{}
	for _, c := range courses {
		if c.IsPublished {
			d.PublishedCourses++
		}
		for _, id := range c.EnrolledStudents {
			students[id] = struct{}{}
		}
		d.Courses = append(d.Courses, CourseStat{
			CourseID:      c.ID,
			Title:         c.Title,
			IsPublished:   c.IsPublished,
			Students:      len(c.EnrolledStudents),
			AverageRating: c.AverageRating(),
		})
	}
	for i := range d.Courses {
		stats[d.Courses[i].CourseID] = &d.Courses[i]
	}
	d.TotalStudents = len(students)

	for _, p := range purchases {
		d.TotalEarnings += p.Amount
		if st, ok := stats[p.CourseID]; ok {
			st.Earnings = roundCents(st.Earnings + p.Amount)
		}
		switch {
		case !p.CreatedAt.Before(recentFrom):
			d.EarningsLast30 += p.Amount
			d.EnrollmentsLast30++
		case !p.CreatedAt.Before(prevFrom):
			d.EarningsPrev30 += p.Amount
			d.EnrollmentsPrev30++
		}
	}
	d.TotalEarnings = roundCents(d.TotalEarnings)
	d.EarningsLast30 = roundCents(d.EarningsLast30)
	d.EarningsPrev30 = roundCents(d.EarningsPrev30)
	d.EarningsChange = ChangePercent(d.EarningsLast30, d.EarningsPrev30)
	d.EnrollmentsChange = ChangePercent(float64(d.EnrollmentsLast30), float64(d.EnrollmentsPrev30))
	return d, nil
}

// Students lists every enrolled student per course, newest purchase first.
func (s *DashboardService) Students(ctx context.Context, actor Actor) ([]StudentEnrollment, error) {
	if actor.Role != entity.RoleEducator {
		return nil, ErrEducatorOnly
	}
	courses, err := s.Courses.ListByEducator(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	purchases, err := s.Purchases.ListByCourses(ctx, courseIDs(courses))
	if err != nil {
		return nil, err
	}
	bought := map[string]time.Time{}
	for _, p := range purchases {
		bought[p.UserID+"/"+p.CourseID] = p.CreatedAt
	}

	var ids []string
	seen := map[string]bool{}
	for _, c := range courses {
		for _, id := range c.EnrolledStudents {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	users, err := s.Users.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*entity.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	out := []StudentEnrollment{}
	for _, c := range courses {
		for _, id := range c.EnrolledStudents {
			row := StudentEnrollment{StudentID: id, CourseID: c.ID, CourseTitle: c.Title}
			if u, ok := byID[id]; ok {
				row.Name = u.Name
				row.AvatarURL = u.AvatarURL
			}
			if at, ok := bought[id+"/"+c.ID]; ok {
				t := at
				row.PurchaseDate = &t
			}
			out = append(out, row)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].PurchaseDate, out[j].PurchaseDate
		if a == nil || b == nil {
			return a != nil
		}
		return a.After(*b)
	})
	return out, nil
}

func courseIDs(cs []*entity.Course) []string {
	ids := make([]string, 0, len(cs))
	for _, c := range cs {
		ids = append(ids, c.ID)
	}
	return ids
}

func roundCents(v float64) float64 { return math.Round(v*100) / 100 }
