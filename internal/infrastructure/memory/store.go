// Package memory keeps every repository in process memory. It backs
// STORAGE_DRIVER=memory for local runs and the service tests.
package memory

import (
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/go-ddd-lms/internal/domain/entity"
)

// Store owns the shared tables. Values are copied on the way in and out so
// callers never alias stored rows.
type Store struct {
	mu        sync.RWMutex
	users     map[string]entity.User
	courses   map[string]entity.Course
	chapters  map[string]entity.Chapter
	lectures  map[string]entity.Lecture
	purchases []entity.Purchase
	progress  map[string]entity.CourseProgress
}

func NewStore() *Store {
	return &Store{
		users:    map[string]entity.User{},
		courses:  map[string]entity.Course{},
		chapters: map[string]entity.Chapter{},
		lectures: map[string]entity.Lecture{},
		progress: map[string]entity.CourseProgress{},
	}
}

func (s *Store) Users() *UserRepository         { return &UserRepository{s: s} }
func (s *Store) Courses() *CourseRepository     { return &CourseRepository{s: s} }
func (s *Store) Chapters() *ChapterRepository   { return &ChapterRepository{s: s} }
func (s *Store) Lectures() *LectureRepository   { return &LectureRepository{s: s} }
func (s *Store) Purchases() *PurchaseRepository { return &PurchaseRepository{s: s} }
func (s *Store) Progress() *ProgressRepository  { return &ProgressRepository{s: s} }

func newID() string { return uuid.NewString() }

func now() time.Time { return time.Now().UTC() }

func cloneUser(u entity.User) *entity.User {
	u.EnrolledCourses = slices.Clone(u.EnrolledCourses)
	if u.EnrolledCourses == nil {
		u.EnrolledCourses = []string{}
	}
	return &u
}

func cloneCourse(c entity.Course) *entity.Course {
	c.Ratings = slices.Clone(c.Ratings)
	if c.Ratings == nil {
		c.Ratings = []entity.Rating{}
	}
	c.EnrolledStudents = slices.Clone(c.EnrolledStudents)
	if c.EnrolledStudents == nil {
		c.EnrolledStudents = []string{}
	}
	return &c
}

func cloneProgress(p entity.CourseProgress) *entity.CourseProgress {
	p.CompletedLectures = slices.Clone(p.CompletedLectures)
	if p.CompletedLectures == nil {
		p.CompletedLectures = []entity.CompletedLecture{}
	}
	if p.LastPosition != nil {
		pos := *p.LastPosition
		p.LastPosition = &pos
	}
	return &p
}

func sortCoursesNewest(out []*entity.Course) {
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
}
