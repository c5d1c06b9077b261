package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-lms/internal/domain/entity"
	"github.com/oksasatya/go-ddd-lms/internal/domain/repository"
	"github.com/oksasatya/go-ddd-lms/pkg/apperr"
	"github.com/oksasatya/go-ddd-lms/pkg/helpers"
)

var (
	ErrInvalidPrice    = apperr.Validation("invalid_price", "price must not be negative")
	ErrInvalidDiscount = apperr.Validation("invalid_discount", "discount must be between 0 and 100")
	ErrInvalidRating   = apperr.Validation("invalid_rating", "rating must be between 1 and 5")
	ErrTitleRequired   = apperr.Validation("title_required", "title is required")
)

// Actor is the authenticated caller as seen by services.
type Actor struct {
	ID   string
	Role entity.Role
}

// CatalogService owns courses, chapters and lectures.
type CatalogService struct {
	Courses  repository.CourseRepository
	Chapters repository.ChapterRepository
	Lectures repository.LectureRepository
	Users    repository.UserRepository
	Media    MediaStore
	Index    CourseIndexer
	Logger   *logrus.Logger

	UploadTimeout time.Duration
	MaxImageBytes int64
	MaxVideoBytes int64
	Now           func() time.Time
}

func NewCatalogService(courses repository.CourseRepository, chapters repository.ChapterRepository,
	lectures repository.LectureRepository, users repository.UserRepository, media MediaStore,
	index CourseIndexer, logger *logrus.Logger) *CatalogService {
	return &CatalogService{
		Courses:       courses,
		Chapters:      chapters,
		Lectures:      lectures,
		Users:         users,
		Media:         media,
		Index:         index,
		Logger:        logger,
		UploadTimeout: 10 * time.Minute,
		MaxImageBytes: 5 << 20,
		MaxVideoBytes: 500 << 20,
		Now:           time.Now,
	}
}

type CourseInput struct {
	Title       string
	Description string
	Category    string
	Price       float64
	Discount    float64
}

// CourseUpdate changes only the non-nil fields.
type CourseUpdate struct {
	Title       *string
	Description *string
	Category    *string
	Price       *float64
	Discount    *float64
}

func validatePricing(price, discount float64) error {
	if price < 0 {
		return ErrInvalidPrice
	}
	if discount < 0 || discount > 100 {
		return ErrInvalidDiscount
	}
	return nil
}

func (s *CatalogService) CreateCourse(ctx context.Context, actor Actor, in CourseInput) (*entity.Course, error) {
	if actor.Role != entity.RoleEducator {
		return nil, ErrEducatorOnly
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, ErrTitleRequired
	}
	if err := validatePricing(in.Price, in.Discount); err != nil {
		return nil, err
	}
	c := &entity.Course{
		EducatorID:  actor.ID,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Category:    strings.TrimSpace(in.Category),
		Price:       in.Price,
		Discount:    in.Discount,
	}
	if err := s.Courses.Create(ctx, c); err != nil {
		return nil, err
	}
	helpers.LogInfo(s.Logger, "course created", logrus.Fields{"course_id": c.ID, "educator_id": actor.ID})
	return c, nil
}

func (s *CatalogService) UpdateCourse(ctx context.Context, callerID, courseID string, in CourseUpdate) (*entity.Course, error) {
	c, err := s.authorizeOwner(ctx, ResourceCourse, courseID, callerID)
	if err != nil {
		return nil, err
	}
	if in.Title != nil {
		if strings.TrimSpace(*in.Title) == "" {
			return nil, ErrTitleRequired
		}
		c.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		c.Description = *in.Description
	}
	if in.Category != nil {
		c.Category = strings.TrimSpace(*in.Category)
	}
	if in.Price != nil {
		c.Price = *in.Price
	}
	if in.Discount != nil {
		c.Discount = *in.Discount
	}
	if err := validatePricing(c.Price, c.Discount); err != nil {
		return nil, err
	}
	if err := s.Courses.Update(ctx, c); err != nil {
		return nil, err
	}
	s.syncIndex(ctx, c)
	return c, nil
}

// DeleteCourse removes the course and all of its chapters and lectures.
func (s *CatalogService) DeleteCourse(ctx context.Context, callerID, courseID string) error {
	if _, err := s.authorizeOwner(ctx, ResourceCourse, courseID, callerID); err != nil {
		return err
	}
	if err := s.Courses.Delete(ctx, courseID); err != nil {
		return notFound(err, ErrCourseNotFound)
	}
	s.unindex(ctx, courseID)
	helpers.LogInfo(s.Logger, "course deleted", logrus.Fields{"course_id": courseID})
	return nil
}

// TogglePublish flips the publish flag.
func (s *CatalogService) TogglePublish(ctx context.Context, callerID, courseID string) (*entity.Course, error) {
	c, err := s.authorizeOwner(ctx, ResourceCourse, courseID, callerID)
	if err != nil {
		return nil, err
	}
	c.IsPublished = !c.IsPublished
	if err := s.Courses.Update(ctx, c); err != nil {
		return nil, err
	}
	s.syncIndex(ctx, c)
	return c, nil
}

// GetCourse returns a published course, or an unpublished one to its owner.
// Video URLs are withheld unless the viewer owns or is enrolled in the
// course, or the lecture is a free preview.
func (s *CatalogService) GetCourse(ctx context.Context, viewerID, courseID string) (*CourseDetail, error) {
	c, err := s.Courses.GetByID(ctx, courseID)
	if err != nil {
		return nil, notFound(err, ErrCourseNotFound)
	}
	owner := c.OwnedBy(viewerID)
	if !c.IsPublished && !owner {
		return nil, ErrCourseNotFound
	}
	enrolled := enrolledIn(ctx, s.Users, c, viewerID)

	chapters, err := s.Chapters.ListByCourse(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	lectures, err := s.Lectures.ListByCourse(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	byChapter := map[string][]*entity.Lecture{}
	total, duration := 0, 0
	for _, l := range lectures {
		if !owner && !enrolled && !l.IsPreviewFree {
			l.VideoURL = ""
		}
		byChapter[l.ChapterID] = append(byChapter[l.ChapterID], l)
		total++
		duration += l.Duration
	}

	d := &CourseDetail{
		CourseView:    NewCourseView(c),
		Chapters:      make([]ChapterView, 0, len(chapters)),
		TotalLectures: total,
		TotalDuration: duration,
		IsOwner:       owner,
		IsEnrolled:    enrolled,
	}
	for _, ch := range chapters {
		ls := byChapter[ch.ID]
		if ls == nil {
			ls = []*entity.Lecture{}
		}
		d.Chapters = append(d.Chapters, ChapterView{Chapter: ch, Lectures: ls})
	}
	for i := range c.Ratings {
		if c.Ratings[i].UserID == viewerID {
			r := c.Ratings[i]
			d.MyRating = &r
		}
	}
	if edu, err := s.Users.GetByID(ctx, c.EducatorID); err == nil {
		d.EducatorName = edu.Name
	}
	return d, nil
}

func (s *CatalogService) ListPublished(ctx context.Context, f repository.CourseFilter) ([]CourseView, int, error) {
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	cs, total, err := s.Courses.ListPublished(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	return courseViews(cs), total, nil
}

// ListMine lists every course of the educator, published or not.
func (s *CatalogService) ListMine(ctx context.Context, actor Actor) ([]CourseView, error) {
	if actor.Role != entity.RoleEducator {
		return nil, ErrEducatorOnly
	}
	cs, err := s.Courses.ListByEducator(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	return courseViews(cs), nil
}

// Search queries the course index and falls back to a database scan when
// the index is unavailable.
func (s *CatalogService) Search(ctx context.Context, query string, limit int) ([]CourseView, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	query = strings.TrimSpace(query)
	if query == "" {
		views, _, err := s.ListPublished(ctx, repository.CourseFilter{Limit: limit})
		return views, err
	}
	if s.Index != nil {
		views, err := s.searchIndex(ctx, query, limit)
		if err == nil {
			return views, nil
		}
		helpers.LogError(s.Logger, "course search via index failed", err, logrus.Fields{"q": query})
	}
	views, _, err := s.ListPublished(ctx, repository.CourseFilter{Query: query, Limit: limit})
	return views, err
}

func (s *CatalogService) searchIndex(ctx context.Context, query string, limit int) ([]CourseView, error) {
	ids, err := s.Index.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	cs, err := s.Courses.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	return orderedPublished(cs, ids), nil
}

func orderedPublished(cs []*entity.Course, ids []string) []CourseView {
	byID := make(map[string]*entity.Course, len(cs))
	for _, c := range cs {
		byID[c.ID] = c
	}
	out := make([]CourseView, 0, len(ids))
	for _, id := range ids {
		if c, ok := byID[id]; ok && c.IsPublished {
			out = append(out, NewCourseView(c))
		}
	}
	return out
}

// RateCourse stores one rating per user and course and returns the new average.
func (s *CatalogService) RateCourse(ctx context.Context, userID, courseID string, rating int, review string) (float64, error) {
	if rating < 1 || rating > 5 {
		return 0, ErrInvalidRating
	}
	c, err := s.Courses.GetByID(ctx, courseID)
	if err != nil {
		return 0, notFound(err, ErrCourseNotFound)
	}
	if !enrolledIn(ctx, s.Users, c, userID) {
		return 0, ErrNotEnrolled
	}
	r := entity.Rating{UserID: userID, Rating: rating, Review: strings.TrimSpace(review), UpdatedAt: s.Now().UTC()}
	if err := s.Courses.UpsertRating(ctx, c.ID, r); err != nil {
		return 0, err
	}
	c.SetRating(r)
	s.syncIndex(ctx, c)
	return c.AverageRating(), nil
}

func (s *CatalogService) syncIndex(ctx context.Context, c *entity.Course) {
	if s.Index == nil {
		return
	}
	if !c.IsPublished {
		s.unindex(ctx, c.ID)
		return
	}
	if err := s.Index.Index(ctx, c); err != nil {
		helpers.LogError(s.Logger, "index course failed", err, logrus.Fields{"course_id": c.ID})
	}
}

func (s *CatalogService) unindex(ctx context.Context, courseID string) {
	if s.Index == nil {
		return
	}
	if err := s.Index.Remove(ctx, courseID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		helpers.LogError(s.Logger, "remove course from index failed", err, logrus.Fields{"course_id": courseID})
	}
}
