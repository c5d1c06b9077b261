package application

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/oksasatya/go-ddd-lms/internal/domain/entity"
	"github.com/oksasatya/go-ddd-lms/internal/domain/repository"
	"github.com/oksasatya/go-ddd-lms/pkg/apperr"
)

var (
	ErrLectureRefRequired = apperr.Validation("lecture_required", "lecture_id or chapter_index and lecture_index are required")
	ErrLectureNotInCourse = apperr.Validation("lecture_not_in_course", "lecture does not belong to this course")
	ErrInvalidPosition    = apperr.Validation("invalid_position", "indexes must not be negative")
)

// ProgressService tracks per-user completion of a course.
type ProgressService struct {
	Users    repository.UserRepository
	Courses  repository.CourseRepository
	Chapters repository.ChapterRepository
	Lectures repository.LectureRepository
	Progress repository.ProgressRepository
	Now      func() time.Time
}

func NewProgressService(users repository.UserRepository, courses repository.CourseRepository, chapters repository.ChapterRepository,
	lectures repository.LectureRepository, progress repository.ProgressRepository) *ProgressService {
	return &ProgressService{Users: users, Courses: courses, Chapters: chapters, Lectures: lectures, Progress: progress, Now: time.Now}
}

// LectureRef identifies a lecture by id or, for older clients, by its
// chapter and lecture index.
type LectureRef struct {
	LectureID    string
	ChapterIndex *int
	LectureIndex *int
}

// RecordLectureCompletion appends a completion event unless the lecture was
// already completed, then recomputes the percentage. Index pairs are resolved
// against the current outline so both reference forms name a real lecture.
func (s *ProgressService) RecordLectureCompletion(ctx context.Context, userID, courseID string, ref LectureRef) (*entity.CourseProgress, error) {
	if ref.LectureID == "" && (ref.ChapterIndex == nil || ref.LectureIndex == nil) {
		return nil, ErrLectureRefRequired
	}
	c, err := s.requireEnrollment(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}
	outline, total, err := s.outline(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	ev, err := s.resolve(ctx, c.ID, outline, ref)
	if err != nil {
		return nil, err
	}
	ev.CompletedAt = s.Now().UTC()

	p, err := s.load(ctx, userID, c.ID)
	if err != nil {
		return nil, err
	}
	p.Complete(ev, total)
	if err := s.Progress.Save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// outline groups the course lectures by chapter, both in display order.
func (s *ProgressService) outline(ctx context.Context, courseID string) ([][]*entity.Lecture, int, error) {
	chapters, err := s.Chapters.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, 0, err
	}
	lectures, err := s.Lectures.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, 0, err
	}
	byChapter := make(map[string][]*entity.Lecture, len(chapters))
	for _, l := range lectures {
		byChapter[l.ChapterID] = append(byChapter[l.ChapterID], l)
	}
	out := make([][]*entity.Lecture, 0, len(chapters))
	for _, ch := range chapters {
		ls := byChapter[ch.ID]
		sort.SliceStable(ls, func(i, j int) bool { return ls[i].Order < ls[j].Order })
		out = append(out, ls)
	}
	return out, len(lectures), nil
}

// resolve turns ref into an event carrying both the lecture id and its
// indexes. A lecture id wins over indexes when both are given.
func (s *ProgressService) resolve(ctx context.Context, courseID string, outline [][]*entity.Lecture, ref LectureRef) (entity.CompletedLecture, error) {
	if ref.LectureID != "" {
		for ci, ls := range outline {
			for li, l := range ls {
				if l.ID == ref.LectureID {
					return completedAt(l.ID, ci, li), nil
				}
			}
		}
		l, err := s.Lectures.GetByID(ctx, ref.LectureID)
		if err != nil {
			return entity.CompletedLecture{}, notFound(err, ErrLectureNotFound)
		}
		if l.CourseID != courseID {
			return entity.CompletedLecture{}, ErrLectureNotInCourse
		}
		return entity.CompletedLecture{}, ErrLectureNotFound
	}
	ci, li := *ref.ChapterIndex, *ref.LectureIndex
	if ci < 0 || ci >= len(outline) || li < 0 || li >= len(outline[ci]) {
		return entity.CompletedLecture{}, ErrLectureNotInCourse
	}
	return completedAt(outline[ci][li].ID, ci, li), nil
}

func completedAt(lectureID string, chapterIndex, lectureIndex int) entity.CompletedLecture {
	return entity.CompletedLecture{LectureID: lectureID, ChapterIndex: &chapterIndex, LectureIndex: &lectureIndex}
}

// SetLastPosition records where playback should resume.
func (s *ProgressService) SetLastPosition(ctx context.Context, userID, courseID string, pos entity.Position) (*entity.CourseProgress, error) {
	if pos.ChapterIndex < 0 || pos.LectureIndex < 0 {
		return nil, ErrInvalidPosition
	}
	c, err := s.requireEnrollment(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}
	p, err := s.load(ctx, userID, c.ID)
	if err != nil {
		return nil, err
	}
	p.LastPosition = &pos
	if err := s.Progress.Save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Get returns the stored progress or an empty record.
func (s *ProgressService) Get(ctx context.Context, userID, courseID string) (*entity.CourseProgress, error) {
	c, err := s.requireEnrollment(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}
	return s.load(ctx, userID, c.ID)
}

func (s *ProgressService) ListMine(ctx context.Context, userID string) ([]*entity.CourseProgress, error) {
	return s.Progress.ListByUser(ctx, userID)
}

func (s *ProgressService) requireEnrollment(ctx context.Context, userID, courseID string) (*entity.Course, error) {
	c, err := s.Courses.GetByID(ctx, courseID)
	if err != nil {
		return nil, notFound(err, ErrCourseNotFound)
	}
	if !enrolledIn(ctx, s.Users, c, userID) {
		return nil, ErrNotEnrolled
	}
	return c, nil
}

func (s *ProgressService) load(ctx context.Context, userID, courseID string) (*entity.CourseProgress, error) {
	p, err := s.Progress.Get(ctx, userID, courseID)
	if errors.Is(err, repository.ErrNotFound) {
		return entity.NewCourseProgress(userID, courseID), nil
	}
	return p, err
}
