package memory

import (
	"context"
	"slices"
	"sort"
	"strings"

	"github.com/oksasatya/go-ddd-lms/internal/domain/entity"
	"github.com/oksasatya/go-ddd-lms/internal/domain/repository"
)

type CourseRepository struct{ s *Store }

func (r *CourseRepository) Create(_ context.Context, c *entity.Course) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c.ID = newID()
	c.CreatedAt = now()
	c.UpdatedAt = c.CreatedAt
	r.s.courses[c.ID] = *cloneCourse(*c)
	return nil
}

func (r *CourseRepository) GetByID(_ context.Context, id string) (*entity.Course, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.courses[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneCourse(c), nil
}

// Update leaves ratings and enrolled students untouched.
func (r *CourseRepository) Update(_ context.Context, c *entity.Course) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.courses[c.ID]
	if !ok {
		return repository.ErrNotFound
	}
	c.UpdatedAt = now()
	next := *cloneCourse(*c)
	next.Ratings = cur.Ratings
	next.EnrolledStudents = cur.EnrolledStudents
	next.CreatedAt = cur.CreatedAt
	next.EducatorID = cur.EducatorID
	r.s.courses[c.ID] = next
	return nil
}

func (r *CourseRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.courses[id]; !ok {
		return repository.ErrNotFound
	}
	for lid, l := range r.s.lectures {
		if l.CourseID == id {
			delete(r.s.lectures, lid)
		}
	}
	for cid, ch := range r.s.chapters {
		if ch.CourseID == id {
			delete(r.s.chapters, cid)
		}
	}
	delete(r.s.courses, id)
	return nil
}

func (r *CourseRepository) ListPublished(_ context.Context, f repository.CourseFilter) ([]*entity.Course, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	q := strings.ToLower(strings.TrimSpace(f.Query))
	all := []*entity.Course{}
	for _, c := range r.s.courses {
		if !c.IsPublished {
			continue
		}
		if f.Category != "" && !strings.EqualFold(c.Category, f.Category) {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(c.Title), q) && !strings.Contains(strings.ToLower(c.Description), q) {
			continue
		}
		all = append(all, cloneCourse(c))
	}
	sortCoursesNewest(all)
	total := len(all)

	limit := f.Limit
	if limit <= 0 {
		limit = 20
	}
	start := min(f.Offset, total)
	end := min(start+limit, total)
	return all[start:end], total, nil
}

func (r *CourseRepository) ListByEducator(_ context.Context, educatorID string) ([]*entity.Course, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []*entity.Course{}
	for _, c := range r.s.courses {
		if c.EducatorID == educatorID {
			out = append(out, cloneCourse(c))
		}
	}
	sortCoursesNewest(out)
	return out, nil
}

func (r *CourseRepository) ListByIDs(_ context.Context, ids []string) ([]*entity.Course, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []*entity.Course{}
	for _, id := range ids {
		if c, ok := r.s.courses[id]; ok {
			out = append(out, cloneCourse(c))
		}
	}
	sortCoursesNewest(out)
	return out, nil
}

func (r *CourseRepository) AddStudent(_ context.Context, courseID, userID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.courses[courseID]
	if !ok {
		return false, repository.ErrNotFound
	}
	if slices.Contains(c.EnrolledStudents, userID) {
		return false, nil
	}
	c.EnrolledStudents = append(slices.Clone(c.EnrolledStudents), userID)
	r.s.courses[courseID] = c
	return true, nil
}

func (r *CourseRepository) UpsertRating(_ context.Context, courseID string, rt entity.Rating) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.courses[courseID]
	if !ok {
		return repository.ErrNotFound
	}
	c.Ratings = slices.Clone(c.Ratings)
	c.SetRating(rt)
	r.s.courses[courseID] = c
	return nil
}

var _ repository.CourseRepository = (*CourseRepository)(nil)

type ChapterRepository struct{ s *Store }

func (r *ChapterRepository) Create(_ context.Context, ch *entity.Chapter) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.courses[ch.CourseID]; !ok {
		return repository.ErrNotFound
	}
	ch.ID = newID()
	ch.CreatedAt = now()
	ch.UpdatedAt = ch.CreatedAt
	r.s.chapters[ch.ID] = *ch
	return nil
}

func (r *ChapterRepository) GetByID(_ context.Context, id string) (*entity.Chapter, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	ch, ok := r.s.chapters[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &ch, nil
}

func (r *ChapterRepository) Update(_ context.Context, ch *entity.Chapter) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.chapters[ch.ID]; !ok {
		return repository.ErrNotFound
	}
	ch.UpdatedAt = now()
	r.s.chapters[ch.ID] = *ch
	return nil
}

func (r *ChapterRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.chapters[id]; !ok {
		return repository.ErrNotFound
	}
	for lid, l := range r.s.lectures {
		if l.ChapterID == id {
			delete(r.s.lectures, lid)
		}
	}
	delete(r.s.chapters, id)
	return nil
}

func (r *ChapterRepository) ListByCourse(_ context.Context, courseID string) ([]*entity.Chapter, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []*entity.Chapter{}
	for _, ch := range r.s.chapters {
		if ch.CourseID == courseID {
			c := ch
			out = append(out, &c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *ChapterRepository) NextPosition(_ context.Context, courseID string) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	next := 1
	for _, ch := range r.s.chapters {
		if ch.CourseID == courseID && ch.Position >= next {
			next = ch.Position + 1
		}
	}
	return next, nil
}

var _ repository.ChapterRepository = (*ChapterRepository)(nil)

type LectureRepository struct{ s *Store }

func (r *LectureRepository) Create(_ context.Context, l *entity.Lecture) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.chapters[l.ChapterID]; !ok {
		return repository.ErrNotFound
	}
	for _, other := range r.s.lectures {
		if other.ChapterID == l.ChapterID && other.Order == l.Order {
			return repository.ErrDuplicate
		}
	}
	l.ID = newID()
	l.CreatedAt = now()
	l.UpdatedAt = l.CreatedAt
	r.s.lectures[l.ID] = *l
	return nil
}

func (r *LectureRepository) GetByID(_ context.Context, id string) (*entity.Lecture, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	l, ok := r.s.lectures[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &l, nil
}

func (r *LectureRepository) Update(_ context.Context, l *entity.Lecture) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.lectures[l.ID]; !ok {
		return repository.ErrNotFound
	}
	for id, other := range r.s.lectures {
		if id != l.ID && other.ChapterID == l.ChapterID && other.Order == l.Order {
			return repository.ErrDuplicate
		}
	}
	l.UpdatedAt = now()
	r.s.lectures[l.ID] = *l
	return nil
}

func (r *LectureRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.lectures[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.lectures, id)
	return nil
}

func (r *LectureRepository) ListByChapter(_ context.Context, chapterID string) ([]*entity.Lecture, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []*entity.Lecture{}
	for _, l := range r.s.lectures {
		if l.ChapterID == chapterID {
			c := l
			out = append(out, &c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (r *LectureRepository) ListByCourse(_ context.Context, courseID string) ([]*entity.Lecture, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []*entity.Lecture{}
	for _, l := range r.s.lectures {
		if l.CourseID == courseID {
			c := l
			out = append(out, &c)
		}
	}
	pos := func(chapterID string) int { return r.s.chapters[chapterID].Position }
	sort.SliceStable(out, func(i, j int) bool {
		pi, pj := pos(out[i].ChapterID), pos(out[j].ChapterID)
		if pi != pj {
			return pi < pj
		}
		return out[i].Order < out[j].Order
	})
	return out, nil
}

func (r *LectureRepository) CountByCourse(_ context.Context, courseID string) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	n := 0
	for _, l := range r.s.lectures {
		if l.CourseID == courseID {
			n++
		}
	}
	return n, nil
}

func (r *LectureRepository) OrderTaken(_ context.Context, chapterID string, order int, excludeID string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for id, l := range r.s.lectures {
		if id != excludeID && l.ChapterID == chapterID && l.Order == order {
			return true, nil
		}
	}
	return false, nil
}

var _ repository.LectureRepository = (*LectureRepository)(nil)
