package memory

import (
	"context"
	"slices"
	"sort"

	"github.com/oksasatya/go-ddd-lms/internal/domain/entity"
	"github.com/oksasatya/go-ddd-lms/internal/domain/repository"
)

type PurchaseRepository struct{ s *Store }

func (r *PurchaseRepository) Create(_ context.Context, p *entity.Purchase) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p.ID = newID()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now()
	}
	r.s.purchases = append(r.s.purchases, *p)
	return nil
}

func (r *PurchaseRepository) GetByUserAndCourse(_ context.Context, userID, courseID string) (*entity.Purchase, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, p := range r.s.purchases {
		if p.UserID == userID && p.CourseID == courseID {
			c := p
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *PurchaseRepository) ListByUser(_ context.Context, userID string) ([]*entity.Purchase, error) {
	return r.filter(func(p entity.Purchase) bool { return p.UserID == userID }), nil
}

func (r *PurchaseRepository) ListByCourses(_ context.Context, courseIDs []string) ([]*entity.Purchase, error) {
	return r.filter(func(p entity.Purchase) bool { return slices.Contains(courseIDs, p.CourseID) }), nil
}

func (r *PurchaseRepository) filter(keep func(entity.Purchase) bool) []*entity.Purchase {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []*entity.Purchase{}
	for _, p := range r.s.purchases {
		if keep(p) {
			c := p
			out = append(out, &c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

var _ repository.PurchaseRepository = (*PurchaseRepository)(nil)

type ProgressRepository struct{ s *Store }

func progressKey(userID, courseID string) string { return userID + "/" + courseID }

func (r *ProgressRepository) Get(_ context.Context, userID, courseID string) (*entity.CourseProgress, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.progress[progressKey(userID, courseID)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneProgress(p), nil
}

func (r *ProgressRepository) Save(_ context.Context, p *entity.CourseProgress) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := progressKey(p.UserID, p.CourseID)
	if cur, ok := r.s.progress[key]; ok {
		p.ID = cur.ID
		p.CreatedAt = cur.CreatedAt
	} else {
		p.ID = newID()
		p.CreatedAt = now()
	}
	p.UpdatedAt = now()
	r.s.progress[key] = *cloneProgress(*p)
	return nil
}

func (r *ProgressRepository) ListByUser(_ context.Context, userID string) ([]*entity.CourseProgress, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []*entity.CourseProgress{}
	for _, p := range r.s.progress {
		if p.UserID == userID {
			out = append(out, cloneProgress(p))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

var _ repository.ProgressRepository = (*ProgressRepository)(nil)
