package memory

import (
	"context"
	"slices"
	"sort"
	"strings"

	"github.com/oksasatya/go-ddd-lms/internal/domain/entity"
	"github.com/oksasatya/go-ddd-lms/internal/domain/repository"
)

type UserRepository struct{ s *Store }

func (r *UserRepository) Create(_ context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return repository.ErrDuplicate
		}
	}
	u.ID = newID()
	u.CreatedAt = now()
	u.UpdatedAt = u.CreatedAt
	r.s.users[u.ID] = *cloneUser(*u)
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneUser(u), nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			return cloneUser(u), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *UserRepository) GetByResetTokenHash(_ context.Context, hash string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if hash == "" {
		return nil, repository.ErrNotFound
	}
	for _, u := range r.s.users {
		if u.ResetTokenHash == hash {
			return cloneUser(u), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *UserRepository) Update(_ context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.users[u.ID]
	if !ok {
		return repository.ErrNotFound
	}
	u.UpdatedAt = now()
	next := *cloneUser(*u)
	next.EnrolledCourses = cur.EnrolledCourses
	next.CreatedAt = cur.CreatedAt
	r.s.users[u.ID] = next
	return nil
}

func (r *UserRepository) AddEnrolledCourse(_ context.Context, userID, courseID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[userID]
	if !ok {
		return false, repository.ErrNotFound
	}
	if slices.Contains(u.EnrolledCourses, courseID) {
		return false, nil
	}
	u.EnrolledCourses = append(slices.Clone(u.EnrolledCourses), courseID)
	u.UpdatedAt = now()
	r.s.users[userID] = u
	return true, nil
}

func (r *UserRepository) ListByIDs(_ context.Context, ids []string) ([]*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []*entity.User{}
	for _, id := range ids {
		if u, ok := r.s.users[id]; ok {
			out = append(out, cloneUser(u))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
