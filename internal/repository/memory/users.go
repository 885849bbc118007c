package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/homecook/homecook-backend/internal/models"
	repo "github.com/homecook/homecook-backend/internal/repository"
)

type UsersRepo struct {
	mu    sync.RWMutex
	users map[string]models.User
}

func NewUsersRepo() *UsersRepo {
	return &UsersRepo{users: make(map[string]models.User)}
}

func (r *UsersRepo) Create(_ context.Context, username, email, passwordHash, role string) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	u := models.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.users[u.ID] = u
	return u, nil
}

func (r *UsersRepo) GetByID(_ context.Context, id string) (models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return models.User{}, repo.ErrNotFound
	}
	return u, nil
}

func (r *UsersRepo) GetByEmail(_ context.Context, email string) (models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, repo.ErrNotFound
}

func (r *UsersRepo) List(_ context.Context) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	return out, nil
}

func (r *UsersRepo) UpdateRating(_ context.Context, id string, rating float64, count int) error {
	return r.mutate(id, func(u *models.User) {
		u.Rating = rating
		u.RatingCount = count
	})
}

func (r *UsersRepo) IncrementReviewCount(_ context.Context, id string) error {
	return r.mutate(id, func(u *models.User) { u.ReviewCount++ })
}

func (r *UsersRepo) mutate(id string, fn func(*models.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repo.ErrNotFound
	}
	fn(&u)
	u.UpdatedAt = time.Now()
	r.users[id] = u
	return nil
}
