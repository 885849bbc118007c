package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/homecook/homecook-backend/internal/models"
	repo "github.com/homecook/homecook-backend/internal/repository"
)

type MealsRepo struct {
	mu    sync.RWMutex
	meals map[string]models.Meal
}

func NewMealsRepo() *MealsRepo {
	return &MealsRepo{meals: make(map[string]models.Meal)}
}

func (r *MealsRepo) Create(_ context.Context, m models.Meal) (models.Meal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	now := time.Now()
	m.CreatedAt, m.UpdatedAt = now, now
	r.meals[m.ID] = m
	return m, nil
}

func (r *MealsRepo) GetByID(_ context.Context, id string) (models.Meal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.meals[id]
	if !ok {
		return models.Meal{}, repo.ErrNotFound
	}
	return m, nil
}

func (r *MealsRepo) List(_ context.Context) ([]models.Meal, error) {
	return r.filter(func(models.Meal) bool { return true })
}

func (r *MealsRepo) ListByCook(_ context.Context, cookID string) ([]models.Meal, error) {
	return r.filter(func(m models.Meal) bool { return m.CookID == cookID })
}

func (r *MealsRepo) filter(match func(models.Meal) bool) ([]models.Meal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []models.Meal
	for _, m := range r.meals {
		if match(m) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *MealsRepo) Update(_ context.Context, m models.Meal) (models.Meal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.meals[m.ID]
	if !ok {
		return models.Meal{}, repo.ErrNotFound
	}
	cur.Title = m.Title
	cur.Description = m.Description
	cur.PriceCents = m.PriceCents
	cur.AvailableQuantity = m.AvailableQuantity
	cur.UpdatedAt = time.Now()
	r.meals[m.ID] = cur
	return cur, nil
}

func (r *MealsRepo) AdjustQuantity(_ context.Context, id string, delta int) (models.Meal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.meals[id]
	if !ok {
		return models.Meal{}, repo.ErrNotFound
	}
	if m.AvailableQuantity+delta < 0 {
		return models.Meal{}, repo.ErrConflict
	}
	m.AvailableQuantity += delta
	m.UpdatedAt = time.Now()
	r.meals[id] = m
	return m, nil
}

func (r *MealsRepo) UpdateRating(_ context.Context, id string, rating float64, count int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.meals[id]
	if !ok {
		return repo.ErrNotFound
	}
	m.Rating = rating
	m.RatingCount = count
	m.UpdatedAt = time.Now()
	r.meals[id] = m
	return nil
}
