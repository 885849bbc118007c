package services

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/homecook/homecook-backend/internal/models"
	repo "github.com/homecook/homecook-backend/internal/repository"
)

const (
	mealListKey  = "meals:list"
	mealKeyPref  = "meals:id:"
	mealCacheTTL = 30 * time.Second
)

// MealService owns the meal catalog. The read path goes through Redis when a
// client is configured; writes invalidate. Inventory mutation belongs to the
// reservation service and is not exposed over HTTP.
type MealService struct {
	meals repo.Meals
	rdb   *redis.Client // nil disables caching
}

func NewMealService(m repo.Meals, rdb *redis.Client) *MealService {
	return &MealService{meals: m, rdb: rdb}
}

func (s *MealService) Create(ctx context.Context, m models.Meal) (models.Meal, error) {
	if err := m.Validate(); err != nil {
		return models.Meal{}, err
	}
	created, err := s.meals.Create(ctx, m)
	if err != nil {
		return models.Meal{}, err
	}
	s.invalidate(ctx, created.ID)
	return created, nil
}

// Update lets a cook edit their own meal. Price changes do not touch existing
// reservations; their totals were frozen at creation.
func (s *MealService) Update(ctx context.Context, cookID string, m models.Meal) (models.Meal, error) {
	cur, err := s.GetByID(ctx, m.ID)
	if err != nil {
		return models.Meal{}, err
	}
	if cur.CookID != cookID {
		return models.Meal{}, ErrNotAllowed
	}
	if err := m.Validate(); err != nil {
		return models.Meal{}, err
	}
	updated, err := s.meals.Update(ctx, m)
	if errors.Is(err, repo.ErrNotFound) {
		return models.Meal{}, ErrMealNotFound
	}
	if err != nil {
		return models.Meal{}, err
	}
	s.invalidate(ctx, m.ID)
	return updated, nil
}

func (s *MealService) GetByID(ctx context.Context, id string) (models.Meal, error) {
	key := mealKeyPref + id
	if s.rdb != nil {
		if raw, err := s.rdb.Get(ctx, key).Bytes(); err == nil {
			var m models.Meal
			if json.Unmarshal(raw, &m) == nil {
				return m, nil
			}
		}
	}
	m, err := s.meals.GetByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return models.Meal{}, ErrMealNotFound
	}
	if err != nil {
		return models.Meal{}, err
	}
	s.store(ctx, key, m)
	return m, nil
}

func (s *MealService) List(ctx context.Context) ([]models.Meal, error) {
	if s.rdb != nil {
		if raw, err := s.rdb.Get(ctx, mealListKey).Bytes(); err == nil {
			var out []models.Meal
			if json.Unmarshal(raw, &out) == nil {
				return out, nil
			}
		}
	}
	out, err := s.meals.List(ctx)
	if err != nil {
		return nil, err
	}
	s.store(ctx, mealListKey, out)
	return out, nil
}

func (s *MealService) ListByCook(ctx context.Context, cookID string) ([]models.Meal, error) {
	return s.meals.ListByCook(ctx, cookID)
}

func (s *MealService) store(ctx context.Context, key string, v any) {
	if s.rdb == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, key, raw, mealCacheTTL).Err(); err != nil {
		slog.Debug("meal cache set", "key", key, "err", err)
	}
}

func (s *MealService) invalidate(ctx context.Context, id string) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, mealListKey, mealKeyPref+id).Err(); err != nil {
		slog.Debug("meal cache invalidate", "id", id, "err", err)
	}
}
