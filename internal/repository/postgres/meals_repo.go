package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/homecook/homecook-backend/internal/models"
	repo "github.com/homecook/homecook-backend/internal/repository"
)

type mealsRepo struct{ pool *pgxpool.Pool }

const mealCols = `id, cook_id, title, description, price_cents, available_quantity, rating, rating_count, created_at, updated_at`

func scanMeal(row pgx.Row) (models.Meal, error) {
	var m models.Meal
	err := row.Scan(&m.ID, &m.CookID, &m.Title, &m.Description, &m.PriceCents,
		&m.AvailableQuantity, &m.Rating, &m.RatingCount, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Meal{}, repo.ErrNotFound
	}
	return m, err
}

func (r *mealsRepo) Create(ctx context.Context, m models.Meal) (models.Meal, error) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return scanMeal(r.pool.QueryRow(ctx,
		`INSERT INTO meals (id, cook_id, title, description, price_cents, available_quantity)
		 VALUES ($1,$2,$3,$4,$5,$6)
		 RETURNING `+mealCols,
		m.ID, m.CookID, m.Title, m.Description, m.PriceCents, m.AvailableQuantity,
	))
}

func (r *mealsRepo) GetByID(ctx context.Context, id string) (models.Meal, error) {
	return scanMeal(r.pool.QueryRow(ctx, `SELECT `+mealCols+` FROM meals WHERE id=$1`, id))
}

func (r *mealsRepo) List(ctx context.Context) ([]models.Meal, error) {
	return r.query(ctx, `SELECT `+mealCols+` FROM meals ORDER BY created_at DESC`)
}

func (r *mealsRepo) ListByCook(ctx context.Context, cookID string) ([]models.Meal, error) {
	return r.query(ctx, `SELECT `+mealCols+` FROM meals WHERE cook_id=$1 ORDER BY created_at DESC`, cookID)
}

func (r *mealsRepo) Update(ctx context.Context, m models.Meal) (models.Meal, error) {
	return scanMeal(r.pool.QueryRow(ctx,
		`UPDATE meals
		    SET title=$2, description=$3, price_cents=$4, available_quantity=$5, updated_at=now()
		  WHERE id=$1
		  RETURNING `+mealCols,
		m.ID, m.Title, m.Description, m.PriceCents, m.AvailableQuantity,
	))
}

func (r *mealsRepo) AdjustQuantity(ctx context.Context, id string, delta int) (models.Meal, error) {
	m, err := scanMeal(r.pool.QueryRow(ctx,
		`UPDATE meals
		    SET available_quantity = available_quantity + $2, updated_at=now()
		  WHERE id=$1 AND available_quantity + $2 >= 0
		  RETURNING `+mealCols,
		id, delta,
	))
	if errors.Is(err, repo.ErrNotFound) {
		if _, gerr := r.GetByID(ctx, id); gerr != nil {
			return models.Meal{}, gerr
		}
		return models.Meal{}, repo.ErrConflict
	}
	return m, err
}

func (r *mealsRepo) UpdateRating(ctx context.Context, id string, rating float64, count int) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE meals SET rating=$2, rating_count=$3, updated_at=now() WHERE id=$1`,
		id, rating, count,
	)
	return err
}

func (r *mealsRepo) query(ctx context.Context, q string, args ...any) ([]models.Meal, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Meal
	for rows.Next() {
		m, err := scanMeal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
