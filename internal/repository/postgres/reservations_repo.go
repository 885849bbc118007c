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

type reservationsRepo struct{ pool *pgxpool.Pool }

const reservationCols = `id, meal_id, customer_id, cook_id, quantity, total_cents, pickup_time, status, payment_id, payment_status, rating, created_at, updated_at`

func scanReservation(row pgx.Row) (models.Reservation, error) {
	var rv models.Reservation
	err := row.Scan(&rv.ID, &rv.MealID, &rv.CustomerID, &rv.CookID, &rv.Quantity,
		&rv.TotalCents, &rv.PickupTime, &rv.Status, &rv.PaymentID, &rv.PaymentStatus,
		&rv.Rating, &rv.CreatedAt, &rv.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Reservation{}, repo.ErrNotFound
	}
	return rv, err
}

func (r *reservationsRepo) Create(ctx context.Context, rv models.Reservation) (models.Reservation, error) {
	if rv.ID == "" {
		rv.ID = uuid.NewString()
	}
	return scanReservation(r.pool.QueryRow(ctx,
		`INSERT INTO reservations (id, meal_id, customer_id, cook_id, quantity, total_cents, pickup_time, status, payment_status)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		 RETURNING `+reservationCols,
		rv.ID, rv.MealID, rv.CustomerID, rv.CookID, rv.Quantity, rv.TotalCents,
		rv.PickupTime, rv.Status, rv.PaymentStatus,
	))
}

func (r *reservationsRepo) GetByID(ctx context.Context, id string) (models.Reservation, error) {
	return scanReservation(r.pool.QueryRow(ctx,
		`SELECT `+reservationCols+` FROM reservations WHERE id=$1`, id))
}

func (r *reservationsRepo) list(ctx context.Context, col, id string) ([]models.Reservation, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+reservationCols+` FROM reservations WHERE `+col+`=$1 ORDER BY created_at DESC`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Reservation
	for rows.Next() {
		rv, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}

func (r *reservationsRepo) ListByCustomer(ctx context.Context, customerID string) ([]models.Reservation, error) {
	return r.list(ctx, "customer_id", customerID)
}

func (r *reservationsRepo) ListByCook(ctx context.Context, cookID string) ([]models.Reservation, error) {
	return r.list(ctx, "cook_id", cookID)
}

func (r *reservationsRepo) UpdateStatus(ctx context.Context, id string, status models.ReservationStatus) error {
	return r.exec(ctx, `UPDATE reservations SET status=$2, updated_at=now() WHERE id=$1`, id, status)
}

func (r *reservationsRepo) SetPayment(ctx context.Context, id, paymentID string, ps models.PaymentStatus) error {
	return r.exec(ctx, `UPDATE reservations SET payment_id=$2, payment_status=$3, updated_at=now() WHERE id=$1`, id, paymentID, ps)
}

func (r *reservationsRepo) SetPaymentStatus(ctx context.Context, id string, ps models.PaymentStatus) error {
	return r.exec(ctx, `UPDATE reservations SET payment_status=$2, updated_at=now() WHERE id=$1`, id, ps)
}

// SetRating writes the rating once: a second write finds rating non-null and
// affects no rows.
func (r *reservationsRepo) SetRating(ctx context.Context, id string, rating int) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE reservations SET rating=$2, updated_at=now() WHERE id=$1 AND rating IS NULL`,
		id, rating,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		if _, gerr := r.GetByID(ctx, id); gerr != nil {
			return gerr
		}
		return repo.ErrConflict
	}
	return nil
}

func (r *reservationsRepo) exec(ctx context.Context, q string, args ...any) error {
	tag, err := r.pool.Exec(ctx, q, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}
