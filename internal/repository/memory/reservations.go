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

type ReservationsRepo struct {
	mu           sync.RWMutex
	reservations map[string]models.Reservation
}

func NewReservationsRepo() *ReservationsRepo {
	return &ReservationsRepo{reservations: make(map[string]models.Reservation)}
}

func (r *ReservationsRepo) Create(_ context.Context, rv models.Reservation) (models.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rv.ID == "" {
		rv.ID = uuid.NewString()
	}
	now := time.Now()
	rv.CreatedAt, rv.UpdatedAt = now, now
	r.reservations[rv.ID] = rv
	return rv, nil
}

func (r *ReservationsRepo) GetByID(_ context.Context, id string) (models.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rv, ok := r.reservations[id]
	if !ok {
		return models.Reservation{}, repo.ErrNotFound
	}
	return rv, nil
}

func (r *ReservationsRepo) ListByCustomer(_ context.Context, customerID string) ([]models.Reservation, error) {
	return r.list(func(rv models.Reservation) bool { return rv.CustomerID == customerID })
}

func (r *ReservationsRepo) ListByCook(_ context.Context, cookID string) ([]models.Reservation, error) {
	return r.list(func(rv models.Reservation) bool { return rv.CookID == cookID })
}

func (r *ReservationsRepo) list(match func(models.Reservation) bool) ([]models.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []models.Reservation
	for _, rv := range r.reservations {
		if match(rv) {
			out = append(out, rv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *ReservationsRepo) UpdateStatus(_ context.Context, id string, status models.ReservationStatus) error {
	return r.mutate(id, func(rv *models.Reservation) error {
		rv.Status = status
		return nil
	})
}

func (r *ReservationsRepo) SetPayment(_ context.Context, id, paymentID string, ps models.PaymentStatus) error {
	return r.mutate(id, func(rv *models.Reservation) error {
		rv.PaymentID = &paymentID
		rv.PaymentStatus = ps
		return nil
	})
}

func (r *ReservationsRepo) SetPaymentStatus(_ context.Context, id string, ps models.PaymentStatus) error {
	return r.mutate(id, func(rv *models.Reservation) error {
		rv.PaymentStatus = ps
		return nil
	})
}

func (r *ReservationsRepo) SetRating(_ context.Context, id string, rating int) error {
	return r.mutate(id, func(rv *models.Reservation) error {
		if rv.Rating != nil {
			return repo.ErrConflict
		}
		rv.Rating = &rating
		return nil
	})
}

func (r *ReservationsRepo) mutate(id string, fn func(*models.Reservation) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rv, ok := r.reservations[id]
	if !ok {
		return repo.ErrNotFound
	}
	if err := fn(&rv); err != nil {
		return err
	}
	rv.UpdatedAt = time.Now()
	r.reservations[id] = rv
	return nil
}
