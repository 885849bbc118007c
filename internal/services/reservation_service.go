package services

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"
	"sync"
	"time"

	"github.com/homecook/homecook-backend/internal/metrics"
	"github.com/homecook/homecook-backend/internal/models"
	"github.com/homecook/homecook-backend/internal/money"
	"github.com/homecook/homecook-backend/internal/notify"
	repo "github.com/homecook/homecook-backend/internal/repository"
	"github.com/homecook/homecook-backend/internal/worker"
)

var (
	ErrReservationNotFound = errors.New("reservation not found")
	ErrMealNotFound        = errors.New("meal not found")
	ErrInvalidQuantity     = errors.New("quantity must be > 0")
	ErrQuantityUnavailable = errors.New("not enough portions available")
	ErrPickupInPast        = errors.New("pickup time must be in the future")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrNotAllowed          = errors.New("not allowed")
	ErrInvalidRating       = errors.New("rating must be between 1 and 5")
	ErrAlreadyRated        = errors.New("reservation already rated")
	ErrNotCompleted        = errors.New("reservation is not completed")
)

// Notifier abstracts the order-event channel so tests can capture events.
type Notifier interface {
	Publish(ctx context.Context, ev notify.OrderEvent) error
}

// ReservationService owns the reservation lifecycle:
//
//	pending -> confirmed -> ready_for_pickup -> completed
//	pending/confirmed -> cancelled
//
// The required financial side effect of a transition succeeds or the
// transition does not happen; notifications and audit entries are best-effort
// and go through the worker pool.
type ReservationService struct {
	res      repo.Reservations
	meals    repo.Meals
	users    repo.Users
	payments *PaymentService
	log      repo.AuditLogs
	wp       *worker.Pool
	notifier Notifier

	// Striped per-reservation locks so a double-tapped transition cannot
	// interleave with itself.
	locks [32]sync.Mutex
}

type CreateReservationInput struct {
	MealID     string
	CustomerID string
	Quantity   int
	PickupTime time.Time
}

func NewReservationService(r repo.Reservations, m repo.Meals, u repo.Users, p *PaymentService, l repo.AuditLogs, wp *worker.Pool, n Notifier) *ReservationService {
	return &ReservationService{res: r, meals: m, users: u, payments: p, log: l, wp: wp, notifier: n}
}

func (s *ReservationService) lockFor(id string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return &s.locks[h.Sum32()%uint32(len(s.locks))]
}

// Create reserves inventory at request time: the meal's available quantity is
// decremented here, once, and restocked only if the reservation is cancelled.
// The total price is frozen now; later meal price changes never touch it.
func (s *ReservationService) Create(ctx context.Context, in CreateReservationInput) (models.Reservation, error) {
	if in.Quantity <= 0 {
		return models.Reservation{}, ErrInvalidQuantity
	}
	if !in.PickupTime.After(time.Now()) {
		return models.Reservation{}, ErrPickupInPast
	}
	meal, err := s.meals.GetByID(ctx, in.MealID)
	if errors.Is(err, repo.ErrNotFound) {
		return models.Reservation{}, ErrMealNotFound
	}
	if err != nil {
		return models.Reservation{}, err
	}
	if meal.CookID == in.CustomerID {
		return models.Reservation{}, ErrNotAllowed
	}

	if _, err := s.meals.AdjustQuantity(ctx, meal.ID, -in.Quantity); err != nil {
		if errors.Is(err, repo.ErrConflict) {
			return models.Reservation{}, ErrQuantityUnavailable
		}
		return models.Reservation{}, err
	}

	rv, err := s.res.Create(ctx, models.Reservation{
		MealID:        meal.ID,
		CustomerID:    in.CustomerID,
		CookID:        meal.CookID,
		Quantity:      in.Quantity,
		TotalCents:    meal.PriceCents * int64(in.Quantity),
		PickupTime:    in.PickupTime,
		Status:        models.ReservationPending,
		PaymentStatus: models.PaymentNone,
	})
	if err != nil {
		// Put the portions back; the reservation never existed.
		if _, rerr := s.meals.AdjustQuantity(ctx, meal.ID, in.Quantity); rerr != nil {
			slog.Error("reservation: restock after failed create", "meal_id", meal.ID, "err", rerr)
		}
		return models.Reservation{}, err
	}

	metrics.ReservationsTotal.WithLabelValues(string(models.ReservationPending)).Inc()
	s.audit(ctx, rv.ID, "created", fmt.Sprintf("%dx meal %s", rv.Quantity, rv.MealID))
	s.publish(notify.OrderCreated, rv, rv.CookID)
	return rv, nil
}

// UpdateStatus applies one lifecycle transition on behalf of actorID.
func (s *ReservationService) UpdateStatus(ctx context.Context, id string, next models.ReservationStatus, actorID string) (models.Reservation, error) {
	if !next.Valid() {
		return models.Reservation{}, ErrInvalidTransition
	}
	mu := s.lockFor(id)
	mu.Lock()
	defer mu.Unlock()

	rv, err := s.res.GetByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return models.Reservation{}, ErrReservationNotFound
	}
	if err != nil {
		return models.Reservation{}, err
	}
	if !rv.Status.CanTransitionTo(next) {
		return models.Reservation{}, ErrInvalidTransition
	}
	if err := checkActor(rv, next, actorID); err != nil {
		return models.Reservation{}, err
	}

	switch next {
	case models.ReservationReadyForPickup:
		if rv.PaymentID == nil {
			// The one gated side effect: no payment, no transition.
			tx, err := s.payments.Process(ctx, rv.CustomerID, rv.CookID, rv.TotalCents,
				rv.ID, s.paymentDescription(ctx, rv), "resv-"+rv.ID+"-payment")
			if err != nil {
				return models.Reservation{}, err
			}
			if err := s.res.SetPayment(ctx, rv.ID, tx.ID, models.PaymentPending); err != nil {
				return models.Reservation{}, err
			}
			rv.PaymentID = &tx.ID
			rv.PaymentStatus = models.PaymentPending
		}

	case models.ReservationCompleted:
		if rv.PaymentID != nil && rv.PaymentStatus == models.PaymentPending {
			if _, err := s.payments.Complete(ctx, *rv.PaymentID); err != nil {
				return models.Reservation{}, err
			}
			if err := s.res.SetPaymentStatus(ctx, rv.ID, models.PaymentPaid); err != nil {
				return models.Reservation{}, err
			}
			rv.PaymentStatus = models.PaymentPaid
		}

	case models.ReservationCancelled:
		if rv.PaymentID != nil &&
			(rv.PaymentStatus == models.PaymentPending || rv.PaymentStatus == models.PaymentPaid) {
			if _, err := s.payments.Refund(ctx, *rv.PaymentID, "reservation cancelled"); err != nil {
				return models.Reservation{}, err
			}
			if err := s.res.SetPaymentStatus(ctx, rv.ID, models.PaymentRefunded); err != nil {
				return models.Reservation{}, err
			}
			rv.PaymentStatus = models.PaymentRefunded
		}
		// Portions go back on sale. Not money, so failure only logs.
		if _, err := s.meals.AdjustQuantity(ctx, rv.MealID, rv.Quantity); err != nil {
			slog.Error("reservation: restock on cancel", "meal_id", rv.MealID, "err", err)
		}
	}

	if err := s.res.UpdateStatus(ctx, id, next); err != nil {
		return models.Reservation{}, err
	}
	rv.Status = next

	metrics.ReservationsTotal.WithLabelValues(string(next)).Inc()
	s.audit(ctx, rv.ID, "status_change", string(next))
	s.publish(eventFor(next), rv, notifyTarget(rv, actorID))
	return rv, nil
}

// checkActor enforces who may drive which transition: the cook accepts and
// readies orders, either party may complete or cancel.
func checkActor(rv models.Reservation, next models.ReservationStatus, actorID string) error {
	switch next {
	case models.ReservationConfirmed, models.ReservationReadyForPickup:
		if actorID != rv.CookID {
			return ErrNotAllowed
		}
	case models.ReservationCompleted, models.ReservationCancelled:
		if actorID != rv.CookID && actorID != rv.CustomerID {
			return ErrNotAllowed
		}
	}
	return nil
}

func eventFor(next models.ReservationStatus) notify.EventKind {
	switch next {
	case models.ReservationConfirmed:
		return notify.OrderConfirmed
	case models.ReservationReadyForPickup:
		return notify.OrderReady
	case models.ReservationCompleted:
		return notify.OrderCompleted
	default:
		return notify.OrderCancelled
	}
}

// notifyTarget picks the counterparty of whoever acted.
func notifyTarget(rv models.Reservation, actorID string) string {
	if actorID == rv.CustomerID {
		return rv.CookID
	}
	return rv.CustomerID
}

func (s *ReservationService) paymentDescription(ctx context.Context, rv models.Reservation) string {
	if meal, err := s.meals.GetByID(ctx, rv.MealID); err == nil {
		return fmt.Sprintf("Payment for %dx %s (%s)", rv.Quantity, meal.Title, money.Format(rv.TotalCents))
	}
	return fmt.Sprintf("Payment for reservation %s (%s)", rv.ID, money.Format(rv.TotalCents))
}

// SubmitRating attaches a one-time rating to a completed reservation and fans
// out to the meal's and the cook's running averages and the customer's review
// count. The aggregates are best-effort; the rating itself is not.
func (s *ReservationService) SubmitRating(ctx context.Context, id, customerID string, rating int) (models.Reservation, error) {
	if rating < 1 || rating > 5 {
		return models.Reservation{}, ErrInvalidRating
	}
	mu := s.lockFor(id)
	mu.Lock()
	defer mu.Unlock()

	rv, err := s.res.GetByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return models.Reservation{}, ErrReservationNotFound
	}
	if err != nil {
		return models.Reservation{}, err
	}
	if rv.CustomerID != customerID {
		return models.Reservation{}, ErrNotAllowed
	}
	if rv.Status != models.ReservationCompleted {
		return models.Reservation{}, ErrNotCompleted
	}
	if rv.Rating != nil {
		return models.Reservation{}, ErrAlreadyRated
	}
	if err := s.res.SetRating(ctx, id, rating); err != nil {
		if errors.Is(err, repo.ErrConflict) {
			return models.Reservation{}, ErrAlreadyRated
		}
		return models.Reservation{}, err
	}
	rv.Rating = &rating

	if meal, err := s.meals.GetByID(ctx, rv.MealID); err == nil {
		avg := runningAverage(meal.Rating, meal.RatingCount, rating)
		if err := s.meals.UpdateRating(ctx, meal.ID, avg, meal.RatingCount+1); err != nil {
			slog.Error("rating: meal aggregate", "meal_id", meal.ID, "err", err)
		}
	}
	if cook, err := s.users.GetByID(ctx, rv.CookID); err == nil {
		avg := runningAverage(cook.Rating, cook.RatingCount, rating)
		if err := s.users.UpdateRating(ctx, cook.ID, avg, cook.RatingCount+1); err != nil {
			slog.Error("rating: cook aggregate", "cook_id", cook.ID, "err", err)
		}
	}
	if err := s.users.IncrementReviewCount(ctx, customerID); err != nil {
		slog.Error("rating: review count", "customer_id", customerID, "err", err)
	}

	s.audit(ctx, rv.ID, "rated", fmt.Sprintf("%d", rating))
	return rv, nil
}

func runningAverage(avg float64, count, next int) float64 {
	return (avg*float64(count) + float64(next)) / float64(count+1)
}

// ----------------- Queries -----------------

func (s *ReservationService) GetByID(ctx context.Context, id string) (models.Reservation, error) {
	rv, err := s.res.GetByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return models.Reservation{}, ErrReservationNotFound
	}
	return rv, err
}

func (s *ReservationService) ListByCustomer(ctx context.Context, customerID string) ([]models.Reservation, error) {
	return s.res.ListByCustomer(ctx, customerID)
}

func (s *ReservationService) ListByCook(ctx context.Context, cookID string) ([]models.Reservation, error) {
	return s.res.ListByCook(ctx, cookID)
}

// ----------------- Side channels -----------------

func (s *ReservationService) audit(ctx context.Context, entityID, action, details string) {
	var det map[string]any
	if details != "" {
		det = map[string]any{"message": details}
	}
	_ = s.log.Create(ctx, models.AuditLog{
		EntityType: "reservation",
		EntityID:   &entityID,
		Action:     action,
		Details:    det,
	})
}

func (s *ReservationService) publish(kind notify.EventKind, rv models.Reservation, recipientID string) {
	if s.notifier == nil {
		return
	}
	ev := notify.NewOrderEvent(kind, rv, recipientID, money.Format(rv.TotalCents))
	job := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.notifier.Publish(ctx, ev)
	}
	if s.wp != nil {
		s.wp.Submit(job)
		return
	}
	job()
}
