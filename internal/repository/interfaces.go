package repository

import (
	"context"
	"errors"
	"time"

	"github.com/homecook/homecook-backend/internal/models"
)

var (
	// ErrNotFound is returned when the requested row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInsufficientFunds is returned by guarded wallet debits.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrConflict is returned when a guarded update finds the row in a
	// different state than required (status already advanced, not enough
	// inventory left).
	ErrConflict = errors.New("conflict")
)

type Users interface {
	Create(ctx context.Context, username, email, passwordHash, role string) (models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
	List(ctx context.Context) ([]models.User, error)
	UpdateRating(ctx context.Context, id string, rating float64, count int) error
	IncrementReviewCount(ctx context.Context, id string) error
}

type Meals interface {
	Create(ctx context.Context, m models.Meal) (models.Meal, error)
	GetByID(ctx context.Context, id string) (models.Meal, error)
	List(ctx context.Context) ([]models.Meal, error)
	ListByCook(ctx context.Context, cookID string) ([]models.Meal, error)
	Update(ctx context.Context, m models.Meal) (models.Meal, error)
	// AdjustQuantity adds delta to available_quantity. A negative delta is
	// guarded: if less than -delta is available the call fails with
	// ErrConflict and nothing changes.
	AdjustQuantity(ctx context.Context, id string, delta int) (models.Meal, error)
	UpdateRating(ctx context.Context, id string, rating float64, count int) error
}

type Reservations interface {
	Create(ctx context.Context, r models.Reservation) (models.Reservation, error)
	GetByID(ctx context.Context, id string) (models.Reservation, error)
	ListByCustomer(ctx context.Context, customerID string) ([]models.Reservation, error)
	ListByCook(ctx context.Context, cookID string) ([]models.Reservation, error)
	UpdateStatus(ctx context.Context, id string, status models.ReservationStatus) error
	SetPayment(ctx context.Context, id, paymentID string, ps models.PaymentStatus) error
	SetPaymentStatus(ctx context.Context, id string, ps models.PaymentStatus) error
	SetRating(ctx context.Context, id string, rating int) error
}

// WalletDelta is applied atomically to one wallet row. A delta that would
// drive the balance negative fails with ErrInsufficientFunds; pending and the
// cumulative earned/spent counters floor at zero instead, so a double-refund
// bug can never produce negative totals.
type WalletDelta struct {
	BalanceCents int64
	PendingCents int64
	EarnedCents  int64
	SpentCents   int64
}

type Wallets interface {
	GetOrCreate(ctx context.Context, userID string) (models.Wallet, error)
	Get(ctx context.Context, userID string) (models.Wallet, error)
	Apply(ctx context.Context, userID string, d WalletDelta) (models.Wallet, error)
}

type Transactions interface {
	// Create inserts the entry. When tx.IdempotencyKey is set and an entry
	// with the same key already exists, the stored entry is returned
	// unchanged and no second row is written.
	Create(ctx context.Context, tx models.Transaction) (models.Transaction, error)
	GetByID(ctx context.Context, id string) (models.Transaction, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Transaction, error)
	// UpdateStatusFrom transitions id from one status to another; if the row
	// is not in the expected status the call fails with ErrConflict. This is
	// the guard against double completion.
	UpdateStatusFrom(ctx context.Context, id string, from, to models.TransactionStatus, completedAt *time.Time) error
	// ReleaseIdempotencyKey detaches the entry's key so a later retry with
	// the same key creates a fresh entry. A failed entry must never answer a
	// replay as if it succeeded.
	ReleaseIdempotencyKey(ctx context.Context, id string) error
}

type AuditLogs interface {
	Create(ctx context.Context, l models.AuditLog) error
}
