package models

import "time"

type ReservationStatus string

const (
	ReservationPending        ReservationStatus = "pending"
	ReservationConfirmed      ReservationStatus = "confirmed"
	ReservationReadyForPickup ReservationStatus = "ready_for_pickup"
	ReservationCompleted      ReservationStatus = "completed"
	ReservationCancelled      ReservationStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentNone     PaymentStatus = "none"
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
	PaymentFailed   PaymentStatus = "failed"
)

// validTransitions is the full lifecycle: completed and cancelled are terminal.
var validTransitions = map[ReservationStatus][]ReservationStatus{
	ReservationPending:        {ReservationConfirmed, ReservationCancelled},
	ReservationConfirmed:      {ReservationReadyForPickup, ReservationCancelled},
	ReservationReadyForPickup: {ReservationCompleted},
	ReservationCompleted:      {},
	ReservationCancelled:      {},
}

func (s ReservationStatus) CanTransitionTo(next ReservationStatus) bool {
	for _, n := range validTransitions[s] {
		if n == next {
			return true
		}
	}
	return false
}

func (s ReservationStatus) Terminal() bool { return len(validTransitions[s]) == 0 }

func (s ReservationStatus) Valid() bool {
	_, ok := validTransitions[s]
	return ok
}

// Reservation is a customer's request to buy quantity of a meal from a cook.
// TotalCents is frozen at creation time and never recomputed, even if the meal
// price changes later. Reservations are never hard-deleted; cancellation is a
// status, not a removal.
type Reservation struct {
	ID            string            `json:"id"`
	MealID        string            `json:"meal_id"`
	CustomerID    string            `json:"customer_id"`
	CookID        string            `json:"cook_id"`
	Quantity      int               `json:"quantity"`
	TotalCents    int64             `json:"total_cents"`
	PickupTime    time.Time         `json:"pickup_time"`
	Status        ReservationStatus `json:"status"`
	PaymentID     *string           `json:"payment_id,omitempty"`
	PaymentStatus PaymentStatus     `json:"payment_status"`
	Rating        *int              `json:"rating,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}
