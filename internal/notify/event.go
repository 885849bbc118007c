// Package notify publishes order lifecycle events to RabbitMQ. Delivery is
// fire-and-forget: a broker outage is logged and never blocks a reservation
// transition.
package notify

import "github.com/homecook/homecook-backend/internal/models"

type EventKind string

const (
	OrderCreated   EventKind = "order.created"
	OrderConfirmed EventKind = "order.confirmed"
	OrderReady     EventKind = "order.ready_for_pickup"
	OrderCompleted EventKind = "order.completed"
	OrderCancelled EventKind = "order.cancelled"
)

// OrderEvent carries enough of the reservation for downstream consumers
// (push notifications, analytics) to act without querying the database.
type OrderEvent struct {
	Kind          EventKind `json:"kind"`
	RecipientID   string    `json:"recipient_id"`
	ReservationID string    `json:"reservation_id"`
	MealID        string    `json:"meal_id"`
	CustomerID    string    `json:"customer_id"`
	CookID        string    `json:"cook_id"`
	Quantity      int       `json:"quantity"`
	Total         string    `json:"total"`
	PickupTime    string    `json:"pickup_time"`
}

// NewOrderEvent builds the payload for a reservation, addressed to recipient.
func NewOrderEvent(kind EventKind, rv models.Reservation, recipientID, total string) OrderEvent {
	return OrderEvent{
		Kind:          kind,
		RecipientID:   recipientID,
		ReservationID: rv.ID,
		MealID:        rv.MealID,
		CustomerID:    rv.CustomerID,
		CookID:        rv.CookID,
		Quantity:      rv.Quantity,
		Total:         total,
		PickupTime:    rv.PickupTime.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}
