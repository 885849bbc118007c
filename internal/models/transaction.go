package models

import "time"

type TransactionType string

const (
	TxnPayment TransactionType = "payment"
	TxnRefund  TransactionType = "refund"
	TxnPayout  TransactionType = "payout"
	TxnDeposit TransactionType = "deposit"
)

type TransactionStatus string

const (
	TxnPending   TransactionStatus = "pending"
	TxnCompleted TransactionStatus = "completed"
	TxnFailed    TransactionStatus = "failed"
)

// Transaction is a ledger entry. Once completed it is immutable: a refund is a
// new paired row referencing the same reservation, never an edit of the
// original. IDs are ULIDs so the ledger sorts by creation time.
type Transaction struct {
	ID             string            `json:"id"`
	FromUserID     *string           `json:"from_user_id,omitempty"`
	ToUserID       *string           `json:"to_user_id,omitempty"`
	AmountCents    int64             `json:"amount_cents"`
	Type           TransactionType   `json:"type"`
	Status         TransactionStatus `json:"status"`
	ReservationID  *string           `json:"reservation_id,omitempty"`
	Description    string            `json:"description,omitempty"`
	IdempotencyKey *string           `json:"-"`
	CreatedAt      time.Time         `json:"created_at"`
	CompletedAt    *time.Time        `json:"completed_at,omitempty"`
}
