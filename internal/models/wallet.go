package models

import "time"

// Wallet is one per user, created lazily on first reference. All amounts are
// integer cents. PendingCents holds funds credited to a recipient but not yet
// withdrawable (escrow until the paired transaction completes). BalanceCents is
// never driven negative: every debit path is guarded.
type Wallet struct {
	UserID           string    `json:"user_id"`
	BalanceCents     int64     `json:"balance_cents"`
	PendingCents     int64     `json:"pending_cents"`
	TotalEarnedCents int64     `json:"total_earned_cents"`
	TotalSpentCents  int64     `json:"total_spent_cents"`
	LastUpdatedAt    time.Time `json:"last_updated_at"`
}
