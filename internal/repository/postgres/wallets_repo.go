package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/homecook/homecook-backend/internal/models"
	repo "github.com/homecook/homecook-backend/internal/repository"
)

type walletsRepo struct{ pool *pgxpool.Pool }

const walletCols = `user_id, balance_cents, pending_cents, total_earned_cents, total_spent_cents, last_updated_at`

func (r *walletsRepo) GetOrCreate(ctx context.Context, userID string) (models.Wallet, error) {
	if w, err := r.Get(ctx, userID); err == nil {
		return w, nil
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO wallets(user_id) VALUES($1) ON CONFLICT (user_id) DO NOTHING`,
		userID,
	)
	if err != nil {
		return models.Wallet{}, err
	}
	return r.Get(ctx, userID)
}

func (r *walletsRepo) Get(ctx context.Context, userID string) (models.Wallet, error) {
	var w models.Wallet
	err := r.pool.QueryRow(ctx,
		`SELECT `+walletCols+` FROM wallets WHERE user_id=$1`, userID,
	).Scan(&w.UserID, &w.BalanceCents, &w.PendingCents, &w.TotalEarnedCents, &w.TotalSpentCents, &w.LastUpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Wallet{}, repo.ErrNotFound
	}
	return w, err
}

// Apply runs as a single guarded UPDATE so concurrent deltas serialize on the
// row. The WHERE clause enforces the non-negative balance invariant; pending
// and the cumulative counters floor at zero via GREATEST.
func (r *walletsRepo) Apply(ctx context.Context, userID string, d repo.WalletDelta) (models.Wallet, error) {
	var w models.Wallet
	err := r.pool.QueryRow(ctx,
		`UPDATE wallets
		    SET balance_cents      = balance_cents + $2,
		        pending_cents      = GREATEST(pending_cents + $3, 0),
		        total_earned_cents = GREATEST(total_earned_cents + $4, 0),
		        total_spent_cents  = GREATEST(total_spent_cents + $5, 0),
		        last_updated_at    = now()
		  WHERE user_id = $1 AND balance_cents + $2 >= 0
		  RETURNING `+walletCols,
		userID, d.BalanceCents, d.PendingCents, d.EarnedCents, d.SpentCents,
	).Scan(&w.UserID, &w.BalanceCents, &w.PendingCents, &w.TotalEarnedCents, &w.TotalSpentCents, &w.LastUpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		// Either the wallet is missing or the debit would go negative.
		if _, gerr := r.Get(ctx, userID); gerr != nil {
			return models.Wallet{}, gerr
		}
		return models.Wallet{}, repo.ErrInsufficientFunds
	}
	return w, err
}
