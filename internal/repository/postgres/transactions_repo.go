package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/homecook/homecook-backend/internal/models"
	repo "github.com/homecook/homecook-backend/internal/repository"
)

type transactionsRepo struct{ pool *pgxpool.Pool }

const txnCols = `id, from_user_id, to_user_id, amount_cents, type, status, reservation_id, description, idempotency_key, created_at, completed_at`

func scanTxn(row pgx.Row) (models.Transaction, error) {
	var tx models.Transaction
	err := row.Scan(&tx.ID, &tx.FromUserID, &tx.ToUserID, &tx.AmountCents, &tx.Type,
		&tx.Status, &tx.ReservationID, &tx.Description, &tx.IdempotencyKey,
		&tx.CreatedAt, &tx.CompletedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Transaction{}, repo.ErrNotFound
	}
	return tx, err
}

// Create relies on the partial unique index on idempotency_key: replaying a
// request with the same key hits ON CONFLICT and RETURNING hands back the row
// that was stored the first time.
func (r *transactionsRepo) Create(ctx context.Context, tx models.Transaction) (models.Transaction, error) {
	const q = `
INSERT INTO transactions (id, from_user_id, to_user_id, amount_cents, type, status, reservation_id, description, idempotency_key)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
ON CONFLICT (idempotency_key) WHERE idempotency_key IS NOT NULL DO UPDATE
SET idempotency_key = EXCLUDED.idempotency_key
RETURNING ` + txnCols
	return scanTxn(r.pool.QueryRow(ctx, q,
		tx.ID, tx.FromUserID, tx.ToUserID, tx.AmountCents, tx.Type, tx.Status,
		tx.ReservationID, tx.Description, tx.IdempotencyKey,
	))
}

func (r *transactionsRepo) GetByID(ctx context.Context, id string) (models.Transaction, error) {
	return scanTxn(r.pool.QueryRow(ctx,
		`SELECT `+txnCols+` FROM transactions WHERE id=$1`, id))
}

func (r *transactionsRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Transaction, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+txnCols+`
		   FROM transactions
		  WHERE from_user_id=$1 OR to_user_id=$1
		  ORDER BY id DESC
		  LIMIT $2 OFFSET $3`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Transaction
	for rows.Next() {
		tx, err := scanTxn(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	return out, rows.Err()
}

func (r *transactionsRepo) ReleaseIdempotencyKey(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE transactions SET idempotency_key=NULL WHERE id=$1`, id)
	return err
}

func (r *transactionsRepo) UpdateStatusFrom(ctx context.Context, id string, from, to models.TransactionStatus, completedAt *time.Time) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE transactions SET status=$3, completed_at=$4 WHERE id=$1 AND status=$2`,
		id, from, to, completedAt,
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
