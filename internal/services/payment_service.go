package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/homecook/homecook-backend/internal/metrics"
	"github.com/homecook/homecook-backend/internal/models"
	repo "github.com/homecook/homecook-backend/internal/repository"
)

var (
	ErrAmountNotPositive     = errors.New("amount must be > 0")
	ErrSelfPayment           = errors.New("cannot pay yourself")
	ErrInsufficientFunds     = repo.ErrInsufficientFunds
	ErrWalletNotFound        = errors.New("wallet not found")
	ErrTransactionNotFound   = errors.New("transaction not found")
	ErrTransactionNotPending = errors.New("transaction is not pending")
	ErrNotRefundable         = errors.New("transaction is not refundable")
)

// PaymentService owns every mutation of wallets and the transaction ledger.
// All operations are synchronous: callers gating a reservation transition on a
// payment need the verdict before they commit.
//
// Escrow model: Process debits the payer and parks the amount in the
// recipient's pending balance; Complete releases it to the spendable balance.
type PaymentService struct {
	trx repo.Transactions
	wal repo.Wallets
	log repo.AuditLogs
}

func NewPaymentService(t repo.Transactions, w repo.Wallets, l repo.AuditLogs) *PaymentService {
	return &PaymentService{trx: t, wal: w, log: l}
}

func newTxnID() string { return ulid.Make().String() }

func (s *PaymentService) audit(ctx context.Context, entityID, action, details string) {
	var det map[string]any
	if details != "" {
		det = map[string]any{"message": details}
	}
	_ = s.log.Create(ctx, models.AuditLog{
		EntityType: "transaction",
		EntityID:   &entityID,
		Action:     action,
		Details:    det,
	})
}

// InitWallet is idempotent: a second call for the same user is a no-op.
func (s *PaymentService) InitWallet(ctx context.Context, userID string) (models.Wallet, error) {
	return s.wal.GetOrCreate(ctx, userID)
}

func (s *PaymentService) WalletFor(ctx context.Context, userID string) (models.Wallet, error) {
	w, err := s.wal.Get(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return models.Wallet{}, ErrWalletNotFound
	}
	return w, err
}

// Process moves amount from payer to the recipient's escrow. The ledger row
// is written before any wallet is touched, so a replayed idempotency key is
// answered from the ledger and never debits twice. On insufficient funds no
// wallet field changes; the attempt is recorded as a failed entry.
func (s *PaymentService) Process(ctx context.Context, fromID, toID string, amount int64, reservationID, description, idemKey string) (models.Transaction, error) {
	if amount <= 0 {
		return models.Transaction{}, ErrAmountNotPositive
	}
	if fromID == toID {
		return models.Transaction{}, ErrSelfPayment
	}
	if _, err := s.wal.GetOrCreate(ctx, fromID); err != nil {
		return models.Transaction{}, err
	}
	if _, err := s.wal.Get(ctx, toID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return models.Transaction{}, ErrWalletNotFound
		}
		return models.Transaction{}, err
	}

	tx := models.Transaction{
		ID:            newTxnID(),
		FromUserID:    &fromID,
		ToUserID:      &toID,
		AmountCents:   amount,
		Type:          models.TxnPayment,
		Status:        models.TxnPending,
		ReservationID: &reservationID,
		Description:   description,
	}
	if idemKey != "" {
		tx.IdempotencyKey = &idemKey
	}
	stored, err := s.trx.Create(ctx, tx)
	if err != nil {
		return models.Transaction{}, err
	}
	if stored.ID != tx.ID {
		// Replay: the ledger already answered this key.
		return stored, nil
	}
	s.audit(ctx, stored.ID, "created", "payment created")

	if _, err := s.wal.Apply(ctx, fromID, repo.WalletDelta{BalanceCents: -amount, SpentCents: amount}); err != nil {
		s.fail(ctx, stored.ID, "debit failed: "+err.Error())
		if errors.Is(err, repo.ErrInsufficientFunds) {
			return models.Transaction{}, ErrInsufficientFunds
		}
		return models.Transaction{}, err
	}
	if _, err := s.wal.Apply(ctx, toID, repo.WalletDelta{PendingCents: amount}); err != nil {
		// Give the payer their money back before reporting failure.
		_, _ = s.wal.Apply(ctx, fromID, repo.WalletDelta{BalanceCents: amount, SpentCents: -amount})
		s.fail(ctx, stored.ID, "escrow credit failed: "+err.Error())
		return models.Transaction{}, err
	}

	metrics.TransactionsTotal.WithLabelValues(string(models.TxnPayment)).Inc()
	return stored, nil
}

// Complete releases escrowed funds to the recipient. Only a pending payment
// can complete; a second call finds the row already completed and fails, so a
// double credit is impossible.
func (s *PaymentService) Complete(ctx context.Context, txID string) (models.Transaction, error) {
	tx, err := s.trx.GetByID(ctx, txID)
	if errors.Is(err, repo.ErrNotFound) {
		return models.Transaction{}, ErrTransactionNotFound
	}
	if err != nil {
		return models.Transaction{}, err
	}
	if tx.Type != models.TxnPayment {
		return models.Transaction{}, ErrTransactionNotPending
	}
	now := time.Now()
	if err := s.trx.UpdateStatusFrom(ctx, txID, models.TxnPending, models.TxnCompleted, &now); err != nil {
		if errors.Is(err, repo.ErrConflict) {
			return models.Transaction{}, ErrTransactionNotPending
		}
		return models.Transaction{}, err
	}
	if _, err := s.wal.Apply(ctx, *tx.ToUserID, repo.WalletDelta{
		BalanceCents: tx.AmountCents,
		PendingCents: -tx.AmountCents,
		EarnedCents:  tx.AmountCents,
	}); err != nil {
		// Put the row back to pending so the ledger never claims a release
		// that the wallet did not receive.
		_ = s.trx.UpdateStatusFrom(ctx, txID, models.TxnCompleted, models.TxnPending, nil)
		return models.Transaction{}, err
	}
	s.audit(ctx, txID, "status_change", "completed")
	tx.Status = models.TxnCompleted
	tx.CompletedAt = &now
	return tx, nil
}

// Refund reverses a payment. A pending original is marked failed and its
// escrow drained; a completed original stays completed and the money comes
// out of the recipient's settled balance. Either way a sibling refund entry
// is written; the original is never edited after completion.
func (s *PaymentService) Refund(ctx context.Context, txID, reason string) (models.Transaction, error) {
	orig, err := s.trx.GetByID(ctx, txID)
	if errors.Is(err, repo.ErrNotFound) {
		return models.Transaction{}, ErrTransactionNotFound
	}
	if err != nil {
		return models.Transaction{}, err
	}
	if orig.Type != models.TxnPayment || orig.Status == models.TxnFailed {
		return models.Transaction{}, ErrNotRefundable
	}
	amount := orig.AmountCents

	switch orig.Status {
	case models.TxnPending:
		if err := s.trx.UpdateStatusFrom(ctx, txID, models.TxnPending, models.TxnFailed, nil); err != nil {
			if errors.Is(err, repo.ErrConflict) {
				return models.Transaction{}, ErrNotRefundable
			}
			return models.Transaction{}, err
		}
		if err := s.trx.ReleaseIdempotencyKey(ctx, txID); err != nil {
			slog.Error("payment: release idempotency key", "tx_id", txID, "err", err)
		}
		if _, err := s.wal.Apply(ctx, *orig.ToUserID, repo.WalletDelta{PendingCents: -amount}); err != nil {
			return models.Transaction{}, err
		}
	case models.TxnCompleted:
		// The recipient must still hold the funds.
		if _, err := s.wal.Apply(ctx, *orig.ToUserID, repo.WalletDelta{BalanceCents: -amount, EarnedCents: -amount}); err != nil {
			if errors.Is(err, repo.ErrInsufficientFunds) {
				return models.Transaction{}, ErrInsufficientFunds
			}
			return models.Transaction{}, err
		}
	}

	if _, err := s.wal.Apply(ctx, *orig.FromUserID, repo.WalletDelta{BalanceCents: amount, SpentCents: -amount}); err != nil {
		return models.Transaction{}, err
	}

	now := time.Now()
	refund := models.Transaction{
		ID:            newTxnID(),
		FromUserID:    orig.ToUserID,
		ToUserID:      orig.FromUserID,
		AmountCents:   amount,
		Type:          models.TxnRefund,
		Status:        models.TxnCompleted,
		ReservationID: orig.ReservationID,
		Description:   reason,
		CompletedAt:   &now,
	}
	refund, err = s.trx.Create(ctx, refund)
	if err != nil {
		return models.Transaction{}, err
	}
	s.audit(ctx, orig.ID, "refunded", fmt.Sprintf("refund %s: %s", refund.ID, reason))
	metrics.TransactionsTotal.WithLabelValues(string(models.TxnRefund)).Inc()
	return refund, nil
}

// Deposit tops up a wallet from an external source. Completed immediately.
func (s *PaymentService) Deposit(ctx context.Context, userID string, amount int64, idemKey string) (models.Transaction, error) {
	if amount <= 0 {
		return models.Transaction{}, ErrAmountNotPositive
	}
	if _, err := s.wal.GetOrCreate(ctx, userID); err != nil {
		return models.Transaction{}, err
	}
	tx := models.Transaction{
		ID:          newTxnID(),
		ToUserID:    &userID,
		AmountCents: amount,
		Type:        models.TxnDeposit,
		Status:      models.TxnPending,
		Description: "wallet deposit",
	}
	if idemKey != "" {
		tx.IdempotencyKey = &idemKey
	}
	stored, err := s.trx.Create(ctx, tx)
	if err != nil {
		return models.Transaction{}, err
	}
	if stored.ID != tx.ID {
		return stored, nil
	}
	if _, err := s.wal.Apply(ctx, userID, repo.WalletDelta{BalanceCents: amount}); err != nil {
		s.fail(ctx, stored.ID, "credit failed: "+err.Error())
		return models.Transaction{}, err
	}
	return s.settle(ctx, stored)
}

// Withdraw pays out spendable balance, e.g. a cook cashing out earnings.
func (s *PaymentService) Withdraw(ctx context.Context, userID string, amount int64, idemKey string) (models.Transaction, error) {
	if amount <= 0 {
		return models.Transaction{}, ErrAmountNotPositive
	}
	if _, err := s.WalletFor(ctx, userID); err != nil {
		return models.Transaction{}, err
	}
	tx := models.Transaction{
		ID:          newTxnID(),
		FromUserID:  &userID,
		AmountCents: amount,
		Type:        models.TxnPayout,
		Status:      models.TxnPending,
		Description: "wallet payout",
	}
	if idemKey != "" {
		tx.IdempotencyKey = &idemKey
	}
	stored, err := s.trx.Create(ctx, tx)
	if err != nil {
		return models.Transaction{}, err
	}
	if stored.ID != tx.ID {
		return stored, nil
	}
	if _, err := s.wal.Apply(ctx, userID, repo.WalletDelta{BalanceCents: -amount}); err != nil {
		s.fail(ctx, stored.ID, "payout debit failed: "+err.Error())
		if errors.Is(err, repo.ErrInsufficientFunds) {
			return models.Transaction{}, ErrInsufficientFunds
		}
		return models.Transaction{}, err
	}
	return s.settle(ctx, stored)
}

func (s *PaymentService) settle(ctx context.Context, tx models.Transaction) (models.Transaction, error) {
	now := time.Now()
	if err := s.trx.UpdateStatusFrom(ctx, tx.ID, models.TxnPending, models.TxnCompleted, &now); err != nil {
		return models.Transaction{}, err
	}
	s.audit(ctx, tx.ID, "status_change", "completed")
	metrics.TransactionsTotal.WithLabelValues(string(tx.Type)).Inc()
	tx.Status = models.TxnCompleted
	tx.CompletedAt = &now
	return tx, nil
}

func (s *PaymentService) fail(ctx context.Context, txID, reason string) {
	_ = s.trx.UpdateStatusFrom(ctx, txID, models.TxnPending, models.TxnFailed, nil)
	// The key goes back into play: a failed entry must not answer a retry
	// with the same key as if it had succeeded.
	if err := s.trx.ReleaseIdempotencyKey(ctx, txID); err != nil {
		slog.Error("payment: release idempotency key", "tx_id", txID, "err", err)
	}
	s.audit(ctx, txID, "status_change", "failed: "+reason)
	metrics.TransactionsFailed.Inc()
}

// ----------------- Queries -----------------

func (s *PaymentService) GetTransaction(ctx context.Context, id string) (models.Transaction, error) {
	tx, err := s.trx.GetByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return models.Transaction{}, ErrTransactionNotFound
	}
	return tx, err
}

func (s *PaymentService) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Transaction, error) {
	return s.trx.ListByUser(ctx, userID, limit, offset)
}
