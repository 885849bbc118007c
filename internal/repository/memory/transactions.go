package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/homecook/homecook-backend/internal/models"
	repo "github.com/homecook/homecook-backend/internal/repository"
)

type TransactionsRepo struct {
	mu     sync.RWMutex
	txns   map[string]models.Transaction
	byIdem map[string]string
}

func NewTransactionsRepo() *TransactionsRepo {
	return &TransactionsRepo{
		txns:   make(map[string]models.Transaction),
		byIdem: make(map[string]string),
	}
}

func (r *TransactionsRepo) Create(_ context.Context, tx models.Transaction) (models.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if tx.IdempotencyKey != nil {
		if id, ok := r.byIdem[*tx.IdempotencyKey]; ok {
			return r.txns[id], nil
		}
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now()
	}
	r.txns[tx.ID] = tx
	if tx.IdempotencyKey != nil {
		r.byIdem[*tx.IdempotencyKey] = tx.ID
	}
	return tx, nil
}

func (r *TransactionsRepo) GetByID(_ context.Context, id string) (models.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tx, ok := r.txns[id]
	if !ok {
		return models.Transaction{}, repo.ErrNotFound
	}
	return tx, nil
}

func (r *TransactionsRepo) ListByUser(_ context.Context, userID string, limit, offset int) ([]models.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []models.Transaction
	for _, tx := range r.txns {
		if (tx.FromUserID != nil && *tx.FromUserID == userID) ||
			(tx.ToUserID != nil && *tx.ToUserID == userID) {
			out = append(out, tx)
		}
	}
	// ULIDs sort lexicographically by creation time.
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *TransactionsRepo) ReleaseIdempotencyKey(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	tx, ok := r.txns[id]
	if !ok {
		return repo.ErrNotFound
	}
	if tx.IdempotencyKey != nil {
		delete(r.byIdem, *tx.IdempotencyKey)
		tx.IdempotencyKey = nil
		r.txns[id] = tx
	}
	return nil
}

func (r *TransactionsRepo) UpdateStatusFrom(_ context.Context, id string, from, to models.TransactionStatus, completedAt *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	tx, ok := r.txns[id]
	if !ok {
		return repo.ErrNotFound
	}
	if tx.Status != from {
		return repo.ErrConflict
	}
	tx.Status = to
	tx.CompletedAt = completedAt
	r.txns[id] = tx
	return nil
}
