package memory

import (
	"context"
	"sync"
	"time"

	"github.com/homecook/homecook-backend/internal/models"
	repo "github.com/homecook/homecook-backend/internal/repository"
)

type WalletsRepo struct {
	mu      sync.RWMutex
	wallets map[string]models.Wallet
}

func NewWalletsRepo() *WalletsRepo {
	return &WalletsRepo{wallets: make(map[string]models.Wallet)}
}

func (r *WalletsRepo) GetOrCreate(_ context.Context, userID string) (models.Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if w, ok := r.wallets[userID]; ok {
		return w, nil
	}
	w := models.Wallet{UserID: userID, LastUpdatedAt: time.Now()}
	r.wallets[userID] = w
	return w, nil
}

func (r *WalletsRepo) Get(_ context.Context, userID string) (models.Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.wallets[userID]
	if !ok {
		return models.Wallet{}, repo.ErrNotFound
	}
	return w, nil
}

func (r *WalletsRepo) Apply(_ context.Context, userID string, d repo.WalletDelta) (models.Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.wallets[userID]
	if !ok {
		return models.Wallet{}, repo.ErrNotFound
	}
	if w.BalanceCents+d.BalanceCents < 0 {
		return models.Wallet{}, repo.ErrInsufficientFunds
	}
	w.BalanceCents += d.BalanceCents
	w.PendingCents = floor0(w.PendingCents + d.PendingCents)
	w.TotalEarnedCents = floor0(w.TotalEarnedCents + d.EarnedCents)
	w.TotalSpentCents = floor0(w.TotalSpentCents + d.SpentCents)
	w.LastUpdatedAt = time.Now()
	r.wallets[userID] = w
	return w, nil
}

func floor0(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}
