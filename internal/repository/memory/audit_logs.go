package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/homecook/homecook-backend/internal/models"
)

type AuditLogsRepo struct {
	mu   sync.Mutex
	logs []models.AuditLog
}

func NewAuditLogsRepo() *AuditLogsRepo { return &AuditLogsRepo{} }

func (r *AuditLogsRepo) Create(_ context.Context, l models.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l.ID = uuid.NewString()
	l.CreatedAt = time.Now()
	r.logs = append(r.logs, l)
	return nil
}

// Entries returns a copy of everything recorded so far.
func (r *AuditLogsRepo) Entries() []models.AuditLog {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.AuditLog, len(r.logs))
	copy(out, r.logs)
	return out
}
