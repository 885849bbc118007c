package postgres

import (
	repo "github.com/homecook/homecook-backend/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repositories struct {
	Users        repo.Users
	Meals        repo.Meals
	Reservations repo.Reservations
	Wallets      repo.Wallets
	Transactions repo.Transactions
	AuditLogs    repo.AuditLogs
}

func NewRepositories(pool *pgxpool.Pool) Repositories {
	return Repositories{
		Users:        &usersRepo{pool},
		Meals:        &mealsRepo{pool},
		Reservations: &reservationsRepo{pool},
		Wallets:      &walletsRepo{pool},
		Transactions: &transactionsRepo{pool},
		AuditLogs:    &auditLogsRepo{pool},
	}
}
