// Package memory holds map-backed implementations of the repository
// interfaces, guarded by a single RWMutex per store. They back the service
// tests.
package memory

import repo "github.com/homecook/homecook-backend/internal/repository"

type Repositories struct {
	Users        *UsersRepo
	Meals        *MealsRepo
	Reservations *ReservationsRepo
	Wallets      *WalletsRepo
	Transactions *TransactionsRepo
	AuditLogs    *AuditLogsRepo
}

func NewRepositories() Repositories {
	return Repositories{
		Users:        NewUsersRepo(),
		Meals:        NewMealsRepo(),
		Reservations: NewReservationsRepo(),
		Wallets:      NewWalletsRepo(),
		Transactions: NewTransactionsRepo(),
		AuditLogs:    NewAuditLogsRepo(),
	}
}

var (
	_ repo.Users        = (*UsersRepo)(nil)
	_ repo.Meals        = (*MealsRepo)(nil)
	_ repo.Reservations = (*ReservationsRepo)(nil)
	_ repo.Wallets      = (*WalletsRepo)(nil)
	_ repo.Transactions = (*TransactionsRepo)(nil)
	_ repo.AuditLogs    = (*AuditLogsRepo)(nil)
)
