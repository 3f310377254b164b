package postgres

import (
	"database/sql"
)

// Storage bundles the repositories over one connection pool and
// satisfies storage.Storage.
type Storage struct {
	*UserRepository
	*OrderRepository
}

func NewStorage(db *sql.DB) *Storage {
	return &Storage{
		UserRepository:  NewUserRepository(db),
		OrderRepository: NewOrderRepository(db),
	}
}
