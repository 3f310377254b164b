package storage

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rryowa/foodcombo/internal/models"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrUserExists    = errors.New("user already exists")
	ErrOrderNotFound = errors.New("order not found")
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Storage interface {
	UserRepository
	OrderRepository
}

type UserRepository interface {
	CreateUser(ctx context.Context, email, passwordHash, name string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByRefreshTokenHash(ctx context.Context, hash string) (*models.User, error)
	// UpdateRefreshToken overwrites the user's refresh token; nil clears it.
	UpdateRefreshToken(ctx context.Context, userID int64, token *models.RefreshToken) error
}

type OrderRepository interface {
	CreateOrder(ctx context.Context, order models.Order) (*models.Order, error)
	SetOrderPaymentID(ctx context.Context, orderID int64, paymentID string) (*models.Order, error)
	GetUserOrders(ctx context.Context, userID int64) ([]models.Order, error)
	GetOrderByID(ctx context.Context, orderID, userID int64) (*models.Order, error)
	GetOrderByPaymentID(ctx context.Context, paymentID string) (*models.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID int64, status string) (*models.Order, error)
}
