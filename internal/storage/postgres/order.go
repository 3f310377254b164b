package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rryowa/foodcombo/internal/models"
	"github.com/rryowa/foodcombo/internal/storage"
)

const selectOrder = `SELECT o.id, o.user_id, o.items, o.total_amount, o.status, o.phone, o.delivery_type, o.address, o.payment_id, o.created_at, o.updated_at, u.id, u.email, u.name FROM orders o JOIN users u ON u.id = o.user_id`

type rowScanner interface {
	Scan(dest ...any) error
}

type OrderRepository struct {
	db storage.DBTX
}

func NewOrderRepository(db storage.DBTX) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) CreateOrder(ctx context.Context, order models.Order) (*models.Order, error) {
	items, err := json.Marshal(order.Items)
	if err != nil {
		return nil, fmt.Errorf("marshal order items: %w", err)
	}

	query := `INSERT INTO orders (user_id, items, total_amount, status, phone, delivery_type, address) VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	var id int64
	err = r.db.QueryRowContext(
		ctx,
		query,
		order.UserID,
		string(items),
		order.TotalAmount,
		order.Status,
		order.Phone,
		order.DeliveryType,
		order.Address,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to insert order: %w", err)
	}

	return r.getOrder(ctx, selectOrder+` WHERE o.id = $1`, id)
}

func (r *OrderRepository) SetOrderPaymentID(ctx context.Context, orderID int64, paymentID string) (*models.Order, error) {
	query := `UPDATE orders SET payment_id = $1, updated_at = NOW() WHERE id = $2`
	if err := r.execAffectingOrder(ctx, query, paymentID, orderID); err != nil {
		return nil, fmt.Errorf("set payment id: %w", err)
	}
	return r.getOrder(ctx, selectOrder+` WHERE o.id = $1`, orderID)
}

func (r *OrderRepository) UpdateOrderStatus(ctx context.Context, orderID int64, status string) (*models.Order, error) {
	query := `UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2`
	if err := r.execAffectingOrder(ctx, query, status, orderID); err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}
	return r.getOrder(ctx, selectOrder+` WHERE o.id = $1`, orderID)
}

func (r *OrderRepository) GetUserOrders(ctx context.Context, userID int64) ([]models.Order, error) {
	rows, err := r.db.QueryContext(ctx, selectOrder+` WHERE o.user_id = $1 ORDER BY o.created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user orders: %w", err)
	}
	defer rows.Close()

	orders := make([]models.Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate orders: %w", err)
	}
	return orders, nil
}

func (r *OrderRepository) GetOrderByID(ctx context.Context, orderID, userID int64) (*models.Order, error) {
	return r.getOrder(ctx, selectOrder+` WHERE o.id = $1 AND o.user_id = $2`, orderID, userID)
}

func (r *OrderRepository) GetOrderByPaymentID(ctx context.Context, paymentID string) (*models.Order, error) {
	return r.getOrder(ctx, selectOrder+` WHERE o.payment_id = $1`, paymentID)
}

func (r *OrderRepository) getOrder(ctx context.Context, query string, args ...any) (*models.Order, error) {
	order, err := scanOrder(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return order, nil
}

func (r *OrderRepository) execAffectingOrder(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return storage.ErrOrderNotFound
	}
	return nil
}

func scanOrder(row rowScanner) (*models.Order, error) {
	var (
		order     models.Order
		items     []byte
		address   sql.NullString
		paymentID sql.NullString
	)
	err := row.Scan(
		&order.ID,
		&order.UserID,
		&items,
		&order.TotalAmount,
		&order.Status,
		&order.Phone,
		&order.DeliveryType,
		&address,
		&paymentID,
		&order.CreatedAt,
		&order.UpdatedAt,
		&order.User.ID,
		&order.User.Email,
		&order.User.Name,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(items, &order.Items); err != nil {
		return nil, fmt.Errorf("unmarshal order items: %w", err)
	}
	if address.Valid {
		order.Address = &address.String
	}
	if paymentID.Valid {
		order.PaymentID = &paymentID.String
	}
	return &order, nil
}
