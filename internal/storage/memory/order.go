package memory

import (
	"context"
	"sort"
	"time"

	"github.com/rryowa/foodcombo/internal/models"
	"github.com/rryowa/foodcombo/internal/storage"
)

func (m *Storage) CreateOrder(_ context.Context, order models.Order) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[order.UserID]
	if !ok {
		return nil, storage.ErrUserNotFound
	}

	m.nextID.order++
	now := time.Now()
	order.ID = m.nextID.order
	order.Items = append([]models.OrderItem(nil), order.Items...)
	order.CreatedAt = now
	order.UpdatedAt = now
	order.User = u.Public()
	m.orders[order.ID] = order

	return copyOrder(order), nil
}

func (m *Storage) SetOrderPaymentID(_ context.Context, orderID int64, paymentID string) (*models.Order, error) {
	return m.updateOrder(orderID, func(o *models.Order) { o.PaymentID = &paymentID })
}

func (m *Storage) UpdateOrderStatus(_ context.Context, orderID int64, status string) (*models.Order, error) {
	return m.updateOrder(orderID, func(o *models.Order) { o.Status = status })
}

func (m *Storage) GetUserOrders(_ context.Context, userID int64) ([]models.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	orders := make([]models.Order, 0)
	for _, o := range m.orders {
		if o.UserID == userID {
			orders = append(orders, *copyOrder(o))
		}
	}
	sort.Slice(orders, func(i, j int) bool {
		if orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].ID > orders[j].ID
		}
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders, nil
}

func (m *Storage) GetOrderByID(_ context.Context, orderID, userID int64) (*models.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	o, ok := m.orders[orderID]
	if !ok || o.UserID != userID {
		return nil, storage.ErrOrderNotFound
	}
	return copyOrder(o), nil
}

func (m *Storage) GetOrderByPaymentID(_ context.Context, paymentID string) (*models.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, o := range m.orders {
		if o.PaymentID != nil && *o.PaymentID == paymentID {
			return copyOrder(o), nil
		}
	}
	return nil, storage.ErrOrderNotFound
}

func (m *Storage) updateOrder(orderID int64, mutate func(o *models.Order)) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	o, ok := m.orders[orderID]
	if !ok {
		return nil, storage.ErrOrderNotFound
	}
	mutate(&o)
	o.UpdatedAt = time.Now()
	m.orders[orderID] = o
	return copyOrder(o), nil
}

func copyOrder(o models.Order) *models.Order {
	o.Items = append([]models.OrderItem(nil), o.Items...)
	if o.Address != nil {
		a := *o.Address
		o.Address = &a
	}
	if o.PaymentID != nil {
		p := *o.PaymentID
		o.PaymentID = &p
	}
	return &o
}
