package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/rryowa/foodcombo/internal/models"
	"github.com/rryowa/foodcombo/internal/storage"
)

type OrderService struct {
	orders   storage.OrderRepository
	payments PaymentProvider
	log      *zap.SugaredLogger
}

func NewOrderService(orders storage.OrderRepository, payments PaymentProvider, log *zap.SugaredLogger) *OrderService {
	return &OrderService{orders: orders, payments: payments, log: log}
}

// CreateOrder stores a pending order and opens a payment for its total.
// When the provider fails the order is kept pending without a payment id.
func (s *OrderService) CreateOrder(ctx context.Context, userID int64, req models.CreateOrderRequest) (*models.CreateOrderResponse, error) {
	if err := validateOrder(req); err != nil {
		return nil, err
	}

	order, err := s.orders.CreateOrder(ctx, models.Order{
		UserID:       userID,
		Items:        req.Items,
		TotalAmount:  orderTotal(req.Items),
		Status:       models.OrderStatusPending,
		Phone:        req.Phone,
		DeliveryType: req.DeliveryType,
		Address:      req.Address,
	})
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	payment, err := s.payments.CreatePayment(ctx, order.TotalAmount, fmt.Sprintf("Order #%d", order.ID))
	if err != nil {
		s.log.Errorw("Failed to create payment", "orderID", order.ID, "error", err)
		return nil, err
	}

	order, err = s.orders.SetOrderPaymentID(ctx, order.ID, payment.ID)
	if err != nil {
		return nil, fmt.Errorf("set payment id: %w", err)
	}
	s.log.Infow("Order created", "orderID", order.ID, "paymentID", payment.ID)

	return &models.CreateOrderResponse{
		Order: *order,
		Payment: models.OrderPayment{
			ID:              payment.ID,
			ConfirmationURL: payment.Confirmation.ConfirmationURL,
		},
	}, nil
}

func (s *OrderService) GetUserOrders(ctx context.Context, userID int64) ([]models.Order, error) {
	orders, err := s.orders.GetUserOrders(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user orders: %w", err)
	}
	return orders, nil
}

func (s *OrderService) GetOrderByID(ctx context.Context, orderID, userID int64) (*models.Order, error) {
	order, err := s.orders.GetOrderByID(ctx, orderID, userID)
	if err != nil {
		if errors.Is(err, storage.ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return order, nil
}

// HandlePaymentNotification re-reads the payment from the provider rather than
// trusting the notification body, then moves the matching order along.
func (s *OrderService) HandlePaymentNotification(ctx context.Context, paymentID string) error {
	payment, err := s.payments.GetPayment(ctx, paymentID)
	if err != nil {
		return err
	}

	var status string
	switch payment.Status {
	case models.PaymentStatusSucceeded:
		status = models.OrderStatusPaid
	case models.PaymentStatusCanceled:
		status = models.OrderStatusCanceled
	default:
		s.log.Debugw("Payment status ignored", "paymentID", paymentID, "status", payment.Status)
		return nil
	}

	order, err := s.orders.GetOrderByPaymentID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, storage.ErrOrderNotFound) {
			s.log.Warnw("No order for payment", "paymentID", paymentID)
			return nil
		}
		return fmt.Errorf("get order by payment: %w", err)
	}
	if order.Status == status {
		return nil
	}

	if _, err := s.orders.UpdateOrderStatus(ctx, order.ID, status); err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	s.log.Infow("Order status updated", "orderID", order.ID, "status", status)
	return nil
}

func validateOrder(req models.CreateOrderRequest) error {
	if len(req.Items) == 0 {
		return fmt.Errorf("%w: no items", ErrInvalidOrder)
	}
	if strings.TrimSpace(req.Phone) == "" {
		return fmt.Errorf("%w: phone is required", ErrInvalidOrder)
	}
	if req.DeliveryType != models.DeliveryTypePickup && req.DeliveryType != models.DeliveryTypeDelivery {
		return fmt.Errorf("%w: unknown delivery type %q", ErrInvalidOrder, req.DeliveryType)
	}
	for _, item := range req.Items {
		if item.Quantity < 1 {
			return fmt.Errorf("%w: item %d quantity must be at least 1", ErrInvalidOrder, item.ID)
		}
		if item.Price < 0 {
			return fmt.Errorf("%w: item %d price must not be negative", ErrInvalidOrder, item.ID)
		}
	}
	return nil
}

func orderTotal(items []models.OrderItem) float64 {
	var total float64
	for _, item := range items {
		total += item.Price * float64(item.Quantity)
	}
	return total
}
