package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rryowa/foodcombo/internal/models"
	"github.com/rryowa/foodcombo/internal/storage/memory"
)

type fakePaymentProvider struct {
	payments  map[string]*models.Payment
	createErr error
	calls     []string
}

func newFakePaymentProvider() *fakePaymentProvider {
	return &fakePaymentProvider{payments: make(map[string]*models.Payment)}
}

func (f *fakePaymentProvider) CreatePayment(_ context.Context, amount float64, description string) (*models.Payment, error) {
	f.calls = append(f.calls, description)
	if f.createErr != nil {
		return nil, f.createErr
	}
	id := fmt.Sprintf("pay-%d", len(f.payments)+1)
	p := &models.Payment{
		ID:     id,
		Status: models.PaymentStatusPending,
		Amount: models.Amount{Value: fmt.Sprintf("%.2f", amount), Currency: "RUB"},
		Confirmation: models.Confirmation{
			Type:            "redirect",
			ConfirmationURL: "https://pay.example/" + id,
		},
		Description: description,
	}
	f.payments[id] = p
	return p, nil
}

func (f *fakePaymentProvider) GetPayment(_ context.Context, paymentID string) (*models.Payment, error) {
	p, ok := f.payments[paymentID]
	if !ok {
		return nil, ErrPaymentNotFound
	}
	return p, nil
}

func newTestOrderService(t *testing.T) (*OrderService, *fakePaymentProvider, int64, int64) {
	t.Helper()
	ctx := context.Background()
	log := zap.NewNop().Sugar()
	store := memory.NewStorage(log)

	alice, err := store.CreateUser(ctx, "alice@b.com", "hash", "Alice")
	require.NoError(t, err)
	bob, err := store.CreateUser(ctx, "bob@b.com", "hash", "Bob")
	require.NoError(t, err)

	provider := newFakePaymentProvider()
	return NewOrderService(store, provider, log), provider, alice.ID, bob.ID
}

func validOrderRequest() models.CreateOrderRequest {
	return models.CreateOrderRequest{
		Items: []models.OrderItem{
			{ID: 1, Title: "Classic Combo", Price: 250.5, Quantity: 2},
			{ID: 6, Title: "Lemonade", Price: 100, Quantity: 1},
		},
		Phone:        "+79000000000",
		DeliveryType: models.DeliveryTypePickup,
	}
}

func TestOrderService_CreateOrder(t *testing.T) {
	s, provider, alice, _ := newTestOrderService(t)

	resp, err := s.CreateOrder(context.Background(), alice, validOrderRequest())
	require.NoError(t, err)

	assert.Equal(t, 601.0, resp.Order.TotalAmount)
	assert.Equal(t, models.OrderStatusPending, resp.Order.Status)
	assert.Equal(t, "alice@b.com", resp.Order.User.Email)
	require.NotNil(t, resp.Order.PaymentID)
	assert.Equal(t, resp.Payment.ID, *resp.Order.PaymentID)
	assert.Equal(t, "https://pay.example/"+resp.Payment.ID, resp.Payment.ConfirmationURL)
	assert.Equal(t, []string{fmt.Sprintf("Order #%d", resp.Order.ID)}, provider.calls)
	assert.Equal(t, "601.00", provider.payments[resp.Payment.ID].Amount.Value)
}

func TestOrderService_CreateOrder_Invalid(t *testing.T) {
	s, provider, alice, _ := newTestOrderService(t)

	tests := []struct {
		name   string
		mutate func(r *models.CreateOrderRequest)
	}{
		{name: "no items", mutate: func(r *models.CreateOrderRequest) { r.Items = nil }},
		{name: "no phone", mutate: func(r *models.CreateOrderRequest) { r.Phone = " " }},
		{name: "unknown delivery type", mutate: func(r *models.CreateOrderRequest) { r.DeliveryType = "drone" }},
		{name: "zero quantity", mutate: func(r *models.CreateOrderRequest) { r.Items[0].Quantity = 0 }},
		{name: "negative price", mutate: func(r *models.CreateOrderRequest) { r.Items[1].Price = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validOrderRequest()
			tt.mutate(&req)
			_, err := s.CreateOrder(context.Background(), alice, req)
			assert.ErrorIs(t, err, ErrInvalidOrder)
		})
	}
	assert.Empty(t, provider.calls)
}

func TestOrderService_CreateOrder_ProviderFailure(t *testing.T) {
	s, provider, alice, _ := newTestOrderService(t)
	ctx := context.Background()
	provider.createErr = fmt.Errorf("%w: status 500", ErrPaymentProvider)

	_, err := s.CreateOrder(ctx, alice, validOrderRequest())
	assert.ErrorIs(t, err, ErrPaymentProvider)

	orders, err := s.GetUserOrders(ctx, alice)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, models.OrderStatusPending, orders[0].Status)
	assert.Nil(t, orders[0].PaymentID)
}

func TestOrderService_GetOrders(t *testing.T) {
	s, _, alice, bob := newTestOrderService(t)
	ctx := context.Background()

	first, err := s.CreateOrder(ctx, alice, validOrderRequest())
	require.NoError(t, err)
	second, err := s.CreateOrder(ctx, alice, validOrderRequest())
	require.NoError(t, err)

	orders, err := s.GetUserOrders(ctx, alice)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, second.Order.ID, orders[0].ID)
	assert.Equal(t, first.Order.ID, orders[1].ID)

	bobOrders, err := s.GetUserOrders(ctx, bob)
	require.NoError(t, err)
	assert.Empty(t, bobOrders)

	got, err := s.GetOrderByID(ctx, first.Order.ID, alice)
	require.NoError(t, err)
	assert.Equal(t, first.Order.ID, got.ID)

	_, err = s.GetOrderByID(ctx, first.Order.ID, bob)
	assert.ErrorIs(t, err, ErrOrderNotFound)

	_, err = s.GetOrderByID(ctx, 999, alice)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestOrderService_HandlePaymentNotification(t *testing.T) {
	tests := []struct {
		name          string
		paymentStatus string
		wantStatus    string
	}{
		{name: "succeeded", paymentStatus: models.PaymentStatusSucceeded, wantStatus: models.OrderStatusPaid},
		{name: "canceled", paymentStatus: models.PaymentStatusCanceled, wantStatus: models.OrderStatusCanceled},
		{name: "waiting for capture", paymentStatus: models.PaymentStatusWaitingForCapture, wantStatus: models.OrderStatusPending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, provider, alice, _ := newTestOrderService(t)
			ctx := context.Background()

			resp, err := s.CreateOrder(ctx, alice, validOrderRequest())
			require.NoError(t, err)
			provider.payments[resp.Payment.ID].Status = tt.paymentStatus

			require.NoError(t, s.HandlePaymentNotification(ctx, resp.Payment.ID))

			order, err := s.GetOrderByID(ctx, resp.Order.ID, alice)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, order.Status)
		})
	}
}

func TestOrderService_HandlePaymentNotification_Unknown(t *testing.T) {
	s, provider, _, _ := newTestOrderService(t)
	ctx := context.Background()

	err := s.HandlePaymentNotification(ctx, "missing")
	assert.True(t, errors.Is(err, ErrPaymentNotFound))

	// A payment the provider knows but no order references.
	provider.payments["orphan"] = &models.Payment{ID: "orphan", Status: models.PaymentStatusSucceeded}
	assert.NoError(t, s.HandlePaymentNotification(ctx, "orphan"))
}
