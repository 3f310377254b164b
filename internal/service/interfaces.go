package service

import (
	"context"

	"github.com/rryowa/foodcombo/internal/models"
)

// PaymentProvider creates and looks up payments at the acquirer.
type PaymentProvider interface {
	CreatePayment(ctx context.Context, amount float64, description string) (*models.Payment, error)
	GetPayment(ctx context.Context, paymentID string) (*models.Payment, error)
}
