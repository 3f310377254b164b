package controller

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/rryowa/foodcombo/internal/models"
	"github.com/rryowa/foodcombo/internal/service"
	"github.com/rryowa/foodcombo/internal/util"
)

const minPaymentAmount = 1

// (POST /payment/create).
func (c *Controller) CreatePayment(ctx echo.Context) error {
	var req models.CreatePaymentRequest
	if err := bind(ctx, &req); err != nil {
		return err
	}
	if req.Amount < minPaymentAmount {
		return util.BadRequest("amount must be at least %d", minPaymentAmount)
	}
	if strings.TrimSpace(req.Description) == "" {
		return util.BadRequest("description is required")
	}

	payment, err := c.paymentService.CreatePayment(ctx.Request().Context(), req.Amount, req.Description)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, payment)
}

// (GET /payment/status/{paymentId}).
func (c *Controller) GetPaymentStatus(ctx echo.Context, paymentID string) error {
	payment, err := c.paymentService.GetPayment(ctx.Request().Context(), paymentID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, payment)
}

// (POST /payment/notifications).
// The body is only used for the payment id; the status is re-read from the provider.
func (c *Controller) PaymentNotification(ctx echo.Context) error {
	var n models.PaymentNotification
	if err := bind(ctx, &n); err != nil {
		return err
	}
	if n.Object.ID == "" {
		return util.BadRequest("payment id is missing")
	}

	err := c.orderService.HandlePaymentNotification(ctx.Request().Context(), n.Object.ID)
	if errors.Is(err, service.ErrPaymentNotFound) {
		c.zapLogger.Warnw("Notification for unknown payment", "paymentID", n.Object.ID, "event", n.Event)
		err = nil
	}
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, models.MessageResponse{Message: "ok"})
}
