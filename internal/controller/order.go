package controller

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rryowa/foodcombo/internal/models"
)

// (POST /orders/create-order).
func (c *Controller) CreateOrder(ctx echo.Context) error {
	p, err := principal(ctx)
	if err != nil {
		return err
	}

	var req models.CreateOrderRequest
	if err := bind(ctx, &req); err != nil {
		return err
	}

	resp, err := c.orderService.CreateOrder(ctx.Request().Context(), p.ID, req)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, resp)
}

// (GET /orders/get-user-orders).
func (c *Controller) GetUserOrders(ctx echo.Context) error {
	p, err := principal(ctx)
	if err != nil {
		return err
	}

	orders, err := c.orderService.GetUserOrders(ctx.Request().Context(), p.ID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, orders)
}

// (GET /orders/{id}).
func (c *Controller) GetOrderByID(ctx echo.Context, id int64) error {
	p, err := principal(ctx)
	if err != nil {
		return err
	}

	order, err := c.orderService.GetOrderByID(ctx.Request().Context(), id, p.ID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, order)
}
