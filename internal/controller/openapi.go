package controller

import (
	_ "embed"
	"fmt"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
)

//go:embed openapi/openapi.yaml
var swaggerSpec []byte

// GetSwagger returns the OpenAPI document the request validator checks against.
func GetSwagger() (*openapi3.T, error) {
	swagger, err := openapi3.NewLoader().LoadFromData(swaggerSpec)
	if err != nil {
		return nil, fmt.Errorf("load openapi spec: %w", err)
	}
	return swagger, nil
}

// EchoRouter is satisfied by *echo.Echo and *echo.Group.
type EchoRouter interface {
	GET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	POST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
}

// RouteMiddleware are the guards applied per route.
type RouteMiddleware struct {
	Gate       echo.MiddlewareFunc
	AccessOnly echo.MiddlewareFunc
	RateLimit  echo.MiddlewareFunc
}

// ServerInterfaceWrapper converts path parameters before calling the controller.
type ServerInterfaceWrapper struct {
	Handler *Controller
}

func (w *ServerInterfaceWrapper) GetOrderByID(ctx echo.Context) error {
	var id int64
	err := runtime.BindStyledParameterWithOptions("simple", "id", ctx.Param("id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter id: %s", err))
	}
	return w.Handler.GetOrderByID(ctx, id)
}

func (w *ServerInterfaceWrapper) GetPaymentStatus(ctx echo.Context) error {
	var paymentID string
	err := runtime.BindStyledParameterWithOptions("simple", "paymentId", ctx.Param("paymentId"), &paymentID,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter paymentId: %s", err))
	}
	return w.Handler.GetPaymentStatus(ctx, paymentID)
}

func RegisterHandlers(router EchoRouter, c *Controller, mw RouteMiddleware) {
	w := &ServerInterfaceWrapper{Handler: c}

	router.GET("/ping", c.CheckServer)
	router.GET("/cards/menu", c.GetMenu)

	router.POST("/auth/register", c.Register, mw.RateLimit)
	router.POST("/auth/login", c.Login, mw.RateLimit)
	router.POST("/auth/refresh", c.Refresh)
	router.POST("/auth/logout", c.Logout)
	router.GET("/auth/profile", c.Profile, mw.Gate)

	router.POST("/orders/create-order", c.CreateOrder, mw.Gate)
	router.GET("/orders/get-user-orders", c.GetUserOrders, mw.Gate)
	router.GET("/orders/:id", w.GetOrderByID, mw.Gate)

	router.POST("/payment/create", c.CreatePayment, mw.AccessOnly)
	router.GET("/payment/status/:paymentId", w.GetPaymentStatus, mw.AccessOnly)
	router.POST("/payment/notifications", c.PaymentNotification)
}
