package controller

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/rryowa/foodcombo/internal/models"
	"github.com/rryowa/foodcombo/internal/service"
	"github.com/rryowa/foodcombo/internal/util"
)

type ErrorResponse struct {
	Reason string `json:"reason"`
}

type AuthService interface {
	Register(ctx context.Context, email, password, name string) (*models.Session, error)
	Login(ctx context.Context, email, password string) (*models.Session, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
	Logout(ctx context.Context, refreshToken string) error
}

type OrderService interface {
	CreateOrder(ctx context.Context, userID int64, req models.CreateOrderRequest) (*models.CreateOrderResponse, error)
	GetUserOrders(ctx context.Context, userID int64) ([]models.Order, error)
	GetOrderByID(ctx context.Context, orderID, userID int64) (*models.Order, error)
	HandlePaymentNotification(ctx context.Context, paymentID string) error
}

type MenuService interface {
	Menu() []models.Card
}

type Controller struct {
	zapLogger      *zap.SugaredLogger
	authService    AuthService
	orderService   OrderService
	paymentService service.PaymentProvider
	menuService    MenuService
	cookieSecure   bool
	refreshTTL     time.Duration
}

func NewController(
	logger *zap.SugaredLogger,
	authService AuthService,
	orderService OrderService,
	paymentService service.PaymentProvider,
	menuService MenuService,
	cfg *util.Config,
) *Controller {
	return &Controller{
		zapLogger:      logger,
		authService:    authService,
		orderService:   orderService,
		paymentService: paymentService,
		menuService:    menuService,
		cookieSecure:   cfg.Cookie.Secure,
		refreshTTL:     cfg.Token.RefreshTTL,
	}
}

// (GET /ping).
func (c *Controller) CheckServer(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, "ok")
}

// (GET /cards/menu).
func (c *Controller) GetMenu(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, c.menuService.Menu())
}

// principal returns the caller attached by the auth gate.
func principal(ctx echo.Context) (models.Principal, error) {
	p, ok := ctx.Get(models.MwPrincipalKey).(models.Principal)
	if !ok {
		return models.Principal{}, service.ErrNotAuthenticated
	}
	return p, nil
}

func bind(ctx echo.Context, dst any) error {
	if err := ctx.Bind(dst); err != nil {
		var he *echo.HTTPError
		if errors.As(err, &he) {
			return util.BadRequest("invalid request body: %v", he.Message)
		}
		return util.BadRequest("invalid request body: %v", err)
	}
	return nil
}
