package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/rryowa/foodcombo/internal/controller"
	"github.com/rryowa/foodcombo/internal/service"
	"github.com/rryowa/foodcombo/internal/util"
)

func ErrorHandler(log *zap.SugaredLogger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, reason := statusFor(err)
		if status >= http.StatusInternalServerError {
			log.Errorw("Request failed", "error", err, "uri", c.Request().RequestURI)
		}

		if err := c.JSON(status, controller.ErrorResponse{Reason: reason}); err != nil {
			log.Errorw("failed to write json response", "error", err)
		}
	}
}

func statusFor(err error) (int, string) {
	var respErr util.MyResponseError
	var he *echo.HTTPError

	switch {
	case service.IsUnauthorized(err):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, service.ErrUserExists):
		return http.StatusConflict, err.Error()
	case errors.Is(err, service.ErrOrderNotFound), errors.Is(err, service.ErrPaymentNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, service.ErrInvalidOrder):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrPaymentProvider):
		return http.StatusBadGateway, service.ErrPaymentProvider.Error()
	case errors.As(err, &respErr):
		return respErr.Status, respErr.Msg
	case errors.As(err, &he):
		return he.Code, httpErrorMessage(he)
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

func httpErrorMessage(he *echo.HTTPError) string {
	switch m := he.Message.(type) {
	case string:
		return m
	case error:
		return m.Error()
	default:
		return fmt.Sprint(m)
	}
}
