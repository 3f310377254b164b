package service

import "errors"

var (
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrUserExists          = errors.New("user with this email already exists")
	ErrUserNotFound        = errors.New("user not found")
	ErrNotAuthenticated    = errors.New("not authenticated")
	ErrRefreshTokenMissing = errors.New("refresh token missing")
	ErrRefreshTokenInvalid = errors.New("refresh token invalid")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
	ErrTokenExpired        = errors.New("token expired")
	ErrTokenInvalid        = errors.New("token invalid")

	ErrOrderNotFound   = errors.New("order not found")
	ErrInvalidOrder    = errors.New("invalid order")
	ErrPaymentProvider = errors.New("payment provider error")
	ErrPaymentNotFound = errors.New("payment not found")
)

// IsUnauthorized reports whether err should be answered with 401.
func IsUnauthorized(err error) bool {
	for _, target := range []error{
		ErrInvalidCredentials,
		ErrUserNotFound,
		ErrNotAuthenticated,
		ErrRefreshTokenMissing,
		ErrRefreshTokenInvalid,
		ErrRefreshTokenExpired,
		ErrTokenExpired,
		ErrTokenInvalid,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
