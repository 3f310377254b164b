package models

import "time"

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// LoginRequest accepts name for parity with registration; it is ignored.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

type AuthResponse struct {
	AccessToken string     `json:"access_token"`
	User        PublicUser `json:"user"`
}

type AccessTokenResponse struct {
	AccessToken string `json:"access_token"`
}

type ProfileResponse struct {
	User Principal `json:"user"`
}

// Session is the result of a successful login: the access token for the body
// and the raw refresh token for the cookie.
type Session struct {
	AccessToken      string
	RefreshToken     string
	RefreshExpiresAt time.Time
	User             PublicUser
}

// Authentication is the request gate's decision. RotatedAccessToken is set
// only when the refresh cookie was used.
type Authentication struct {
	Principal          Principal
	RotatedAccessToken string
}
