package models

//nolint:gosec //file not handles sensitive data
const (
	RefreshTokenCookie   = "refresh_token"
	NewAccessTokenHeader = "x-new-access-token"

	MwPrincipalKey = "principal"
)

// Principal is the authenticated caller attached to a request,
// whichever credential the gate accepted.
type Principal struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
