package service

import (
	"encoding/hex"
	"strconv"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rryowa/foodcombo/internal/util"
)

var testSecret = []byte("test-secret")

func newTestTokenService() *TokenService {
	return NewTokenService(util.TokenConfig{
		JwtSecretKey: testSecret,
		AccessTTL:    15 * time.Minute,
		RefreshTTL:   7 * 24 * time.Hour,
	})
}

func TestTokenService_AccessTokenRoundTrip(t *testing.T) {
	ts := newTestTokenService()

	token, err := ts.IssueAccessToken(42, "a@b.com")
	require.NoError(t, err)

	claims, err := ts.ParseAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "a@b.com", claims.Email)

	again, err := ts.IssueAccessToken(42, "a@b.com")
	require.NoError(t, err)
	assert.NotEqual(t, token, again)
}

func TestTokenService_ParseAccessToken_Errors(t *testing.T) {
	ts := newTestTokenService()

	ts.now = func() time.Time { return time.Now().Add(-time.Hour) }
	expired, err := ts.IssueAccessToken(1, "a@b.com")
	require.NoError(t, err)
	ts.now = time.Now

	other := NewTokenService(util.TokenConfig{JwtSecretKey: []byte("other"), AccessTTL: time.Minute})
	foreign, err := other.IssueAccessToken(1, "a@b.com")
	require.NoError(t, err)

	hs256, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   strconv.Itoa(1),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}).SignedString(testSecret)
	require.NoError(t, err)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.RegisteredClaims{
		Subject: "1",
	}).SignedString(testSecret)
	require.NoError(t, err)

	badSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.RegisteredClaims{
		Subject:   "not-a-number",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}).SignedString(testSecret)
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{name: "expired", token: expired, wantErr: ErrTokenExpired},
		{name: "wrong secret", token: foreign, wantErr: ErrTokenInvalid},
		{name: "wrong algorithm", token: hs256, wantErr: ErrTokenInvalid},
		{name: "missing exp", token: noExp, wantErr: ErrTokenInvalid},
		{name: "bad subject", token: badSubject, wantErr: ErrTokenInvalid},
		{name: "garbage", token: "not.a.jwt", wantErr: ErrTokenInvalid},
		{name: "empty", token: "", wantErr: ErrTokenInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ts.ParseAccessToken(tt.token)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestTokenService_IssueRefreshToken(t *testing.T) {
	ts := newTestTokenService()

	first, err := ts.IssueRefreshToken()
	require.NoError(t, err)
	second, err := ts.IssueRefreshToken()
	require.NoError(t, err)

	assert.Len(t, first, 2*util.RefreshTokenLength)
	_, err = hex.DecodeString(first)
	assert.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestHashRefreshToken(t *testing.T) {
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", HashRefreshToken("abc"))
}
