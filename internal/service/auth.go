package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/rryowa/foodcombo/internal/models"
	"github.com/rryowa/foodcombo/internal/storage"
)

const passwordHashCost = bcrypt.DefaultCost

type AuthService struct {
	users  storage.UserRepository
	tokens *TokenService
	log    *zap.SugaredLogger
	now    func() time.Time
}

func NewAuthService(users storage.UserRepository, tokens *TokenService, log *zap.SugaredLogger) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
		log:    log,
		now:    time.Now,
	}
}

func (s *AuthService) Register(ctx context.Context, email, password, name string) (*models.Session, error) {
	_, err := s.users.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, ErrUserExists
	case !errors.Is(err, storage.ErrUserNotFound):
		return nil, fmt.Errorf("get user by email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), passwordHashCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.CreateUser(ctx, email, string(hash), name)
	if err != nil {
		if errors.Is(err, storage.ErrUserExists) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.log.Infow("User registered", "userID", user.ID)

	return s.startSession(ctx, user)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*models.Session, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.startSession(ctx, user)
}

// Refresh mints a new access token for the owner of refreshToken.
// The refresh token itself is left in place.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", ErrRefreshTokenMissing
	}

	user, err := s.verifyRefreshToken(ctx, refreshToken)
	if err != nil {
		return "", err
	}

	accessToken, err := s.tokens.IssueAccessToken(user.ID, user.Email)
	if err != nil {
		return "", fmt.Errorf("issue access token: %w", err)
	}
	return accessToken, nil
}

// Logout clears the stored refresh token of whoever owns refreshToken.
// An unknown or empty token is not an error.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}

	user, err := s.users.GetUserByRefreshTokenHash(ctx, HashRefreshToken(refreshToken))
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil
		}
		return fmt.Errorf("get user by refresh token: %w", err)
	}

	if err := s.users.UpdateRefreshToken(ctx, user.ID, nil); err != nil && !errors.Is(err, storage.ErrUserNotFound) {
		return fmt.Errorf("clear refresh token: %w", err)
	}
	s.log.Infow("User logged out", "userID", user.ID)
	return nil
}

// Authenticate decides whether a request may pass the gate. A valid access
// token wins outright. Otherwise a live refresh token is accepted and a new
// access token is returned with the principal.
func (s *AuthService) Authenticate(ctx context.Context, bearer, refreshToken string) (models.Authentication, error) {
	if bearer != "" {
		claims, err := s.tokens.ParseAccessToken(bearer)
		if err == nil {
			if _, err := s.users.GetUserByID(ctx, claims.UserID); err != nil {
				if errors.Is(err, storage.ErrUserNotFound) {
					return models.Authentication{}, ErrUserNotFound
				}
				return models.Authentication{}, fmt.Errorf("get user by id: %w", err)
			}
			return models.Authentication{
				Principal: models.Principal{ID: claims.UserID, Email: claims.Email},
			}, nil
		}
		s.log.Debugw("Access token rejected, trying refresh token", "error", err)
	}

	if refreshToken != "" {
		user, err := s.verifyRefreshToken(ctx, refreshToken)
		if err == nil {
			accessToken, err := s.tokens.IssueAccessToken(user.ID, user.Email)
			if err != nil {
				return models.Authentication{}, fmt.Errorf("issue access token: %w", err)
			}
			return models.Authentication{
				Principal:          user.Principal(),
				RotatedAccessToken: accessToken,
			}, nil
		}
		if !IsUnauthorized(err) {
			return models.Authentication{}, err
		}
		s.log.Debugw("Refresh token rejected", "error", err)
	}

	return models.Authentication{}, ErrNotAuthenticated
}

func (s *AuthService) startSession(ctx context.Context, user *models.User) (*models.Session, error) {
	accessToken, err := s.tokens.IssueAccessToken(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}

	refreshToken, err := s.tokens.IssueRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}

	expiresAt := s.now().Add(s.tokens.RefreshTTL())
	stored := &models.RefreshToken{Hash: HashRefreshToken(refreshToken), ExpiresAt: expiresAt}
	if err := s.users.UpdateRefreshToken(ctx, user.ID, stored); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	return &models.Session{
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		RefreshExpiresAt: expiresAt,
		User:             user.Public(),
	}, nil
}

func (s *AuthService) verifyRefreshToken(ctx context.Context, refreshToken string) (*models.User, error) {
	hash := HashRefreshToken(refreshToken)

	user, err := s.users.GetUserByRefreshTokenHash(ctx, hash)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, ErrRefreshTokenInvalid
		}
		return nil, fmt.Errorf("get user by refresh token: %w", err)
	}
	if user.RefreshToken == nil {
		return nil, ErrRefreshTokenInvalid
	}
	if !s.now().Before(user.RefreshToken.ExpiresAt) {
		return nil, ErrRefreshTokenExpired
	}

	// Re-read by id; the token may have been overwritten since the lookup.
	current, err := s.users.GetUserByID(ctx, user.ID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, ErrRefreshTokenInvalid
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	if current.RefreshToken == nil ||
		subtle.ConstantTimeCompare([]byte(current.RefreshToken.Hash), []byte(hash)) != 1 {
		return nil, ErrRefreshTokenInvalid
	}

	return current, nil
}
