package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/rryowa/foodcombo/internal/models"
	"github.com/rryowa/foodcombo/internal/storage"
)

const uniqueViolationCode = "23505"

const selectUser = `SELECT id, email, password_hash, name, refresh_token_hash, refresh_token_expires_at, created_at FROM users`

type UserRepository struct {
	db storage.DBTX
}

func NewUserRepository(db storage.DBTX) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) CreateUser(ctx context.Context, email, passwordHash, name string) (*models.User, error) {
	user := models.User{Email: email, PasswordHash: passwordHash, Name: name}
	query := `INSERT INTO users (email, password_hash, name) VALUES ($1, $2, $3) RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query, email, passwordHash, name).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolationCode {
			return nil, storage.ErrUserExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &user, nil
}

func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := r.scanUser(r.db.QueryRowContext(ctx, selectUser+` WHERE email = $1`, email))
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return user, nil
}

func (r *UserRepository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	user, err := r.scanUser(r.db.QueryRowContext(ctx, selectUser+` WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return user, nil
}

func (r *UserRepository) GetUserByRefreshTokenHash(ctx context.Context, hash string) (*models.User, error) {
	user, err := r.scanUser(r.db.QueryRowContext(ctx, selectUser+` WHERE refresh_token_hash = $1`, hash))
	if err != nil {
		return nil, fmt.Errorf("get user by refresh token: %w", err)
	}
	return user, nil
}

func (r *UserRepository) UpdateRefreshToken(ctx context.Context, userID int64, token *models.RefreshToken) error {
	var (
		hash      sql.NullString
		expiresAt sql.NullTime
	)
	if token != nil {
		hash = sql.NullString{String: token.Hash, Valid: true}
		expiresAt = sql.NullTime{Time: token.ExpiresAt, Valid: true}
	}

	query := `UPDATE users SET refresh_token_hash = $1, refresh_token_expires_at = $2 WHERE id = $3`
	res, err := r.db.ExecContext(ctx, query, hash, expiresAt, userID)
	if err != nil {
		return fmt.Errorf("failed to update refresh token: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update refresh token: %w", err)
	}
	if n == 0 {
		return storage.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) scanUser(row *sql.Row) (*models.User, error) {
	var (
		user      models.User
		hash      sql.NullString
		expiresAt sql.NullTime
	)
	err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.Name, &hash, &expiresAt, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrUserNotFound
		}
		return nil, err
	}
	if hash.Valid {
		user.RefreshToken = &models.RefreshToken{Hash: hash.String, ExpiresAt: expiresAt.Time}
	}
	return &user, nil
}
