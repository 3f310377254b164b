package memory

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rryowa/foodcombo/internal/models"
	"github.com/rryowa/foodcombo/internal/storage"
)

// Storage is a process-local implementation of storage.Storage for
// development and tests. Values are copied in and out so callers never
// share memory with the store.
type Storage struct {
	mu     sync.RWMutex
	users  map[int64]models.User
	orders map[int64]models.Order
	nextID struct{ user, order int64 }
	log    *zap.SugaredLogger
}

func NewStorage(log *zap.SugaredLogger) *Storage {
	return &Storage{
		users:  make(map[int64]models.User),
		orders: make(map[int64]models.Order),
		log:    log,
	}
}

func (m *Storage) CreateUser(_ context.Context, email, passwordHash, name string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Email == email {
			return nil, storage.ErrUserExists
		}
	}

	m.nextID.user++
	user := models.User{
		ID:           m.nextID.user,
		Email:        email,
		PasswordHash: passwordHash,
		Name:         name,
		CreatedAt:    time.Now(),
	}
	m.users[user.ID] = user
	m.log.Debugw("User created", "userID", user.ID)

	return copyUser(user), nil
}

func (m *Storage) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if u.Email == email {
			return copyUser(u), nil
		}
	}
	return nil, storage.ErrUserNotFound
}

func (m *Storage) GetUserByID(_ context.Context, id int64) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	return copyUser(u), nil
}

func (m *Storage) GetUserByRefreshTokenHash(_ context.Context, hash string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if u.RefreshToken != nil && u.RefreshToken.Hash == hash {
			return copyUser(u), nil
		}
	}
	return nil, storage.ErrUserNotFound
}

func (m *Storage) UpdateRefreshToken(_ context.Context, userID int64, token *models.RefreshToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[userID]
	if !ok {
		return storage.ErrUserNotFound
	}
	if token == nil {
		u.RefreshToken = nil
	} else {
		t := *token
		u.RefreshToken = &t
	}
	m.users[userID] = u
	return nil
}

func copyUser(u models.User) *models.User {
	if u.RefreshToken != nil {
		t := *u.RefreshToken
		u.RefreshToken = &t
	}
	return &u
}
