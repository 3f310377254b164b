package models

import "time"

type User struct {
	ID           int64
	Email        string
	PasswordHash string
	Name         string
	RefreshToken *RefreshToken
	CreatedAt    time.Time
}

// RefreshToken is the persisted form of a user's single active refresh token.
// Only the SHA-256 of the raw value is stored.
type RefreshToken struct {
	Hash      string
	ExpiresAt time.Time
}

type PublicUser struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Email: u.Email, Name: u.Name}
}

func (u *User) Principal() Principal {
	return Principal{ID: u.ID, Email: u.Email}
}
