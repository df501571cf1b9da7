package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UserStore defines persistence operations for users.
type UserStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	// GetByUsernameOrEmail returns the first user whose username or email
	// matches. Empty arguments never match.
	GetByUsernameOrEmail(ctx context.Context, username, email string) (User, error)
	Create(ctx context.Context, user User) (User, error)
	// SetRefreshTokenHash overwrites the stored refresh digest. A nil hash
	// clears it.
	SetRefreshTokenHash(ctx context.Context, id uuid.UUID, hash []byte) error
	// RotateRefreshTokenHash replaces the stored digest only if it still
	// equals oldHash. It returns ErrTokenSuperseded otherwise.
	RotateRefreshTokenHash(ctx context.Context, id uuid.UUID, oldHash, newHash []byte) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash []byte) error
	UpdateAccount(ctx context.Context, id uuid.UUID, fullName, email string) (User, error)
	UpdateAvatar(ctx context.Context, id uuid.UUID, avatar Media) (User, error)
	UpdateCoverImage(ctx context.Context, id uuid.UUID, cover Media) (User, error)
}

// User represents a stored user with authentication material.
type User struct {
	ID               uuid.UUID
	Username         string
	Email            string
	FullName         string
	Avatar           Media
	CoverImage       Media
	PasswordHash     []byte
	RefreshTokenHash []byte
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// PublicUser is the sanitized wire form of a user. It never carries
// credentials.
type PublicUser struct {
	ID         uuid.UUID `json:"_id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	FullName   string    `json:"fullname"`
	Avatar     string    `json:"avatar"`
	CoverImage string    `json:"coverImage"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Public returns the sanitized form of u.
func (u User) Public() PublicUser {
	return PublicUser{
		ID:         u.ID,
		Username:   u.Username,
		Email:      u.Email,
		FullName:   u.FullName,
		Avatar:     u.Avatar.URL,
		CoverImage: u.CoverImage.URL,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

// RegisterParams contains parameters to register a user. AvatarPath and
// CoverImagePath point to uploaded files in the local temp directory.
type RegisterParams struct {
	FullName       string
	Email          string
	Username       string
	Password       string
	AvatarPath     string
	CoverImagePath string
}

// LoginParams contains login credentials. Either Email or Username identifies
// the user.
type LoginParams struct {
	Email    string
	Username string
	Password string
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	User   PublicUser
	Tokens TokenPair
}
