package service

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dtroode/videotube-server/internal/apierror"
	"github.com/dtroode/videotube-server/internal/logger"
	"github.com/dtroode/videotube-server/internal/model"
)

const (
	msgInvalidAccessToken  = "invalid access token"
	msgInvalidRefreshToken = "invalid refresh token"
	msgRefreshTokenUsed    = "refresh token is expired or used"
)

// TokenService issues, verifies, rotates and revokes session tokens.
// Only the SHA-256 digest of the single active refresh token is persisted
// on the user record.
type TokenService struct {
	manager model.TokenManager
	users   model.UserStore
	logger  *logger.Logger
}

func NewTokenService(manager model.TokenManager, users model.UserStore, logger *logger.Logger) *TokenService {
	return &TokenService{manager: manager, users: users, logger: logger}
}

// IssuePair mints a new token pair and makes its refresh token the only
// valid one for the user.
func (s *TokenService) IssuePair(ctx context.Context, userID uuid.UUID) (model.TokenPair, error) {
	pair, hash, err := s.mint(userID)
	if err != nil {
		return model.TokenPair{}, err
	}

	if err := s.users.SetRefreshTokenHash(ctx, userID, hash); err != nil {
		s.logger.Error("Token service: failed to persist refresh token",
			"user_id", userID,
			"error", err.Error())
		return model.TokenPair{}, fmt.Errorf("failed to persist refresh token: %w", err)
	}

	return pair, nil
}

// VerifyAccess checks signature, expiry and type of an access token.
func (s *TokenService) VerifyAccess(_ context.Context, token string) (uuid.UUID, error) {
	if token == "" {
		return uuid.Nil, apierror.Unauthorized("unauthorized request")
	}

	userID, err := s.manager.ParseAccessToken(token)
	if err != nil {
		return uuid.Nil, apierror.Unauthorized(msgInvalidAccessToken).WithCause(err)
	}
	if userID == uuid.Nil {
		return uuid.Nil, apierror.Unauthorized(msgInvalidAccessToken)
	}

	return userID, nil
}

// VerifyAndRotateRefresh accepts a refresh token only if it is the one
// currently stored for its user, then replaces it with a new pair. Of two
// concurrent rotations of the same token exactly one succeeds.
func (s *TokenService) VerifyAndRotateRefresh(ctx context.Context, token string) (model.TokenPair, error) {
	userID, _, err := s.manager.ParseRefreshToken(token)
	if err != nil {
		return model.TokenPair{}, apierror.Unauthorized(msgInvalidRefreshToken).WithCause(err)
	}

	user, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, model.ErrNotFound) {
		return model.TokenPair{}, apierror.Unauthorized(msgInvalidRefreshToken)
	}
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("failed to get user by id: %w", err)
	}

	presented := hashRefresh(token)
	if user.RefreshTokenHash == nil || !equalBytes(user.RefreshTokenHash, presented) {
		s.logger.Info("Token service: stale refresh token presented",
			"user_id", userID)
		return model.TokenPair{}, apierror.Unauthorized(msgRefreshTokenUsed)
	}

	pair, hash, err := s.mint(userID)
	if err != nil {
		return model.TokenPair{}, err
	}

	err = s.users.RotateRefreshTokenHash(ctx, userID, presented, hash)
	if errors.Is(err, model.ErrTokenSuperseded) {
		s.logger.Info("Token service: refresh token rotated concurrently",
			"user_id", userID)
		return model.TokenPair{}, apierror.Unauthorized(msgRefreshTokenUsed)
	}
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("failed to rotate refresh token: %w", err)
	}

	return pair, nil
}

// Revoke clears the stored refresh token. Revoking twice is not an error.
func (s *TokenService) Revoke(ctx context.Context, userID uuid.UUID) error {
	err := s.users.SetRefreshTokenHash(ctx, userID, nil)
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return nil
}

func (s *TokenService) mint(userID uuid.UUID) (model.TokenPair, []byte, error) {
	access, err := s.manager.GenerateAccessToken(userID)
	if err != nil {
		return model.TokenPair{}, nil, fmt.Errorf("issue access: %w", err)
	}

	refresh, _, err := s.manager.GenerateRefreshToken(userID)
	if err != nil {
		return model.TokenPair{}, nil, fmt.Errorf("issue refresh: %w", err)
	}

	return model.TokenPair{AccessToken: access, RefreshToken: refresh}, hashRefresh(refresh), nil
}

func hashRefresh(token string) []byte {
	h := sha256.Sum256([]byte(token))
	return h[:]
}

func equalBytes(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}
