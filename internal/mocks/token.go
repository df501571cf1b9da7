package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/dtroode/videotube-server/internal/model"
)

// TokenManager is a mock of model.TokenManager.
type TokenManager struct {
	mock.Mock
}

var _ model.TokenManager = (*TokenManager)(nil)

func NewTokenManager(t testingT) *TokenManager {
	m := &TokenManager{}
	register(&m.Mock, t)
	return m
}

func (m *TokenManager) GenerateAccessToken(userID uuid.UUID) (string, error) {
	args := m.Called(userID)
	return args.String(0), args.Error(1)
}

func (m *TokenManager) GenerateRefreshToken(userID uuid.UUID) (string, string, error) {
	args := m.Called(userID)
	return args.String(0), args.String(1), args.Error(2)
}

func (m *TokenManager) ParseAccessToken(token string) (uuid.UUID, error) {
	args := m.Called(token)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *TokenManager) ParseRefreshToken(token string) (uuid.UUID, string, error) {
	args := m.Called(token)
	return args.Get(0).(uuid.UUID), args.String(1), args.Error(2)
}

// TokenIssuer is a mock of the session token operations used by account
// flows.
type TokenIssuer struct {
	mock.Mock
}

func NewTokenIssuer(t testingT) *TokenIssuer {
	m := &TokenIssuer{}
	register(&m.Mock, t)
	return m
}

func (m *TokenIssuer) IssuePair(ctx context.Context, userID uuid.UUID) (model.TokenPair, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(model.TokenPair), args.Error(1)
}

func (m *TokenIssuer) VerifyAndRotateRefresh(ctx context.Context, token string) (model.TokenPair, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(model.TokenPair), args.Error(1)
}

func (m *TokenIssuer) Revoke(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// TokenService is a mock of access token verification.
type TokenService struct {
	mock.Mock
}

func NewTokenService(t testingT) *TokenService {
	m := &TokenService{}
	register(&m.Mock, t)
	return m
}

func (m *TokenService) VerifyAccess(ctx context.Context, token string) (uuid.UUID, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(uuid.UUID), args.Error(1)
}
