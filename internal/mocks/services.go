package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/dtroode/videotube-server/internal/model"
)

// AccountService is a mock of the account operations used by HTTP handlers.
type AccountService struct {
	mock.Mock
}

func NewAccountService(t testingT) *AccountService {
	m := &AccountService{}
	register(&m.Mock, t)
	return m
}

func (m *AccountService) Register(ctx context.Context, params model.RegisterParams) (model.PublicUser, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(model.PublicUser), args.Error(1)
}

func (m *AccountService) Login(ctx context.Context, params model.LoginParams) (model.LoginResult, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(model.LoginResult), args.Error(1)
}

func (m *AccountService) Refresh(ctx context.Context, refreshToken string) (model.TokenPair, error) {
	args := m.Called(ctx, refreshToken)
	return args.Get(0).(model.TokenPair), args.Error(1)
}

func (m *AccountService) Logout(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *AccountService) CurrentUser(ctx context.Context, userID uuid.UUID) (model.PublicUser, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(model.PublicUser), args.Error(1)
}

func (m *AccountService) ChangePassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword string) error {
	args := m.Called(ctx, userID, oldPassword, newPassword)
	return args.Error(0)
}

func (m *AccountService) UpdateAccount(ctx context.Context, userID uuid.UUID, fullName, email string) (model.PublicUser, error) {
	args := m.Called(ctx, userID, fullName, email)
	return args.Get(0).(model.PublicUser), args.Error(1)
}

func (m *AccountService) UpdateAvatar(ctx context.Context, userID uuid.UUID, localPath string) (model.PublicUser, error) {
	args := m.Called(ctx, userID, localPath)
	return args.Get(0).(model.PublicUser), args.Error(1)
}

func (m *AccountService) UpdateCoverImage(ctx context.Context, userID uuid.UUID, localPath string) (model.PublicUser, error) {
	args := m.Called(ctx, userID, localPath)
	return args.Get(0).(model.PublicUser), args.Error(1)
}

// ChannelService is a mock of the channel queries used by HTTP handlers.
type ChannelService struct {
	mock.Mock
}

func NewChannelService(t testingT) *ChannelService {
	m := &ChannelService{}
	register(&m.Mock, t)
	return m
}

func (m *ChannelService) Profile(ctx context.Context, viewerID uuid.UUID, username string) (model.ChannelProfile, error) {
	args := m.Called(ctx, viewerID, username)
	return args.Get(0).(model.ChannelProfile), args.Error(1)
}

func (m *ChannelService) WatchHistory(ctx context.Context, userID uuid.UUID) ([]model.WatchedVideo, error) {
	args := m.Called(ctx, userID)
	videos, _ := args.Get(0).([]model.WatchedVideo)
	return videos, args.Error(1)
}
