package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/dtroode/videotube-server/internal/model"
)

// UserStore is a mock of model.UserStore.
type UserStore struct {
	mock.Mock
}

var _ model.UserStore = (*UserStore)(nil)

func NewUserStore(t testingT) *UserStore {
	m := &UserStore{}
	register(&m.Mock, t)
	return m
}

func (m *UserStore) GetByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *UserStore) GetByUsernameOrEmail(ctx context.Context, username, email string) (model.User, error) {
	args := m.Called(ctx, username, email)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *UserStore) Create(ctx context.Context, user model.User) (model.User, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *UserStore) SetRefreshTokenHash(ctx context.Context, id uuid.UUID, hash []byte) error {
	args := m.Called(ctx, id, hash)
	return args.Error(0)
}

func (m *UserStore) RotateRefreshTokenHash(ctx context.Context, id uuid.UUID, oldHash, newHash []byte) error {
	args := m.Called(ctx, id, oldHash, newHash)
	return args.Error(0)
}

func (m *UserStore) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash []byte) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

func (m *UserStore) UpdateAccount(ctx context.Context, id uuid.UUID, fullName, email string) (model.User, error) {
	args := m.Called(ctx, id, fullName, email)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *UserStore) UpdateAvatar(ctx context.Context, id uuid.UUID, avatar model.Media) (model.User, error) {
	args := m.Called(ctx, id, avatar)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *UserStore) UpdateCoverImage(ctx context.Context, id uuid.UUID, cover model.Media) (model.User, error) {
	args := m.Called(ctx, id, cover)
	return args.Get(0).(model.User), args.Error(1)
}
