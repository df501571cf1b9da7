package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/dtroode/videotube-server/internal/model"
)

// ChannelStore is a mock of model.ChannelStore.
type ChannelStore struct {
	mock.Mock
}

var _ model.ChannelStore = (*ChannelStore)(nil)

func NewChannelStore(t testingT) *ChannelStore {
	m := &ChannelStore{}
	register(&m.Mock, t)
	return m
}

func (m *ChannelStore) GetChannelProfile(ctx context.Context, viewerID uuid.UUID, username string) (model.ChannelProfile, error) {
	args := m.Called(ctx, viewerID, username)
	return args.Get(0).(model.ChannelProfile), args.Error(1)
}

func (m *ChannelStore) GetWatchHistory(ctx context.Context, userID uuid.UUID) ([]model.WatchedVideo, error) {
	args := m.Called(ctx, userID)
	videos, _ := args.Get(0).([]model.WatchedVideo)
	return videos, args.Error(1)
}
