package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/dtroode/videotube-server/internal/model"
)

// MediaStore is a mock of model.MediaStore.
type MediaStore struct {
	mock.Mock
}

var _ model.MediaStore = (*MediaStore)(nil)

func NewMediaStore(t testingT) *MediaStore {
	m := &MediaStore{}
	register(&m.Mock, t)
	return m
}

func (m *MediaStore) Upload(ctx context.Context, localPath string) (model.Media, error) {
	args := m.Called(ctx, localPath)
	return args.Get(0).(model.Media), args.Error(1)
}

func (m *MediaStore) Delete(ctx context.Context, publicID string) error {
	args := m.Called(ctx, publicID)
	return args.Error(0)
}
