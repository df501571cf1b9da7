package service

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/videotube-server/internal/model"
)

// memUserStore is an in-memory model.UserStore with the same refresh token
// semantics as the postgres repository.
type memUserStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]model.User
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: make(map[uuid.UUID]model.User)}
}

func (s *memUserStore) GetByID(_ context.Context, id uuid.UUID) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return model.User{}, model.ErrNotFound
	}
	return u, nil
}

func (s *memUserStore) GetByUsernameOrEmail(_ context.Context, username, email string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if (username != "" && u.Username == username) || (email != "" && u.Email == email) {
			return u, nil
		}
	}
	return model.User{}, model.ErrNotFound
}

func (s *memUserStore) Create(_ context.Context, user model.User) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == user.Username || strings.EqualFold(u.Email, user.Email) {
			return model.User{}, model.ErrConflict
		}
	}
	s.users[user.ID] = user
	return user, nil
}

func (s *memUserStore) SetRefreshTokenHash(_ context.Context, id uuid.UUID, hash []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return model.ErrNotFound
	}
	u.RefreshTokenHash = hash
	s.users[id] = u
	return nil
}

func (s *memUserStore) RotateRefreshTokenHash(_ context.Context, id uuid.UUID, oldHash, newHash []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok || u.RefreshTokenHash == nil || !bytes.Equal(u.RefreshTokenHash, oldHash) {
		return model.ErrTokenSuperseded
	}
	u.RefreshTokenHash = newHash
	s.users[id] = u
	return nil
}

func (s *memUserStore) UpdatePassword(_ context.Context, id uuid.UUID, passwordHash []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return model.ErrNotFound
	}
	u.PasswordHash = passwordHash
	s.users[id] = u
	return nil
}

func (s *memUserStore) UpdateAccount(_ context.Context, id uuid.UUID, fullName, email string) (model.User, error) {
	return s.update(id, func(u *model.User) { u.FullName, u.Email = fullName, email })
}

func (s *memUserStore) UpdateAvatar(_ context.Context, id uuid.UUID, avatar model.Media) (model.User, error) {
	return s.update(id, func(u *model.User) { u.Avatar = avatar })
}

func (s *memUserStore) UpdateCoverImage(_ context.Context, id uuid.UUID, cover model.Media) (model.User, error) {
	return s.update(id, func(u *model.User) { u.CoverImage = cover })
}

func (s *memUserStore) update(id uuid.UUID, fn func(*model.User)) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return model.User{}, model.ErrNotFound
	}
	fn(&u)
	u.UpdatedAt = time.Now()
	s.users[id] = u
	return u, nil
}

func (s *memUserStore) refreshHash(id uuid.UUID) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users[id].RefreshTokenHash
}
