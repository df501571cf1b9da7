package mocks

import (
	"github.com/stretchr/testify/mock"

	"github.com/dtroode/videotube-server/internal/model"
)

// PasswordHasher is a mock of model.PasswordHasher.
type PasswordHasher struct {
	mock.Mock
}

var _ model.PasswordHasher = (*PasswordHasher)(nil)

func NewPasswordHasher(t testingT) *PasswordHasher {
	m := &PasswordHasher{}
	register(&m.Mock, t)
	return m
}

func (m *PasswordHasher) Hash(password string) ([]byte, error) {
	args := m.Called(password)
	hash, _ := args.Get(0).([]byte)
	return hash, args.Error(1)
}

func (m *PasswordHasher) Compare(hash []byte, password string) error {
	args := m.Called(hash, password)
	return args.Error(0)
}
