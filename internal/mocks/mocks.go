// Package mocks contains testify mocks for the interfaces consumed across
// the service and transport layers.
package mocks

import "github.com/stretchr/testify/mock"

// testingT is satisfied by *testing.T.
type testingT interface {
	mock.TestingT
	Cleanup(func())
}

func register(m *mock.Mock, t testingT) {
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
}
