package mocks

import (
	"time"

	"github.com/stretchr/testify/mock"
)

type ContentCache struct {
	mock.Mock
}

func NewContentCache(t interface {
	mock.TestingT
	Cleanup(func())
}) *ContentCache {
	m := &ContentCache{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *ContentCache) SetLast(roomID, content string, ttl time.Duration) error {
	args := m.Called(roomID, content, ttl)
	return args.Error(0)
}

func (m *ContentCache) Last(roomID string) (string, error) {
	args := m.Called(roomID)
	return args.String(0), args.Error(1)
}
