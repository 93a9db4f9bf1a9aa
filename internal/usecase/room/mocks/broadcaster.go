package mocks

import (
	"github.com/stretchr/testify/mock"

	"github.com/onkar69483/CodeDrop-Desktop/internal/model"
)

type Broadcaster struct {
	mock.Mock
}

func NewBroadcaster(t interface {
	mock.TestingT
	Cleanup(func())
}) *Broadcaster {
	m := &Broadcaster{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *Broadcaster) JoinRequestReceived(roomCode, deviceID, deviceName string) {
	m.Called(roomCode, deviceID, deviceName)
}

func (m *Broadcaster) JoinRequestProcessed(roomCode, deviceID string, approved bool) {
	m.Called(roomCode, deviceID, approved)
}

func (m *Broadcaster) SyncModeChanged(roomCode string, mode model.SyncMode) {
	m.Called(roomCode, mode)
}

func (m *Broadcaster) RoomClosed(roomCode string) {
	m.Called(roomCode)
}

func (m *Broadcaster) ClipboardUpdate(roomCode, content, fromDeviceID string, isFromRoot bool) {
	m.Called(roomCode, content, fromDeviceID, isFromRoot)
}
