package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/onkar69483/CodeDrop-Desktop/internal/model"
)

type RoomRepository struct {
	mock.Mock
}

func NewRoomRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *RoomRepository {
	m := &RoomRepository{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *RoomRepository) CreateActive(ctx context.Context, room model.Room) error {
	args := m.Called(ctx, room)
	return args.Error(0)
}

func (m *RoomRepository) FindActiveByCode(ctx context.Context, code string) (model.Room, error) {
	args := m.Called(ctx, code)
	return args.Get(0).(model.Room), args.Error(1)
}

func (m *RoomRepository) FindByCode(ctx context.Context, code string) (model.Room, error) {
	args := m.Called(ctx, code)
	return args.Get(0).(model.Room), args.Error(1)
}

func (m *RoomRepository) InfoByCode(ctx context.Context, code string) (model.Room, error) {
	args := m.Called(ctx, code)
	return args.Get(0).(model.Room), args.Error(1)
}

func (m *RoomRepository) AddMember(ctx context.Context, roomID uuid.UUID, deviceID string) error {
	args := m.Called(ctx, roomID, deviceID)
	return args.Error(0)
}

func (m *RoomRepository) RemoveMember(ctx context.Context, roomID uuid.UUID, deviceID string) error {
	args := m.Called(ctx, roomID, deviceID)
	return args.Error(0)
}

func (m *RoomRepository) IsMember(ctx context.Context, roomID uuid.UUID, deviceID string) (bool, error) {
	args := m.Called(ctx, roomID, deviceID)
	return args.Bool(0), args.Error(1)
}

func (m *RoomRepository) SetSyncMode(ctx context.Context, roomID uuid.UUID, mode model.SyncMode) error {
	args := m.Called(ctx, roomID, mode)
	return args.Error(0)
}

func (m *RoomRepository) Close(ctx context.Context, roomID uuid.UUID) error {
	args := m.Called(ctx, roomID)
	return args.Error(0)
}

func (m *RoomRepository) UpsertJoinRequest(ctx context.Context, req model.JoinRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *RoomRepository) TakeJoinRequest(ctx context.Context, roomID uuid.UUID, deviceID string) (model.JoinRequest, error) {
	args := m.Called(ctx, roomID, deviceID)
	return args.Get(0).(model.JoinRequest), args.Error(1)
}

func (m *RoomRepository) ExpiredActive(ctx context.Context, before time.Time) ([]model.Room, error) {
	args := m.Called(ctx, before)
	if rooms := args.Get(0); rooms != nil {
		return rooms.([]model.Room), args.Error(1)
	}
	return nil, args.Error(1)
}
