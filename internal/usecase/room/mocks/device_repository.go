package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/onkar69483/CodeDrop-Desktop/internal/model"
)

type DeviceRepository struct {
	mock.Mock
}

func NewDeviceRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *DeviceRepository {
	m := &DeviceRepository{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *DeviceRepository) Upsert(ctx context.Context, deviceID, name string, isRoot bool) (model.Device, error) {
	args := m.Called(ctx, deviceID, name, isRoot)
	return args.Get(0).(model.Device), args.Error(1)
}

func (m *DeviceRepository) UpsertKeepRole(ctx context.Context, deviceID, name string) (model.Device, error) {
	args := m.Called(ctx, deviceID, name)
	return args.Get(0).(model.Device), args.Error(1)
}

func (m *DeviceRepository) FindByID(ctx context.Context, deviceID string) (model.Device, error) {
	args := m.Called(ctx, deviceID)
	return args.Get(0).(model.Device), args.Error(1)
}

func (m *DeviceRepository) SetCurrentRoom(ctx context.Context, deviceID string, roomID uuid.UUID) error {
	args := m.Called(ctx, deviceID, roomID)
	return args.Error(0)
}

func (m *DeviceRepository) ClearCurrentRoom(ctx context.Context, deviceID string) error {
	args := m.Called(ctx, deviceID)
	return args.Error(0)
}

func (m *DeviceRepository) Touch(ctx context.Context, deviceID string) error {
	args := m.Called(ctx, deviceID)
	return args.Error(0)
}
