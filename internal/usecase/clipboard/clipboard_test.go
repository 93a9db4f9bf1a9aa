package usecase_clipboard

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onkar69483/CodeDrop-Desktop/internal/model"
	clipboard_mocks "github.com/onkar69483/CodeDrop-Desktop/internal/usecase/clipboard/mocks"
	usecase_room "github.com/onkar69483/CodeDrop-Desktop/internal/usecase/room"
	room_mocks "github.com/onkar69483/CodeDrop-Desktop/internal/usecase/room/mocks"
)

const cacheTTL = time.Hour

type resources struct {
	usecase     *Usecase
	roomRepo    *room_mocks.RoomRepository
	deviceRepo  *room_mocks.DeviceRepository
	cache       *clipboard_mocks.ContentCache
	broadcaster *room_mocks.Broadcaster
	ctx         context.Context
}

func initResources(t *testing.T) *resources {
	roomRepo := room_mocks.NewRoomRepository(t)
	deviceRepo := room_mocks.NewDeviceRepository(t)
	cache := clipboard_mocks.NewContentCache(t)
	broadcaster := room_mocks.NewBroadcaster(t)

	roomUsecase := usecase_room.New(roomRepo, deviceRepo, broadcaster, usecase_room.Config{})
	usecase := New(roomUsecase, cache, broadcaster, cacheTTL)

	return &resources{
		usecase:     usecase,
		roomRepo:    roomRepo,
		deviceRepo:  deviceRepo,
		cache:       cache,
		broadcaster: broadcaster,
		ctx:         context.Background(),
	}
}

func room(mode model.SyncMode, active bool) model.Room {
	return model.Room{
		ID:           uuid.New(),
		Code:         "4821",
		RootDeviceID: "dev-root",
		SyncMode:     mode,
		IsActive:     active,
	}
}

func TestCanPush(t *testing.T) {
	testCases := []struct {
		name     string
		room     model.Room
		deviceID string
		member   bool
		expected bool
	}{
		{
			name:     "Root may push in one-way mode",
			room:     room(model.SyncModeOneWay, true),
			deviceID: "dev-root",
			member:   true,
			expected: true,
		},
		{
			name:     "Non-root may not push in one-way mode",
			room:     room(model.SyncModeOneWay, true),
			deviceID: "dev-b",
			member:   true,
			expected: false,
		},
		{
			name:     "Any member may push in two-way mode",
			room:     room(model.SyncModeTwoWay, true),
			deviceID: "dev-b",
			member:   true,
			expected: true,
		},
		{
			name:     "Non-member may never push",
			room:     room(model.SyncModeTwoWay, true),
			deviceID: "dev-b",
			member:   false,
			expected: false,
		},
		{
			name:     "Root may not push to a closed room",
			room:     room(model.SyncModeTwoWay, false),
			deviceID: "dev-root",
			member:   true,
			expected: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, CanPush(tc.room, tc.deviceID, tc.member))
		})
	}
}

func TestSync(t *testing.T) {
	active := room(model.SyncModeTwoWay, true)
	oneWay := room(model.SyncModeOneWay, true)

	testCases := []struct {
		name          string
		deviceID      string
		content       string
		setupMocks    func(r *resources)
		expectedError error
	}{
		{
			name:     "Should cache and fan out an authorized push",
			deviceID: "dev-b",
			content:  "hello",
			setupMocks: func(r *resources) {
				r.roomRepo.On("FindActiveByCode", r.ctx, active.Code).
					Return(active, nil).Once()
				r.deviceRepo.On("FindByID", r.ctx, "dev-b").
					Return(model.Device{DeviceID: "dev-b"}, nil).Once()
				r.roomRepo.On("IsMember", r.ctx, active.ID, "dev-b").
					Return(true, nil).Once()
				r.deviceRepo.On("Touch", r.ctx, "dev-b").
					Return(nil).Once()
				r.cache.On("SetLast", active.ID.String(), "hello", cacheTTL).
					Return(nil).Once()
				r.broadcaster.On("ClipboardUpdate", active.Code, "hello", "dev-b", false).
					Return().Once()
			},
		},
		{
			name:     "Should accept empty content",
			deviceID: "dev-root",
			content:  "",
			setupMocks: func(r *resources) {
				r.roomRepo.On("FindActiveByCode", r.ctx, active.Code).
					Return(active, nil).Once()
				r.deviceRepo.On("FindByID", r.ctx, "dev-root").
					Return(model.Device{DeviceID: "dev-root"}, nil).Once()
				r.roomRepo.On("IsMember", r.ctx, active.ID, "dev-root").
					Return(true, nil).Once()
				r.deviceRepo.On("Touch", r.ctx, "dev-root").
					Return(nil).Once()
				r.cache.On("SetLast", active.ID.String(), "", cacheTTL).
					Return(nil).Once()
				r.broadcaster.On("ClipboardUpdate", active.Code, "", "dev-root", true).
					Return().Once()
			},
		},
		{
			name:     "Should still touch the device on a denied push",
			deviceID: "dev-b",
			content:  "hello",
			setupMocks: func(r *resources) {
				r.roomRepo.On("FindActiveByCode", r.ctx, oneWay.Code).
					Return(oneWay, nil).Once()
				r.deviceRepo.On("FindByID", r.ctx, "dev-b").
					Return(model.Device{DeviceID: "dev-b"}, nil).Once()
				r.roomRepo.On("IsMember", r.ctx, oneWay.ID, "dev-b").
					Return(true, nil).Once()
				r.deviceRepo.On("Touch", r.ctx, "dev-b").
					Return(nil).Once()
			},
			expectedError: ErrPermissionDenied,
		},
		{
			name:     "Should deny a non-member",
			deviceID: "dev-stranger",
			content:  "hello",
			setupMocks: func(r *resources) {
				r.roomRepo.On("FindActiveByCode", r.ctx, active.Code).
					Return(active, nil).Once()
				r.deviceRepo.On("FindByID", r.ctx, "dev-stranger").
					Return(model.Device{DeviceID: "dev-stranger"}, nil).Once()
				r.roomRepo.On("IsMember", r.ctx, active.ID, "dev-stranger").
					Return(false, nil).Once()
				r.deviceRepo.On("Touch", r.ctx, "dev-stranger").
					Return(nil).Once()
			},
			expectedError: ErrPermissionDenied,
		},
		{
			name:     "Should fail when the room is not active",
			deviceID: "dev-b",
			content:  "hello",
			setupMocks: func(r *resources) {
				r.roomRepo.On("FindActiveByCode", r.ctx, active.Code).
					Return(model.Room{}, usecase_room.ErrResourceNotFound).Once()
			},
			expectedError: ErrResourceNotFound,
		},
		{
			name:     "Should fail for an unknown device",
			deviceID: "dev-ghost",
			content:  "hello",
			setupMocks: func(r *resources) {
				r.roomRepo.On("FindActiveByCode", r.ctx, active.Code).
					Return(active, nil).Once()
				r.deviceRepo.On("FindByID", r.ctx, "dev-ghost").
					Return(model.Device{}, usecase_room.ErrResourceNotFound).Once()
			},
			expectedError: ErrResourceNotFound,
		},
		{
			name:          "Should reject missing device id",
			deviceID:      "",
			content:       "hello",
			setupMocks:    func(r *resources) {},
			expectedError: ErrValidation,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := initResources(t)
			tc.setupMocks(r)

			err := r.usecase.Sync(r.ctx, active.Code, tc.deviceID, tc.content)

			if tc.expectedError != nil {
				assert.ErrorIs(t, err, tc.expectedError)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestSyncSurvivesCacheFailure(t *testing.T) {
	active := room(model.SyncModeTwoWay, true)

	r := initResources(t)

	r.roomRepo.On("FindActiveByCode", r.ctx, active.Code).
		Return(active, nil).Once()
	r.deviceRepo.On("FindByID", r.ctx, "dev-b").
		Return(model.Device{DeviceID: "dev-b"}, nil).Once()
	r.roomRepo.On("IsMember", r.ctx, active.ID, "dev-b").
		Return(true, nil).Once()
	r.deviceRepo.On("Touch", r.ctx, "dev-b").
		Return(nil).Once()
	r.cache.On("SetLast", active.ID.String(), "hello", cacheTTL).
		Return(assert.AnError).Once()
	r.broadcaster.On("ClipboardUpdate", active.Code, "hello", "dev-b", false).
		Return().Once()

	err := r.usecase.Sync(r.ctx, active.Code, "dev-b", "hello")

	require.NoError(t, err)
}

func TestLastIsScopedToTheCurrentRoomIncarnation(t *testing.T) {
	// A successor room reusing the code of an expired one must start with
	// no content: lookups key on the room id, not the code.
	successor := room(model.SyncModeTwoWay, true)

	r := initResources(t)

	r.roomRepo.On("FindActiveByCode", r.ctx, successor.Code).
		Return(successor, nil).Once()
	r.cache.On("Last", successor.ID.String()).
		Return("", nil).Once()

	_, err := r.usecase.Last(r.ctx, successor.Code)

	assert.ErrorIs(t, err, ErrResourceNotFound)
}

func TestLast(t *testing.T) {
	active := room(model.SyncModeTwoWay, true)

	testCases := []struct {
		name          string
		code          string
		setupMocks    func(r *resources)
		expected      string
		expectedError error
	}{
		{
			name: "Should return the latest content",
			code: active.Code,
			setupMocks: func(r *resources) {
				r.roomRepo.On("FindActiveByCode", r.ctx, active.Code).
					Return(active, nil).Once()
				r.cache.On("Last", active.ID.String()).
					Return("hello", nil).Once()
			},
			expected: "hello",
		},
		{
			name: "Should report not found when nothing was synced yet",
			code: active.Code,
			setupMocks: func(r *resources) {
				r.roomRepo.On("FindActiveByCode", r.ctx, active.Code).
					Return(active, nil).Once()
				r.cache.On("Last", active.ID.String()).
					Return("", nil).Once()
			},
			expectedError: ErrResourceNotFound,
		},
		{
			name: "Should fail for an inactive room",
			code: "0000",
			setupMocks: func(r *resources) {
				r.roomRepo.On("FindActiveByCode", r.ctx, "0000").
					Return(model.Room{}, usecase_room.ErrResourceNotFound).Once()
			},
			expectedError: ErrResourceNotFound,
		},
		{
			name:          "Should reject an empty code",
			code:          "",
			setupMocks:    func(r *resources) {},
			expectedError: ErrValidation,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := initResources(t)
			tc.setupMocks(r)

			content, err := r.usecase.Last(r.ctx, tc.code)

			if tc.expectedError != nil {
				assert.ErrorIs(t, err, tc.expectedError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, content)
		})
	}
}
