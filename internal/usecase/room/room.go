package usecase_room

import (
	"context"
	"errors"
	"math/rand"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/onkar69483/CodeDrop-Desktop/internal/model"
)

var (
	ErrValidation       = errors.New("invalid request")
	ErrCodeConflict     = errors.New("code conflict")
	ErrRoomsUnavailable = errors.New("no available room codes")
	ErrPermissionDenied = errors.New("permission denied")
	ErrResourceNotFound = errors.New("no such resource")
	ErrInternal         = errors.New("internal error")
)

//go:generate mockery --name=RoomRepository --output=./mocks --filename=room_repository.go
type RoomRepository interface {
	// CreateActive inserts the room with its root device as sole member.
	// Returns ErrCodeConflict when another active room holds the same code.
	CreateActive(ctx context.Context, room model.Room) error
	FindActiveByCode(ctx context.Context, code string) (model.Room, error)
	FindByCode(ctx context.Context, code string) (model.Room, error)
	// InfoByCode returns an active room with its device list populated.
	InfoByCode(ctx context.Context, code string) (model.Room, error)

	// AddMember is a no-op for existing members and fails with
	// ErrResourceNotFound once the room is no longer active.
	AddMember(ctx context.Context, roomID uuid.UUID, deviceID string) error
	RemoveMember(ctx context.Context, roomID uuid.UUID, deviceID string) error
	IsMember(ctx context.Context, roomID uuid.UUID, deviceID string) (bool, error)

	SetSyncMode(ctx context.Context, roomID uuid.UUID, mode model.SyncMode) error
	// Close deactivates the room, drops its pending join requests and
	// detaches all member devices.
	Close(ctx context.Context, roomID uuid.UUID) error

	// UpsertJoinRequest keeps a single pending record per (room, device);
	// a repeated request supersedes the previous one.
	UpsertJoinRequest(ctx context.Context, req model.JoinRequest) error
	// TakeJoinRequest removes and returns the pending record.
	TakeJoinRequest(ctx context.Context, roomID uuid.UUID, deviceID string) (model.JoinRequest, error)

	ExpiredActive(ctx context.Context, before time.Time) ([]model.Room, error)
}

//go:generate mockery --name=DeviceRepository --output=./mocks --filename=device_repository.go
type DeviceRepository interface {
	// Upsert creates or renames the device, forcing the stored root flag.
	Upsert(ctx context.Context, deviceID, name string, isRoot bool) (model.Device, error)
	// UpsertKeepRole creates or renames the device without touching the
	// stored root flag.
	UpsertKeepRole(ctx context.Context, deviceID, name string) (model.Device, error)
	FindByID(ctx context.Context, deviceID string) (model.Device, error)
	SetCurrentRoom(ctx context.Context, deviceID string, roomID uuid.UUID) error
	ClearCurrentRoom(ctx context.Context, deviceID string) error
	Touch(ctx context.Context, deviceID string) error
}

// Broadcaster fans control events out to the room's live subscribers.
// Publishing is best-effort: failures are the implementation's to log and
// never surface here.
type Broadcaster interface {
	JoinRequestReceived(roomCode, deviceID, deviceName string)
	JoinRequestProcessed(roomCode, deviceID string, approved bool)
	SyncModeChanged(roomCode string, mode model.SyncMode)
	RoomClosed(roomCode string)
}

const (
	// Codes are drawn from 1000-9999; past this many collisions in a row
	// the active pool is considered exhausted.
	maxAllocateAttempts = 1000

	defaultRoomTTL      = 24 * time.Hour
	defaultCleanupEvery = 20
)

type Config struct {
	// TTL is the absolute room lifetime measured from creation. Activity
	// does not refresh it.
	TTL time.Duration
	// CleanupEvery triggers an opportunistic expiry sweep on every Nth
	// room creation, on top of the periodic sweeper.
	CleanupEvery int
}

type Usecase struct {
	rooms       RoomRepository
	devices     DeviceRepository
	broadcaster Broadcaster

	ttl          time.Duration
	cleanupEvery int64
	creates      atomic.Int64
}

func New(rooms RoomRepository, devices DeviceRepository, broadcaster Broadcaster, cfg Config) *Usecase {
	if cfg.TTL <= 0 {
		cfg.TTL = defaultRoomTTL
	}
	if cfg.CleanupEvery <= 0 {
		cfg.CleanupEvery = defaultCleanupEvery
	}

	return &Usecase{
		rooms:        rooms,
		devices:      devices,
		broadcaster:  broadcaster,
		ttl:          cfg.TTL,
		cleanupEvery: int64(cfg.CleanupEvery),
	}
}

// RoomAccess is what a device gets back once it is a member.
type RoomAccess struct {
	Code     string
	SyncMode model.SyncMode
	IsRoot   bool
}

// JoinResult is either a membership (root rejoin, already-member) or a
// pending join request awaiting root approval.
type JoinResult struct {
	Pending bool
	Room    RoomAccess
}

func (u *Usecase) Create(ctx context.Context, deviceID, deviceName string, mode model.SyncMode) (RoomAccess, error) {
	if deviceID == "" || deviceName == "" {
		return RoomAccess{}, ErrValidation
	}
	if mode == "" {
		mode = model.SyncModeTwoWay
	}
	if !mode.Valid() {
		return RoomAccess{}, ErrValidation
	}

	if u.creates.Add(1)%u.cleanupEvery == 0 {
		if _, err := u.CloseExpired(ctx); err != nil {
			return RoomAccess{}, errors.Join(ErrInternal, err)
		}
	}

	if _, err := u.devices.Upsert(ctx, deviceID, deviceName, true); err != nil {
		return RoomAccess{}, errors.Join(ErrInternal, err)
	}

	room, err := u.createWithFreeCode(ctx, deviceID, mode)
	if err != nil {
		return RoomAccess{}, err
	}

	if err := u.devices.SetCurrentRoom(ctx, deviceID, room.ID); err != nil {
		return RoomAccess{}, errors.Join(ErrInternal, err)
	}

	return RoomAccess{Code: room.Code, SyncMode: room.SyncMode, IsRoot: true}, nil
}

// Assuming that generated codes can collide with an active room.
// Retrying against the store's uniqueness guarantee.
func (u *Usecase) createWithFreeCode(ctx context.Context, rootDeviceID string, mode model.SyncMode) (model.Room, error) {
	for attempt := 0; attempt < maxAllocateAttempts; attempt++ {
		room := model.Room{
			ID:           uuid.New(),
			Code:         generateCode(),
			RootDeviceID: rootDeviceID,
			SyncMode:     mode,
			IsActive:     true,
		}
		err := u.rooms.CreateActive(ctx, room)
		if err == nil {
			return room, nil
		}
		if errors.Is(err, ErrCodeConflict) {
			continue
		}
		return model.Room{}, errors.Join(ErrInternal, err)
	}
	return model.Room{}, ErrRoomsUnavailable
}

// generateCode returns a 4-digit numeric room code in 1000-9999.
func generateCode() string {
	return strconv.Itoa(1000 + rand.Intn(9000))
}

// Join lets a device request entry to an active room. The declared root
// device bypasses approval and is re-added directly; anyone else gets a
// pending record until the root resolves it.
func (u *Usecase) Join(ctx context.Context, code, deviceID, deviceName string) (JoinResult, error) {
	if code == "" || deviceID == "" || deviceName == "" {
		return JoinResult{}, ErrValidation
	}

	room, err := u.rooms.FindActiveByCode(ctx, code)
	if err != nil {
		return JoinResult{}, u.wrap(err)
	}

	if room.IsRootDevice(deviceID) {
		if _, err := u.devices.Upsert(ctx, deviceID, deviceName, true); err != nil {
			return JoinResult{}, errors.Join(ErrInternal, err)
		}
		if err := u.rooms.AddMember(ctx, room.ID, deviceID); err != nil {
			return JoinResult{}, u.wrap(err)
		}
		if err := u.devices.SetCurrentRoom(ctx, deviceID, room.ID); err != nil {
			return JoinResult{}, errors.Join(ErrInternal, err)
		}
		return JoinResult{Room: RoomAccess{Code: room.Code, SyncMode: room.SyncMode, IsRoot: true}}, nil
	}

	if _, err := u.devices.UpsertKeepRole(ctx, deviceID, deviceName); err != nil {
		return JoinResult{}, errors.Join(ErrInternal, err)
	}

	member, err := u.rooms.IsMember(ctx, room.ID, deviceID)
	if err != nil {
		return JoinResult{}, errors.Join(ErrInternal, err)
	}
	if member {
		if err := u.devices.SetCurrentRoom(ctx, deviceID, room.ID); err != nil {
			return JoinResult{}, errors.Join(ErrInternal, err)
		}
		return JoinResult{Room: RoomAccess{Code: room.Code, SyncMode: room.SyncMode}}, nil
	}

	err = u.rooms.UpsertJoinRequest(ctx, model.JoinRequest{
		RoomID:     room.ID,
		DeviceID:   deviceID,
		DeviceName: deviceName,
	})
	if err != nil {
		return JoinResult{}, errors.Join(ErrInternal, err)
	}

	u.broadcaster.JoinRequestReceived(room.Code, deviceID, deviceName)

	return JoinResult{Pending: true, Room: RoomAccess{Code: room.Code}}, nil
}

// ResolveJoinRequest approves or rejects a pending join. Only the room's
// root may resolve; approving into a room that closed meanwhile fails with
// ErrResourceNotFound instead of resurrecting it.
func (u *Usecase) ResolveJoinRequest(ctx context.Context, code, rootDeviceID, deviceID string, approved bool) error {
	if code == "" || rootDeviceID == "" || deviceID == "" {
		return ErrValidation
	}

	room, err := u.rooms.FindActiveByCode(ctx, code)
	if err != nil {
		return u.wrap(err)
	}
	if !room.IsRootDevice(rootDeviceID) {
		return ErrPermissionDenied
	}

	if _, err := u.devices.FindByID(ctx, deviceID); err != nil {
		return u.wrap(err)
	}

	if _, err := u.rooms.TakeJoinRequest(ctx, room.ID, deviceID); err != nil {
		return u.wrap(err)
	}

	if approved {
		if err := u.rooms.AddMember(ctx, room.ID, deviceID); err != nil {
			return u.wrap(err)
		}
		if err := u.devices.SetCurrentRoom(ctx, deviceID, room.ID); err != nil {
			return errors.Join(ErrInternal, err)
		}
	}

	u.broadcaster.JoinRequestProcessed(room.Code, deviceID, approved)

	return nil
}

// Leave removes the device from the room. A leaving root closes the whole
// room; everyone subscribed gets roomClosed.
func (u *Usecase) Leave(ctx context.Context, code, deviceID string) error {
	if code == "" || deviceID == "" {
		return ErrValidation
	}

	room, err := u.rooms.FindByCode(ctx, code)
	if err != nil {
		return u.wrap(err)
	}
	if _, err := u.devices.FindByID(ctx, deviceID); err != nil {
		return u.wrap(err)
	}

	if room.IsRootDevice(deviceID) {
		if room.IsActive {
			if err := u.rooms.Close(ctx, room.ID); err != nil {
				return u.wrap(err)
			}
			u.broadcaster.RoomClosed(room.Code)
		}
		return u.clearDevice(ctx, deviceID)
	}

	if err := u.rooms.RemoveMember(ctx, room.ID, deviceID); err != nil {
		return u.wrap(err)
	}
	return u.clearDevice(ctx, deviceID)
}

func (u *Usecase) clearDevice(ctx context.Context, deviceID string) error {
	if err := u.devices.ClearCurrentRoom(ctx, deviceID); err != nil {
		return errors.Join(ErrInternal, err)
	}
	return nil
}

func (u *Usecase) SetSyncMode(ctx context.Context, code, deviceID string, mode model.SyncMode) (model.SyncMode, error) {
	if code == "" || deviceID == "" {
		return "", ErrValidation
	}
	if !mode.Valid() {
		return "", ErrValidation
	}

	room, err := u.rooms.FindActiveByCode(ctx, code)
	if err != nil {
		return "", u.wrap(err)
	}
	if !room.IsRootDevice(deviceID) {
		return "", ErrPermissionDenied
	}

	if err := u.rooms.SetSyncMode(ctx, room.ID, mode); err != nil {
		return "", u.wrap(err)
	}
	if err := u.devices.Touch(ctx, deviceID); err != nil {
		return "", errors.Join(ErrInternal, err)
	}

	u.broadcaster.SyncModeChanged(room.Code, mode)

	return mode, nil
}

// Info returns the active room with its device list populated.
func (u *Usecase) Info(ctx context.Context, code string) (model.Room, error) {
	room, err := u.rooms.InfoByCode(ctx, code)
	if err != nil {
		return model.Room{}, u.wrap(err)
	}
	return room, nil
}

// ActiveRoom resolves an active room by code for collaborating usecases.
func (u *Usecase) ActiveRoom(ctx context.Context, code string) (model.Room, error) {
	room, err := u.rooms.FindActiveByCode(ctx, code)
	if err != nil {
		return model.Room{}, u.wrap(err)
	}
	return room, nil
}

func (u *Usecase) Device(ctx context.Context, deviceID string) (model.Device, error) {
	dev, err := u.devices.FindByID(ctx, deviceID)
	if err != nil {
		return model.Device{}, u.wrap(err)
	}
	return dev, nil
}

func (u *Usecase) IsMember(ctx context.Context, roomID uuid.UUID, deviceID string) (bool, error) {
	member, err := u.rooms.IsMember(ctx, roomID, deviceID)
	if err != nil {
		return false, errors.Join(ErrInternal, err)
	}
	return member, nil
}

func (u *Usecase) TouchDevice(ctx context.Context, deviceID string) error {
	if err := u.devices.Touch(ctx, deviceID); err != nil {
		return errors.Join(ErrInternal, err)
	}
	return nil
}

// CloseExpired sweeps rooms past their TTL: each is closed and a roomClosed
// event is attempted best-effort. Returns how many rooms were closed.
func (u *Usecase) CloseExpired(ctx context.Context) (int, error) {
	expired, err := u.rooms.ExpiredActive(ctx, time.Now().Add(-u.ttl))
	if err != nil {
		return 0, errors.Join(ErrInternal, err)
	}

	closed := 0
	for _, room := range expired {
		if err := u.rooms.Close(ctx, room.ID); err != nil {
			if errors.Is(err, ErrResourceNotFound) {
				continue // already closed by a racing leave
			}
			return closed, errors.Join(ErrInternal, err)
		}
		u.broadcaster.RoomClosed(room.Code)
		closed++
	}
	return closed, nil
}

func (u *Usecase) wrap(err error) error {
	if errors.Is(err, ErrResourceNotFound) {
		return ErrResourceNotFound
	}
	return errors.Join(ErrInternal, err)
}
