package usecase_clipboard

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/onkar69483/CodeDrop-Desktop/internal/model"
	usecase_room "github.com/onkar69483/CodeDrop-Desktop/internal/usecase/room"
)

var (
	ErrValidation       = errors.New("invalid request")
	ErrPermissionDenied = errors.New("permission denied")
	ErrResourceNotFound = errors.New("no such resource")
	ErrInternal         = errors.New("internal error")
)

// ContentCache holds the most recent clipboard value per room. Entries are
// keyed by room id, not code: codes are reusable after a room closes and a
// successor room must never resolve its predecessor's value. No history is
// kept beyond the latest value.
//
//go:generate mockery --name=ContentCache --output=./mocks --filename=content_cache.go
type ContentCache interface {
	SetLast(roomID, content string, ttl time.Duration) error
	Last(roomID string) (string, error)
}

// Broadcaster delivers the update to every subscriber of the room scope
// except the sender.
type Broadcaster interface {
	ClipboardUpdate(roomCode, content, fromDeviceID string, isFromRoot bool)
}

type Usecase struct {
	room        *usecase_room.Usecase
	cache       ContentCache
	broadcaster Broadcaster
	logger      *slog.Logger

	cacheTTL time.Duration
}

func New(room *usecase_room.Usecase, cache ContentCache, broadcaster Broadcaster, cacheTTL time.Duration) *Usecase {
	return &Usecase{
		room:        room,
		cache:       cache,
		broadcaster: broadcaster,
		logger:      slog.Default(),
		cacheTTL:    cacheTTL,
	}
}

// CanPush is the sync authorization policy: an active room, a member device,
// and either two-way mode or the root pushing.
func CanPush(room model.Room, deviceID string, member bool) bool {
	if !room.IsActive || !member {
		return false
	}
	return room.SyncMode == model.SyncModeTwoWay || room.IsRootDevice(deviceID)
}

// Sync validates a content push against the policy, then caches the value
// and fans it out. The device's last-active timestamp is refreshed on every
// authenticated attempt, denied ones included.
func (u *Usecase) Sync(ctx context.Context, roomCode, deviceID, content string) error {
	if roomCode == "" || deviceID == "" {
		return ErrValidation
	}

	room, err := u.room.ActiveRoom(ctx, roomCode)
	if err != nil {
		return u.wrap(err)
	}
	if _, err := u.room.Device(ctx, deviceID); err != nil {
		return u.wrap(err)
	}

	member, err := u.room.IsMember(ctx, room.ID, deviceID)
	if err != nil {
		return errors.Join(ErrInternal, err)
	}

	if err := u.room.TouchDevice(ctx, deviceID); err != nil {
		return errors.Join(ErrInternal, err)
	}

	if !CanPush(room, deviceID, member) {
		return ErrPermissionDenied
	}

	// Cache failure must not fail the accepted push.
	if err := u.cache.SetLast(room.ID.String(), content, u.cacheTTL); err != nil {
		u.logger.Error("failed to cache clipboard content",
			slog.String("room", room.Code),
			slog.String("error", err.Error()))
	}

	u.broadcaster.ClipboardUpdate(room.Code, content, deviceID, room.IsRootDevice(deviceID))

	return nil
}

// Last returns the most recently synced content of an active room. The
// lookup goes through the room's id, so a code inherited from an expired
// room starts with no content.
func (u *Usecase) Last(ctx context.Context, roomCode string) (string, error) {
	if roomCode == "" {
		return "", ErrValidation
	}

	room, err := u.room.ActiveRoom(ctx, roomCode)
	if err != nil {
		return "", u.wrap(err)
	}

	content, err := u.cache.Last(room.ID.String())
	if err != nil {
		return "", errors.Join(ErrInternal, err)
	}
	if content == "" {
		return "", ErrResourceNotFound
	}
	return content, nil
}

func (u *Usecase) wrap(err error) error {
	if errors.Is(err, usecase_room.ErrResourceNotFound) {
		return ErrResourceNotFound
	}
	return errors.Join(ErrInternal, err)
}
