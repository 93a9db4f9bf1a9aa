package model

import (
	"time"

	"github.com/google/uuid"
)

// Room is an ephemeral group of devices sharing one clipboard value.
// Code is unique among active rooms only; codes may be reused after a room
// closes or expires.
type Room struct {
	ID           uuid.UUID
	Code         string
	RootDeviceID string
	SyncMode     SyncMode
	IsActive     bool
	CreatedAt    time.Time

	// Devices is populated for room-info projections only.
	Devices []Device
}

func (r Room) IsRootDevice(deviceID string) bool {
	return r.RootDeviceID == deviceID
}

// JoinRequest is the single outstanding pending-join record per
// (room, device) pair. A repeated request supersedes the previous one.
type JoinRequest struct {
	RoomID      uuid.UUID
	DeviceID    string
	DeviceName  string
	RequestedAt time.Time
}
