package model

import (
	"time"

	"github.com/google/uuid"
)

// Device is identified by an opaque client-generated DeviceID. The record
// outlives room membership; only CurrentRoom and IsRoot are reset on leave.
type Device struct {
	DeviceID    string
	Name        string
	IsRoot      bool
	LastActive  time.Time
	CurrentRoom *uuid.UUID
}
