package infra_postgres_room

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/onkar69483/CodeDrop-Desktop/internal/model"
	usecase_room "github.com/onkar69483/CodeDrop-Desktop/internal/usecase/room"
)

// Driver persists rooms, membership and pending join requests.
//
// Schema:
//
//	CREATE TABLE rooms (
//	    id             UUID PRIMARY KEY,
//	    code           CHAR(4) NOT NULL,
//	    root_device_id TEXT NOT NULL,
//	    sync_mode      TEXT NOT NULL,
//	    is_active      BOOLEAN NOT NULL DEFAULT TRUE,
//	    created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
//	);
//	CREATE UNIQUE INDEX rooms_active_code_uq ON rooms (code) WHERE is_active;
//
//	CREATE TABLE room_devices (
//	    room_id   UUID NOT NULL REFERENCES rooms (id),
//	    device_id TEXT NOT NULL REFERENCES devices (device_id),
//	    PRIMARY KEY (room_id, device_id)
//	);
//
//	CREATE TABLE join_requests (
//	    room_id      UUID NOT NULL REFERENCES rooms (id),
//	    device_id    TEXT NOT NULL,
//	    device_name  TEXT NOT NULL,
//	    requested_at TIMESTAMPTZ NOT NULL DEFAULT now(),
//	    PRIMARY KEY (room_id, device_id)
//	);
//
// The partial unique index is what resolves two creators racing on the same
// candidate code: the loser's insert fails and the allocator retries.
type Driver struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Driver {
	return &Driver{db: db}
}

type roomDTO struct {
	ID           uuid.UUID `db:"id"`
	Code         string    `db:"code"`
	RootDeviceID string    `db:"root_device_id"`
	SyncMode     string    `db:"sync_mode"`
	IsActive     bool      `db:"is_active"`
	CreatedAt    time.Time `db:"created_at"`
}

func (dto roomDTO) toModel() model.Room {
	return model.Room{
		ID:           dto.ID,
		Code:         dto.Code,
		RootDeviceID: dto.RootDeviceID,
		SyncMode:     model.SyncMode(dto.SyncMode),
		IsActive:     dto.IsActive,
		CreatedAt:    dto.CreatedAt,
	}
}

type memberDTO struct {
	DeviceID    string     `db:"device_id"`
	Name        string     `db:"name"`
	IsRoot      bool       `db:"is_root"`
	LastActive  time.Time  `db:"last_active"`
	CurrentRoom *uuid.UUID `db:"current_room"`
}

func (d *Driver) CreateActive(ctx context.Context, room model.Room) error {
	tx, err := d.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO rooms (id, code, root_device_id, sync_mode, is_active)
		VALUES (:id, :code, :root_device_id, :sync_mode, TRUE)
	`

	_, err = tx.NamedExecContext(ctx, query, roomDTO{
		ID:           room.ID,
		Code:         room.Code,
		RootDeviceID: room.RootDeviceID,
		SyncMode:     string(room.SyncMode),
	})
	if err != nil {
		if strings.Contains(err.Error(), "unique constraint") ||
			strings.Contains(err.Error(), "duplicate key") {
			return usecase_room.ErrCodeConflict
		}
		return err
	}

	memberQuery := `
		INSERT INTO room_devices (room_id, device_id)
		VALUES ($1, $2)
	`

	if _, err := tx.ExecContext(ctx, memberQuery, room.ID, room.RootDeviceID); err != nil {
		return err
	}

	return tx.Commit()
}

func (d *Driver) FindActiveByCode(ctx context.Context, code string) (model.Room, error) {
	var dto roomDTO

	query := `
		SELECT id, code, root_device_id, sync_mode, is_active, created_at
		FROM rooms
		WHERE code = $1 AND is_active = TRUE
	`

	err := d.db.GetContext(ctx, &dto, query, code)
	if err != nil {
		if err == sql.ErrNoRows {
			return model.Room{}, usecase_room.ErrResourceNotFound
		}
		return model.Room{}, err
	}

	return dto.toModel(), nil
}

// FindByCode also resolves closed rooms, newest first so a reused code maps
// to its latest incarnation.
func (d *Driver) FindByCode(ctx context.Context, code string) (model.Room, error) {
	var dto roomDTO

	query := `
		SELECT id, code, root_device_id, sync_mode, is_active, created_at
		FROM rooms
		WHERE code = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	err := d.db.GetContext(ctx, &dto, query, code)
	if err != nil {
		if err == sql.ErrNoRows {
			return model.Room{}, usecase_room.ErrResourceNotFound
		}
		return model.Room{}, err
	}

	return dto.toModel(), nil
}

func (d *Driver) InfoByCode(ctx context.Context, code string) (model.Room, error) {
	room, err := d.FindActiveByCode(ctx, code)
	if err != nil {
		return model.Room{}, err
	}

	var members []memberDTO

	query := `
		SELECT dev.device_id, dev.name, dev.is_root, dev.last_active, dev.current_room
		FROM devices dev
		JOIN room_devices rd ON rd.device_id = dev.device_id
		WHERE rd.room_id = $1
	`

	if err := d.db.SelectContext(ctx, &members, query, room.ID); err != nil {
		return model.Room{}, err
	}

	room.Devices = make([]model.Device, 0, len(members))
	for _, m := range members {
		room.Devices = append(room.Devices, model.Device{
			DeviceID:    m.DeviceID,
			Name:        m.Name,
			IsRoot:      m.IsRoot,
			LastActive:  m.LastActive,
			CurrentRoom: m.CurrentRoom,
		})
	}

	return room, nil
}

// AddMember inserts only while the room is active; the is_active predicate
// closes the approve-vs-close race. Rejoining members are absorbed by the
// upsert so rowsAffected stays 1 for them.
func (d *Driver) AddMember(ctx context.Context, roomID uuid.UUID, deviceID string) error {
	query := `
		INSERT INTO room_devices (room_id, device_id)
		SELECT id, $2 FROM rooms WHERE id = $1 AND is_active = TRUE
		ON CONFLICT (room_id, device_id) DO UPDATE SET device_id = EXCLUDED.device_id
	`

	result, err := d.db.ExecContext(ctx, query, roomID, deviceID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return usecase_room.ErrResourceNotFound
	}

	return nil
}

func (d *Driver) RemoveMember(ctx context.Context, roomID uuid.UUID, deviceID string) error {
	query := `
		DELETE FROM room_devices
		WHERE room_id = $1 AND device_id = $2
	`

	result, err := d.db.ExecContext(ctx, query, roomID, deviceID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return usecase_room.ErrResourceNotFound
	}

	return nil
}

func (d *Driver) IsMember(ctx context.Context, roomID uuid.UUID, deviceID string) (bool, error) {
	var exists bool

	query := `
		SELECT EXISTS(
			SELECT 1 FROM room_devices
			WHERE room_id = $1 AND device_id = $2
		)
	`

	if err := d.db.GetContext(ctx, &exists, query, roomID, deviceID); err != nil {
		return false, err
	}

	return exists, nil
}

func (d *Driver) SetSyncMode(ctx context.Context, roomID uuid.UUID, mode model.SyncMode) error {
	query := `
		UPDATE rooms
		SET sync_mode = $1
		WHERE id = $2 AND is_active = TRUE
	`

	result, err := d.db.ExecContext(ctx, query, string(mode), roomID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return usecase_room.ErrResourceNotFound
	}

	return nil
}

func (d *Driver) Close(ctx context.Context, roomID uuid.UUID) error {
	tx, err := d.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		UPDATE rooms
		SET is_active = FALSE
		WHERE id = $1 AND is_active = TRUE
	`

	result, err := tx.ExecContext(ctx, query, roomID)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return usecase_room.ErrResourceNotFound
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM join_requests WHERE room_id = $1`, roomID); err != nil {
		return err
	}

	detachQuery := `
		UPDATE devices
		SET current_room = NULL, is_root = FALSE
		WHERE current_room = $1
	`

	if _, err := tx.ExecContext(ctx, detachQuery, roomID); err != nil {
		return err
	}

	return tx.Commit()
}

func (d *Driver) UpsertJoinRequest(ctx context.Context, req model.JoinRequest) error {
	query := `
		INSERT INTO join_requests (room_id, device_id, device_name, requested_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (room_id, device_id)
		DO UPDATE SET device_name = EXCLUDED.device_name, requested_at = now()
	`

	_, err := d.db.ExecContext(ctx, query, req.RoomID, req.DeviceID, req.DeviceName)
	return err
}

func (d *Driver) TakeJoinRequest(ctx context.Context, roomID uuid.UUID, deviceID string) (model.JoinRequest, error) {
	var dto struct {
		DeviceName  string    `db:"device_name"`
		RequestedAt time.Time `db:"requested_at"`
	}

	query := `
		DELETE FROM join_requests
		WHERE room_id = $1 AND device_id = $2
		RETURNING device_name, requested_at
	`

	err := d.db.GetContext(ctx, &dto, query, roomID, deviceID)
	if err != nil {
		if err == sql.ErrNoRows {
			return model.JoinRequest{}, usecase_room.ErrResourceNotFound
		}
		return model.JoinRequest{}, err
	}

	return model.JoinRequest{
		RoomID:      roomID,
		DeviceID:    deviceID,
		DeviceName:  dto.DeviceName,
		RequestedAt: dto.RequestedAt,
	}, nil
}

func (d *Driver) ExpiredActive(ctx context.Context, before time.Time) ([]model.Room, error) {
	var dtos []roomDTO

	query := `
		SELECT id, code, root_device_id, sync_mode, is_active, created_at
		FROM rooms
		WHERE is_active = TRUE AND created_at < $1
	`

	if err := d.db.SelectContext(ctx, &dtos, query, before); err != nil {
		return nil, err
	}

	rooms := make([]model.Room, 0, len(dtos))
	for _, dto := range dtos {
		rooms = append(rooms, dto.toModel())
	}
	return rooms, nil
}
