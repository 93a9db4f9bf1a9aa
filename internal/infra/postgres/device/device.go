package infra_postgres_device

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/onkar69483/CodeDrop-Desktop/internal/model"
	usecase_room "github.com/onkar69483/CodeDrop-Desktop/internal/usecase/room"
)

// Driver persists device identities.
//
// Schema:
//
//	CREATE TABLE devices (
//	    device_id    TEXT PRIMARY KEY,
//	    name         TEXT NOT NULL,
//	    is_root      BOOLEAN NOT NULL DEFAULT FALSE,
//	    last_active  TIMESTAMPTZ NOT NULL DEFAULT now(),
//	    current_room UUID
//	);
type Driver struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Driver {
	return &Driver{db: db}
}

type deviceDTO struct {
	DeviceID    string     `db:"device_id"`
	Name        string     `db:"name"`
	IsRoot      bool       `db:"is_root"`
	LastActive  time.Time  `db:"last_active"`
	CurrentRoom *uuid.UUID `db:"current_room"`
}

func (dto deviceDTO) toModel() model.Device {
	return model.Device{
		DeviceID:    dto.DeviceID,
		Name:        dto.Name,
		IsRoot:      dto.IsRoot,
		LastActive:  dto.LastActive,
		CurrentRoom: dto.CurrentRoom,
	}
}

func (d *Driver) Upsert(ctx context.Context, deviceID, name string, isRoot bool) (model.Device, error) {
	var dto deviceDTO

	query := `
		INSERT INTO devices (device_id, name, is_root, last_active)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (device_id)
		DO UPDATE SET name = EXCLUDED.name, is_root = EXCLUDED.is_root, last_active = now()
		RETURNING device_id, name, is_root, last_active, current_room
	`

	if err := d.db.GetContext(ctx, &dto, query, deviceID, name, isRoot); err != nil {
		return model.Device{}, err
	}

	return dto.toModel(), nil
}

// UpsertKeepRole renames and touches the device without changing its stored
// root flag; a fresh record starts as non-root.
func (d *Driver) UpsertKeepRole(ctx context.Context, deviceID, name string) (model.Device, error) {
	var dto deviceDTO

	query := `
		INSERT INTO devices (device_id, name, is_root, last_active)
		VALUES ($1, $2, FALSE, now())
		ON CONFLICT (device_id)
		DO UPDATE SET name = EXCLUDED.name, last_active = now()
		RETURNING device_id, name, is_root, last_active, current_room
	`

	if err := d.db.GetContext(ctx, &dto, query, deviceID, name); err != nil {
		return model.Device{}, err
	}

	return dto.toModel(), nil
}

func (d *Driver) FindByID(ctx context.Context, deviceID string) (model.Device, error) {
	var dto deviceDTO

	query := `
		SELECT device_id, name, is_root, last_active, current_room
		FROM devices
		WHERE device_id = $1
	`

	err := d.db.GetContext(ctx, &dto, query, deviceID)
	if err != nil {
		if err == sql.ErrNoRows {
			return model.Device{}, usecase_room.ErrResourceNotFound
		}
		return model.Device{}, err
	}

	return dto.toModel(), nil
}

func (d *Driver) SetCurrentRoom(ctx context.Context, deviceID string, roomID uuid.UUID) error {
	query := `
		UPDATE devices
		SET current_room = $1, last_active = now()
		WHERE device_id = $2
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

// ClearCurrentRoom also resets the root flag; the role is meaningful only
// relative to the room being left.
func (d *Driver) ClearCurrentRoom(ctx context.Context, deviceID string) error {
	query := `
		UPDATE devices
		SET current_room = NULL, is_root = FALSE, last_active = now()
		WHERE device_id = $1
	`

	result, err := d.db.ExecContext(ctx, query, deviceID)
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

func (d *Driver) Touch(ctx context.Context, deviceID string) error {
	query := `
		UPDATE devices
		SET last_active = now()
		WHERE device_id = $1
	`

	_, err := d.db.ExecContext(ctx, query, deviceID)
	return err
}
