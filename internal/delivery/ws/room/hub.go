package ws_room

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/onkar69483/CodeDrop-Desktop/internal/model"
)

// Service->client event names, one JSON envelope per event.
const (
	EventClipboardUpdate      = "clipboardUpdate"
	EventJoinRequestReceived  = "joinRequestReceived"
	EventJoinRequestProcessed = "joinRequestProcessed"
	EventSyncModeChanged      = "syncModeChanged"
	EventRoomClosed           = "roomClosed"
)

type Event struct {
	Type    string                 `json:"type"`
	Payload map[string]interface{} `json:"payload,omitempty"`
}

// Hub owns the mapping from room code to its current subscriber set.
// Subscription and publication are scoped strictly by code; there is no
// cross-room delivery.
type Hub struct {
	mu sync.RWMutex

	// Keep track of sets of Clients within each room scope
	rooms map[string]map[*Client]bool

	logger *slog.Logger
}

func NewHub() *Hub {
	return &Hub{
		rooms:  make(map[string]map[*Client]bool),
		logger: slog.Default(),
	}
}

func (h *Hub) RegisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.rooms[client.RoomCode]; !ok {
		h.rooms[client.RoomCode] = make(map[*Client]bool)
	}
	h.rooms[client.RoomCode][client] = true

	h.logger.Info("client subscribed",
		"room", client.RoomCode,
		"device_id", client.DeviceID)
}

func (h *Hub) RemoveClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.detachLocked(client)

	h.logger.Info("client unsubscribed",
		"room", client.RoomCode,
		"device_id", client.DeviceID)
}

// MoveClient resubscribes the client under another room code.
func (h *Hub) MoveClient(client *Client, roomCode string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.detachLocked(client)
	client.RoomCode = roomCode

	if roomCode == "" {
		return
	}
	if _, ok := h.rooms[roomCode]; !ok {
		h.rooms[roomCode] = make(map[*Client]bool)
	}
	h.rooms[roomCode][client] = true
}

func (h *Hub) detachLocked(client *Client) {
	if room, ok := h.rooms[client.RoomCode]; ok {
		delete(room, client)
		if len(room) == 0 {
			delete(h.rooms, client.RoomCode)
		}
	}
}

// Subscribers returns how many clients are currently subscribed to the code.
func (h *Hub) Subscribers(roomCode string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.rooms[roomCode])
}

func (h *Hub) BroadcastToRoom(roomCode string, event Event) {
	h.broadcast(roomCode, "", event)
}

// BroadcastToRoomExcept skips every subscriber registered under the given
// device id, so a publisher never receives its own update.
func (h *Hub) BroadcastToRoomExcept(roomCode, exceptDeviceID string, event Event) {
	h.broadcast(roomCode, exceptDeviceID, event)
}

// broadcast runs concurrently from handler goroutines, so delivery happens
// under the read lock and slow consumers are only collected there; dropping
// them mutates the subscriber set and needs the write lock.
func (h *Hub) broadcast(roomCode, exceptDeviceID string, event Event) {
	messageBytes, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("failed to marshal event",
			"type", event.Type,
			"error", err.Error())
		return
	}

	var slow []*Client

	h.mu.RLock()
	for client := range h.rooms[roomCode] {
		if exceptDeviceID != "" && client.DeviceID == exceptDeviceID {
			continue
		}
		select {
		case client.Send <- messageBytes:
		default:
			slow = append(slow, client)
		}
	}
	h.mu.RUnlock()

	if len(slow) == 0 {
		return
	}

	h.mu.Lock()
	for _, client := range slow {
		// Another publisher may have dropped it already; close only once.
		if _, ok := h.rooms[roomCode][client]; !ok {
			continue
		}
		h.detachLocked(client)
		close(client.Send)
		h.logger.Warn("dropped slow client",
			"room", roomCode,
			"device_id", client.DeviceID)
	}
	h.mu.Unlock()
}

// The methods below satisfy the usecase Broadcaster interfaces.

func (h *Hub) ClipboardUpdate(roomCode, content, fromDeviceID string, isFromRoot bool) {
	h.BroadcastToRoomExcept(roomCode, fromDeviceID, Event{
		Type: EventClipboardUpdate,
		Payload: map[string]interface{}{
			"content":      content,
			"fromDeviceId": fromDeviceID,
			"isFromRoot":   isFromRoot,
		},
	})
}

func (h *Hub) JoinRequestReceived(roomCode, deviceID, deviceName string) {
	h.BroadcastToRoom(roomCode, Event{
		Type: EventJoinRequestReceived,
		Payload: map[string]interface{}{
			"deviceId":   deviceID,
			"deviceName": deviceName,
		},
	})
}

func (h *Hub) JoinRequestProcessed(roomCode, deviceID string, approved bool) {
	h.BroadcastToRoom(roomCode, Event{
		Type: EventJoinRequestProcessed,
		Payload: map[string]interface{}{
			"approved": approved,
			"deviceId": deviceID,
		},
	})
}

func (h *Hub) SyncModeChanged(roomCode string, mode model.SyncMode) {
	h.BroadcastToRoom(roomCode, Event{
		Type: EventSyncModeChanged,
		Payload: map[string]interface{}{
			"syncMode": string(mode),
		},
	})
}

func (h *Hub) RoomClosed(roomCode string) {
	h.BroadcastToRoom(roomCode, Event{
		Type: EventRoomClosed,
		Payload: map[string]interface{}{
			"message": "Room has been closed by the root device",
		},
	})
}
