package ws_room

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	usecase_clipboard "github.com/onkar69483/CodeDrop-Desktop/internal/usecase/clipboard"
	usecase_room "github.com/onkar69483/CodeDrop-Desktop/internal/usecase/room"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// The desktop client connects from a file:// origin.
		return true
	},
}

// Client->service message names.
const (
	msgJoinRoom            = "joinRoom"
	msgLeaveRoom           = "leaveRoom"
	msgSyncClipboard       = "syncClipboard"
	msgJoinRequest         = "joinRequest"
	msgJoinRequestResponse = "joinRequestResponse"
)

type inboundMessage struct {
	Type       string `json:"type"`
	RoomCode   string `json:"roomCode,omitempty"`
	DeviceID   string `json:"deviceId,omitempty"`
	DeviceName string `json:"deviceName,omitempty"`
	Data       string `json:"data,omitempty"`
	Approved   bool   `json:"approved,omitempty"`
}

type Controller struct {
	hub       *Hub
	room      *usecase_room.Usecase
	clipboard *usecase_clipboard.Usecase
	logger    *slog.Logger
}

func NewController(hub *Hub, room *usecase_room.Usecase, clipboard *usecase_clipboard.Usecase) *Controller {
	return &Controller{
		hub:       hub,
		room:      room,
		clipboard: clipboard,
		logger:    slog.Default(),
	}
}

func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/ws", c.roomWS)
}

// roomWS upgrades the connection and subscribes the device to its room
// scope. Only accepted members may subscribe.
func (c *Controller) roomWS(ctx *gin.Context) {
	code := ctx.Query("code")
	deviceID := ctx.Query("deviceId")
	if code == "" || deviceID == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "code and deviceId are required"})
		return
	}

	room, err := c.room.ActiveRoom(ctx.Request.Context(), code)
	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "room not found or inactive"})
		return
	}
	member, err := c.room.IsMember(ctx.Request.Context(), room.ID, deviceID)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if !member {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "device is not part of this room"})
		return
	}

	conn, err := upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		c.logger.Error("failed to upgrade to websocket",
			slog.String("error", err.Error()))
		return
	}

	client := &Client{
		Hub:      c.hub,
		Conn:     conn,
		Send:     make(chan []byte, sendChannelSize),
		RoomCode: code,
		DeviceID: deviceID,
	}

	c.hub.RegisterClient(client)

	go c.startClientReading(client)
	go c.hub.StartClientWriting(client)
}

// startClientReading dispatches client messages into the usecases until the
// connection drops. Authorization is recomputed server-side per message; the
// client's view of mode or role is never trusted.
func (c *Controller) startClientReading(client *Client) {
	defer func() {
		c.hub.RemoveClient(client)
		client.Conn.Close()
	}()

	client.Conn.SetReadLimit(maxMessageSize)
	client.Conn.SetReadDeadline(time.Now().Add(pongWait))
	client.Conn.SetPongHandler(func(string) error {
		client.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := client.Conn.ReadMessage()
		if err != nil {
			return
		}

		var msg inboundMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.logger.Warn("dropping malformed client message",
				slog.String("device_id", client.DeviceID),
				slog.String("error", err.Error()))
			continue
		}

		c.dispatch(client, msg)
	}
}

func (c *Controller) dispatch(client *Client, msg inboundMessage) {
	ctx := context.Background()

	switch msg.Type {
	case msgJoinRoom:
		room, err := c.room.ActiveRoom(ctx, msg.RoomCode)
		if err != nil {
			return
		}
		member, err := c.room.IsMember(ctx, room.ID, client.DeviceID)
		if err != nil || !member {
			return
		}
		c.hub.MoveClient(client, room.Code)

	case msgLeaveRoom:
		c.hub.MoveClient(client, "")

	case msgSyncClipboard:
		if err := c.clipboard.Sync(ctx, msg.RoomCode, client.DeviceID, msg.Data); err != nil {
			c.logger.Warn("clipboard sync over ws rejected",
				slog.String("room", msg.RoomCode),
				slog.String("device_id", client.DeviceID),
				slog.String("error", err.Error()))
		}

	case msgJoinRequest:
		if _, err := c.room.Join(ctx, msg.RoomCode, msg.DeviceID, msg.DeviceName); err != nil {
			c.logger.Warn("join request over ws rejected",
				slog.String("room", msg.RoomCode),
				slog.String("error", err.Error()))
		}

	case msgJoinRequestResponse:
		// The connected device acts as the resolving root; the usecase
		// rejects it unless it really is.
		err := c.room.ResolveJoinRequest(ctx, msg.RoomCode, client.DeviceID, msg.DeviceID, msg.Approved)
		if err != nil {
			c.logger.Warn("join response over ws rejected",
				slog.String("room", msg.RoomCode),
				slog.String("error", err.Error()))
		}

	default:
		c.logger.Warn("unknown client message type",
			slog.String("type", msg.Type),
			slog.String("device_id", client.DeviceID))
	}
}
