package http_room

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	http_common "github.com/onkar69483/CodeDrop-Desktop/internal/delivery/http/common"
	"github.com/onkar69483/CodeDrop-Desktop/internal/model"
	usecase_room "github.com/onkar69483/CodeDrop-Desktop/internal/usecase/room"
)

type Controller struct {
	usecase *usecase_room.Usecase
	logger  *slog.Logger
}

func New(usecase *usecase_room.Usecase) *Controller {
	return &Controller{
		usecase: usecase,
		logger:  slog.Default(),
	}
}

func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	rooms := router.Group("/rooms")
	{
		rooms.POST("/create", c.create)
		rooms.POST("/join", c.join)
		rooms.POST("/approve-join", c.approveJoin)
		rooms.POST("/leave", c.leave)
		rooms.POST("/sync-mode", c.syncMode)
		rooms.GET("/:code", c.info)
	}
}

type RoomDTO struct {
	Code     string `json:"code"`
	SyncMode string `json:"syncMode"`
	IsRoot   bool   `json:"isRoot"`
}

type CreateRequestDTO struct {
	DeviceID   string `json:"deviceId"`
	DeviceName string `json:"deviceName"`
	SyncMode   string `json:"syncMode"`
}

type CreateResponseDTO struct {
	Room RoomDTO `json:"room"`
}

func (c *Controller) create(ctx *gin.Context) {
	var req CreateRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
			Message: "invalid request format",
		})
		return
	}

	access, err := c.usecase.Create(ctx.Request.Context(), req.DeviceID, req.DeviceName, model.SyncMode(req.SyncMode))
	if err != nil {
		c.logger.Error("failed to create room", slog.String("error", err.Error()))
		switch {
		case errors.Is(err, usecase_room.ErrValidation):
			ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
				Message: "device information is required",
			})
		case errors.Is(err, usecase_room.ErrRoomsUnavailable):
			ctx.JSON(http.StatusServiceUnavailable, http_common.ErrorResponse{
				Message: "no room codes available",
			})
		default:
			ctx.JSON(http.StatusInternalServerError, http_common.ErrorResponse{
				Message: "internal error",
			})
		}
		return
	}

	ctx.JSON(http.StatusCreated, CreateResponseDTO{
		Room: RoomDTO{
			Code:     access.Code,
			SyncMode: string(access.SyncMode),
			IsRoot:   access.IsRoot,
		},
	})
}

type JoinRequestDTO struct {
	Code       string `json:"code"`
	DeviceID   string `json:"deviceId"`
	DeviceName string `json:"deviceName"`
}

type PendingResponseDTO struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	RoomCode string `json:"roomCode"`
}

func (c *Controller) join(ctx *gin.Context) {
	var req JoinRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
			Message: "invalid request format",
		})
		return
	}

	result, err := c.usecase.Join(ctx.Request.Context(), req.Code, req.DeviceID, req.DeviceName)
	if err != nil {
		c.logger.Error("failed to join room",
			slog.String("code", req.Code),
			slog.String("error", err.Error()))
		switch {
		case errors.Is(err, usecase_room.ErrValidation):
			ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
				Message: "room code and device information are required",
			})
		case errors.Is(err, usecase_room.ErrResourceNotFound):
			ctx.JSON(http.StatusNotFound, http_common.ErrorResponse{
				Message: "room not found or inactive",
			})
		default:
			ctx.JSON(http.StatusInternalServerError, http_common.ErrorResponse{
				Message: "internal error",
			})
		}
		return
	}

	if result.Pending {
		ctx.JSON(http.StatusOK, PendingResponseDTO{
			Status:   "pending",
			Message:  "Join request sent to root device",
			RoomCode: result.Room.Code,
		})
		return
	}

	ctx.JSON(http.StatusOK, CreateResponseDTO{
		Room: RoomDTO{
			Code:     result.Room.Code,
			SyncMode: string(result.Room.SyncMode),
			IsRoot:   result.Room.IsRoot,
		},
	})
}

type ApproveJoinRequestDTO struct {
	RoomCode string `json:"roomCode"`
	DeviceID string `json:"deviceId"`
	Approved bool   `json:"approved"`
}

type AckResponseDTO struct {
	Message string `json:"message"`
}

func (c *Controller) approveJoin(ctx *gin.Context) {
	rootDeviceID := ctx.Query("rootDeviceId")

	var req ApproveJoinRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
			Message: "invalid request format",
		})
		return
	}

	err := c.usecase.ResolveJoinRequest(ctx.Request.Context(), req.RoomCode, rootDeviceID, req.DeviceID, req.Approved)
	if err != nil {
		c.logger.Error("failed to process join request",
			slog.String("code", req.RoomCode),
			slog.String("error", err.Error()))
		switch {
		case errors.Is(err, usecase_room.ErrValidation):
			ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
				Message: "room code, device id and root device id are required",
			})
		case errors.Is(err, usecase_room.ErrPermissionDenied):
			ctx.JSON(http.StatusForbidden, http_common.ErrorResponse{
				Message: "only root device can approve join requests",
			})
		case errors.Is(err, usecase_room.ErrResourceNotFound):
			ctx.JSON(http.StatusNotFound, http_common.ErrorResponse{
				Message: "room, device or pending request not found",
			})
		default:
			ctx.JSON(http.StatusInternalServerError, http_common.ErrorResponse{
				Message: "internal error",
			})
		}
		return
	}

	if req.Approved {
		ctx.JSON(http.StatusOK, AckResponseDTO{Message: "Device approved to join room"})
		return
	}
	ctx.JSON(http.StatusOK, AckResponseDTO{Message: "Device rejected from joining room"})
}

type LeaveRequestDTO struct {
	DeviceID string `json:"deviceId"`
	RoomCode string `json:"roomCode"`
}

func (c *Controller) leave(ctx *gin.Context) {
	var req LeaveRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
			Message: "invalid request format",
		})
		return
	}

	err := c.usecase.Leave(ctx.Request.Context(), req.RoomCode, req.DeviceID)
	if err != nil {
		c.logger.Error("failed to leave room",
			slog.String("code", req.RoomCode),
			slog.String("error", err.Error()))
		switch {
		case errors.Is(err, usecase_room.ErrValidation):
			ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
				Message: "device id and room code are required",
			})
		case errors.Is(err, usecase_room.ErrResourceNotFound):
			ctx.JSON(http.StatusNotFound, http_common.ErrorResponse{
				Message: "room or device not found",
			})
		default:
			ctx.JSON(http.StatusInternalServerError, http_common.ErrorResponse{
				Message: "internal error",
			})
		}
		return
	}

	ctx.JSON(http.StatusOK, AckResponseDTO{Message: "Successfully left the room"})
}

type SyncModeRequestDTO struct {
	RoomCode string `json:"roomCode"`
	SyncMode string `json:"syncMode"`
	DeviceID string `json:"deviceId"`
}

type SyncModeResponseDTO struct {
	Message  string `json:"message"`
	SyncMode string `json:"syncMode"`
}

func (c *Controller) syncMode(ctx *gin.Context) {
	var req SyncModeRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
			Message: "invalid request format",
		})
		return
	}

	mode, err := c.usecase.SetSyncMode(ctx.Request.Context(), req.RoomCode, req.DeviceID, model.SyncMode(req.SyncMode))
	if err != nil {
		c.logger.Error("failed to change sync mode",
			slog.String("code", req.RoomCode),
			slog.String("error", err.Error()))
		switch {
		case errors.Is(err, usecase_room.ErrValidation):
			ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
				Message: "room code, sync mode and device id are required",
			})
		case errors.Is(err, usecase_room.ErrPermissionDenied):
			ctx.JSON(http.StatusForbidden, http_common.ErrorResponse{
				Message: "only root device can change sync mode",
			})
		case errors.Is(err, usecase_room.ErrResourceNotFound):
			ctx.JSON(http.StatusNotFound, http_common.ErrorResponse{
				Message: "room not found or inactive",
			})
		default:
			ctx.JSON(http.StatusInternalServerError, http_common.ErrorResponse{
				Message: "internal error",
			})
		}
		return
	}

	ctx.JSON(http.StatusOK, SyncModeResponseDTO{
		Message:  "Sync mode updated successfully",
		SyncMode: string(mode),
	})
}

type DeviceDTO struct {
	DeviceID   string    `json:"deviceId"`
	Name       string    `json:"name"`
	IsRoot     bool      `json:"isRoot"`
	LastActive time.Time `json:"lastActive"`
}

type RoomInfoDTO struct {
	Code         string      `json:"code"`
	SyncMode     string      `json:"syncMode"`
	RootDeviceID string      `json:"rootDeviceId"`
	Devices      []DeviceDTO `json:"devices"`
	CreatedAt    time.Time   `json:"createdAt"`
}

type RoomInfoResponseDTO struct {
	Room RoomInfoDTO `json:"room"`
}

func (c *Controller) info(ctx *gin.Context) {
	code := ctx.Param("code")

	room, err := c.usecase.Info(ctx.Request.Context(), code)
	if err != nil {
		c.logger.Error("failed to get room info",
			slog.String("code", code),
			slog.String("error", err.Error()))
		if errors.Is(err, usecase_room.ErrResourceNotFound) {
			ctx.JSON(http.StatusNotFound, http_common.ErrorResponse{
				Message: "room not found or inactive",
			})
			return
		}
		ctx.JSON(http.StatusInternalServerError, http_common.ErrorResponse{
			Message: "internal error",
		})
		return
	}

	devices := make([]DeviceDTO, 0, len(room.Devices))
	for _, dev := range room.Devices {
		devices = append(devices, DeviceDTO{
			DeviceID:   dev.DeviceID,
			Name:       dev.Name,
			IsRoot:     room.IsRootDevice(dev.DeviceID),
			LastActive: dev.LastActive,
		})
	}

	ctx.JSON(http.StatusOK, RoomInfoResponseDTO{
		Room: RoomInfoDTO{
			Code:         room.Code,
			SyncMode:     string(room.SyncMode),
			RootDeviceID: room.RootDeviceID,
			Devices:      devices,
			CreatedAt:    room.CreatedAt,
		},
	})
}
