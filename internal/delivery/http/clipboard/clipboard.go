package http_clipboard

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	http_common "github.com/onkar69483/CodeDrop-Desktop/internal/delivery/http/common"
	usecase_clipboard "github.com/onkar69483/CodeDrop-Desktop/internal/usecase/clipboard"
)

type Controller struct {
	usecase *usecase_clipboard.Usecase
	logger  *slog.Logger
}

func New(usecase *usecase_clipboard.Usecase) *Controller {
	return &Controller{
		usecase: usecase,
		logger:  slog.Default(),
	}
}

func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	clipboard := router.Group("/clipboard")
	{
		clipboard.POST("/sync", c.sync)
		clipboard.GET("/last/:roomCode", c.last)
	}
}

type SyncRequestDTO struct {
	RoomCode string  `json:"roomCode"`
	Content  *string `json:"content"`
	DeviceID string  `json:"deviceId"`
}

type AckResponseDTO struct {
	Message string `json:"message"`
}

func (c *Controller) sync(ctx *gin.Context) {
	var req SyncRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
			Message: "invalid request format",
		})
		return
	}
	// Empty clipboard content is a valid push; an absent field is not.
	if req.Content == nil {
		ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
			Message: "room code, clipboard content and device id are required",
		})
		return
	}

	err := c.usecase.Sync(ctx.Request.Context(), req.RoomCode, req.DeviceID, *req.Content)
	if err != nil {
		c.logger.Error("failed to sync clipboard",
			slog.String("room", req.RoomCode),
			slog.String("device_id", req.DeviceID),
			slog.String("error", err.Error()))
		switch {
		case errors.Is(err, usecase_clipboard.ErrValidation):
			ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
				Message: "room code, clipboard content and device id are required",
			})
		case errors.Is(err, usecase_clipboard.ErrResourceNotFound):
			ctx.JSON(http.StatusNotFound, http_common.ErrorResponse{
				Message: "room or device not found",
			})
		case errors.Is(err, usecase_clipboard.ErrPermissionDenied):
			ctx.JSON(http.StatusForbidden, http_common.ErrorResponse{
				Message: "device is not allowed to sync in this room",
			})
		default:
			ctx.JSON(http.StatusInternalServerError, http_common.ErrorResponse{
				Message: "internal error",
			})
		}
		return
	}

	ctx.JSON(http.StatusOK, AckResponseDTO{Message: "Clipboard synced successfully"})
}

type LastResponseDTO struct {
	RoomCode string `json:"roomCode"`
	Content  string `json:"content"`
}

func (c *Controller) last(ctx *gin.Context) {
	roomCode := ctx.Param("roomCode")

	content, err := c.usecase.Last(ctx.Request.Context(), roomCode)
	if err != nil {
		if errors.Is(err, usecase_clipboard.ErrResourceNotFound) {
			ctx.JSON(http.StatusNotFound, http_common.ErrorResponse{
				Message: "no synced content for this room",
			})
			return
		}
		c.logger.Error("failed to get last synced content",
			slog.String("room", roomCode),
			slog.String("error", err.Error()))
		ctx.JSON(http.StatusInternalServerError, http_common.ErrorResponse{
			Message: "internal error",
		})
		return
	}

	ctx.JSON(http.StatusOK, LastResponseDTO{
		RoomCode: roomCode,
		Content:  content,
	})
}
