package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/onkar69483/CodeDrop-Desktop/internal/config"
	http_clipboard "github.com/onkar69483/CodeDrop-Desktop/internal/delivery/http/clipboard"
	http_health "github.com/onkar69483/CodeDrop-Desktop/internal/delivery/http/health"
	http_init "github.com/onkar69483/CodeDrop-Desktop/internal/delivery/http/init"
	http_room "github.com/onkar69483/CodeDrop-Desktop/internal/delivery/http/room"
	ws_room "github.com/onkar69483/CodeDrop-Desktop/internal/delivery/ws/room"
	infra_postgres_device "github.com/onkar69483/CodeDrop-Desktop/internal/infra/postgres/device"
	infra_pg_init "github.com/onkar69483/CodeDrop-Desktop/internal/infra/postgres/init"
	infra_postgres_room "github.com/onkar69483/CodeDrop-Desktop/internal/infra/postgres/room"
	infra_clipboard_cache "github.com/onkar69483/CodeDrop-Desktop/internal/infra/redis/clipboard"
	infra_redis_init "github.com/onkar69483/CodeDrop-Desktop/internal/infra/redis/init"
	usecase_clipboard "github.com/onkar69483/CodeDrop-Desktop/internal/usecase/clipboard"
	usecase_room "github.com/onkar69483/CodeDrop-Desktop/internal/usecase/room"
)

func Go(cfg *config.Config) {
	redisConn := infra_redis_init.MustEstablishConn(cfg.Redis)
	pgConn := infra_pg_init.MustEstablishConn(cfg.Postgres)

	roomRepository := infra_postgres_room.New(pgConn)
	deviceRepository := infra_postgres_device.New(pgConn)
	contentCache := infra_clipboard_cache.New(redisConn, "clipboard_last")

	hub := ws_room.NewHub()

	roomUC := usecase_room.New(roomRepository, deviceRepository, hub, usecase_room.Config{
		TTL: cfg.Rooms.TTL,
	})
	clipboardUC := usecase_clipboard.New(roomUC, contentCache, hub, cfg.Rooms.TTL)

	go sweepExpiredRooms(roomUC, cfg.Rooms.SweepInterval)

	controllerPool := http_init.NewControllerPool()
	controllerPool.Add(http_health.New())
	controllerPool.Add(http_room.New(roomUC))
	controllerPool.Add(http_clipboard.New(clipboardUC))
	controllerPool.Add(ws_room.NewController(hub, roomUC, clipboardUC))

	controllerPool.Register()
	controllerPool.RunAll(cfg.HTTP.Port)
}

// sweepExpiredRooms enforces the absolute room TTL. Closing broadcasts
// roomClosed to any remaining subscribers.
func sweepExpiredRooms(roomUC *usecase_room.Usecase, interval time.Duration) {
	logger := slog.Default()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		closed, err := roomUC.CloseExpired(context.Background())
		if err != nil {
			logger.Error("expiry sweep failed", slog.String("error", err.Error()))
			continue
		}
		if closed > 0 {
			logger.Info("closed expired rooms", slog.Int("count", closed))
		}
	}
}
