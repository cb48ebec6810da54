// Package main follows a live classroom session through the Redis event
// mirror and logs every broadcast. Useful as an ops view or to drive a
// projector display without holding a WebSocket on the server.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Chetan8299/live-polling-backend/config"
	"github.com/Chetan8299/live-polling-backend/internal/realtime"
	"github.com/Chetan8299/live-polling-backend/pkg/redis"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}
	if cfg.Redis.Addr == "" {
		logger.Fatal("REDIS_ADDR is required for the monitor")
	}

	ctx := context.Background()
	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	pubsub := realtime.NewRedisPubSub(rdb.Client, logger)
	cancel, err := pubsub.SubscribeSessionEvents(func(event string, payload []byte) {
		logger.Info("session event",
			zap.String("event", event),
			zap.ByteString("payload", payload))
	})
	if err != nil {
		logger.Fatal("subscribe", zap.Error(err))
	}
	defer cancel()

	logger.Info("monitoring classroom events", zap.String("redis", cfg.Redis.Addr))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("monitor stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
