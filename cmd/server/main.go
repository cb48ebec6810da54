// Package main runs the live classroom polling server: one WebSocket session,
// PostgreSQL-backed polls and graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Chetan8299/live-polling-backend/config"
	"github.com/Chetan8299/live-polling-backend/internal/middleware"
	"github.com/Chetan8299/live-polling-backend/internal/polls"
	"github.com/Chetan8299/live-polling-backend/internal/realtime"
	"github.com/Chetan8299/live-polling-backend/internal/session"
	"github.com/Chetan8299/live-polling-backend/pkg/database"
	"github.com/Chetan8299/live-polling-backend/pkg/redis"
	"github.com/Chetan8299/live-polling-backend/pkg/response"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	// Event mirror is optional: without Redis the hub runs local-only.
	var mirror realtime.EventPublisher
	if cfg.Redis.Addr != "" {
		rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
		if err != nil {
			logger.Warn("event mirror disabled", zap.Error(err))
		} else {
			defer rdb.Close()
			mirror = realtime.NewRedisPubSub(rdb.Client, logger)
		}
	}

	hub := realtime.NewHub(logger, mirror)
	pollRepo := polls.NewRepository(pool)
	sess := session.New(pollRepo, hub, cfg.Poll.DefaultTimeLimit, logger)
	defer sess.Close()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	router.GET("/health", func(c *gin.Context) {
		response.OK(c, gin.H{"status": "ok", "clients": hub.ClientCount()})
	})
	router.GET("/ws", realtime.ServeWs(hub, sess, logger))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
