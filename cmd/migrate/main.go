// Package main audits stored polls for rows without an owner. Polls created
// before owner tracking never show up in any teacher's history; this tool
// lists them so an operator can decide what to do with the rows.
package main

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Chetan8299/live-polling-backend/config"
	"github.com/Chetan8299/live-polling-backend/internal/polls"
	"github.com/Chetan8299/live-polling-backend/pkg/database"
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

	repo := polls.NewRepository(pool)
	orphaned, err := repo.ListOrphaned(ctx)
	if err != nil {
		logger.Fatal("list orphaned polls", zap.Error(err))
	}

	if len(orphaned) == 0 {
		logger.Info("all polls have an owner, nothing to do")
		return
	}

	logger.Info("found polls without an owner; they will not appear in any poll history",
		zap.Int("count", len(orphaned)))
	for _, p := range orphaned {
		logger.Info("orphaned poll",
			zap.String("id", p.ID.String()),
			zap.String("question", p.Question),
			zap.Int("responses", len(p.Responses)),
			zap.Time("created_at", p.CreatedAt))
	}
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
