package main

import (
	"context"
	"flag"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"venuehub/internal/config"
	"venuehub/internal/database"
	"venuehub/internal/logger"
	"venuehub/internal/repository"
	"venuehub/internal/service"
)

func main() {
	var ownerID string
	flag.StringVar(&ownerID, "owner-id", "", "Recompute a single owner's dashboard (default: all owners)")
	flag.Parse()

	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slog.Info("Connecting to database")
	db, err := database.Connect(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	defer db.Close()

	dashboards := service.NewDashboardService(repository.NewDashboardRepository(db))
	start := time.Now()

	if ownerID != "" {
		summary, err := dashboards.Recompute(ctx, ownerID)
		if err != nil {
			logger.Fatal("Dashboard recompute failed", "owner_id", ownerID, "error", err)
		}
		slog.Info("Dashboard recomputed",
			"owner_id", ownerID,
			"venues", summary.TotalVenues.Total,
			"revenue", summary.Revenue.Total.String())
		return
	}

	done, err := dashboards.RecomputeAll(ctx)
	slog.Info("Dashboard recompute finished",
		"owners_recomputed", done,
		"duration", time.Since(start).String())
	if err != nil {
		logger.Fatal("Some dashboards failed to recompute", "error", err)
	}
}
