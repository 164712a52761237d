// Command main runs one retention pass: expired blocks, stale sessions and
// abandoned generated accounts. Intended for cron.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	"hushwall/internal/config"
	"hushwall/internal/database"
	"hushwall/internal/repository"
	"hushwall/internal/service"

	"github.com/google/uuid"
)

func main() {
	sessionDays := flag.Int("s", service.DefaultSessionMaxAgeDays, "Session retention in days")
	accountDays := flag.Int("u", service.DefaultAccountInactivityDays, "Generated-account inactivity threshold in days")
	flag.Parse()

	runID := uuid.NewString()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil)).With("run_id", runID)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	cleaner := service.NewCleanupService(
		repository.NewBlocklistRepository(db),
		repository.NewSessionRepository(db),
		repository.NewAccountRepository(db),
		logger,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	result, err := cleaner.Run(ctx, *sessionDays, *accountDays)
	if err != nil {
		logger.ErrorContext(ctx, "cleanup pass failed", "error", err)
		os.Exit(1)
	}

	logger.InfoContext(ctx, "cleanup pass complete",
		"expired_blocks", result.ExpiredBlocks,
		"stale_sessions", result.StaleSessions,
		"inactive_accounts", result.InactiveAccounts,
	)
}
