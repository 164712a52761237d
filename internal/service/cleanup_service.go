package service

import (
	"context"
	"log/slog"
	"time"

	"hushwall/internal/observability"
	"hushwall/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// Retention defaults, in days.
const (
	DefaultSessionMaxAgeDays     = 30
	DefaultAccountInactivityDays = 60
)

// CleanupService removes data past its retention window: expired blocklist
// entries, stale sessions and generated accounts nobody came back for.
// Blocklisted sessions and accounts are never removed, or the ban would stop
// matching anything.
type CleanupService struct {
	blocklist repository.BlocklistRepository
	sessions  repository.SessionRepository
	accounts  repository.AccountRepository
	logger    *slog.Logger
}

func NewCleanupService(
	blocklist repository.BlocklistRepository,
	sessions repository.SessionRepository,
	accounts repository.AccountRepository,
	logger *slog.Logger,
) *CleanupService {
	return &CleanupService{blocklist: blocklist, sessions: sessions, accounts: accounts, logger: logger}
}

// CleanupResult tallies the rows removed by one run.
type CleanupResult struct {
	ExpiredBlocks    int64 `json:"expired_blocks"`
	StaleSessions    int64 `json:"stale_sessions"`
	InactiveAccounts int64 `json:"inactive_accounts"`
}

// Run performs one cleanup pass with the given retention windows.
func (s *CleanupService) Run(ctx context.Context, sessionMaxAgeDays, accountInactivityDays int) (*CleanupResult, error) {
	span, ctx := observability.NewSpan(ctx, "cleanup.run")
	defer span.End()

	now := time.Now()
	result := &CleanupResult{}

	expired, err := s.blocklist.DeleteExpired(ctx, now)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	result.ExpiredBlocks = expired

	stale, err := s.sessions.DeleteStale(ctx, now.AddDate(0, 0, -sessionMaxAgeDays))
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	result.StaleSessions = stale

	inactive, err := s.accounts.DeleteInactiveGenerated(ctx, now.AddDate(0, 0, -accountInactivityDays))
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	result.InactiveAccounts = inactive

	span.AddAttributes(
		attribute.Int64("cleanup.expired_blocks", result.ExpiredBlocks),
		attribute.Int64("cleanup.stale_sessions", result.StaleSessions),
		attribute.Int64("cleanup.inactive_accounts", result.InactiveAccounts),
	)

	observability.CleanupRemovals.WithLabelValues("blocks").Add(float64(result.ExpiredBlocks))
	observability.CleanupRemovals.WithLabelValues("sessions").Add(float64(result.StaleSessions))
	observability.CleanupRemovals.WithLabelValues("accounts").Add(float64(result.InactiveAccounts))

	s.logger.InfoContext(ctx, "cleanup pass finished",
		"expired_blocks", result.ExpiredBlocks,
		"stale_sessions", result.StaleSessions,
		"inactive_accounts", result.InactiveAccounts,
	)
	return result, nil
}
