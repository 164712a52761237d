package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"hushwall/internal/models"
	"hushwall/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanupRun(t *testing.T) {
	db := newServiceDB(t)
	svc := NewCleanupService(
		repository.NewBlocklistRepository(db),
		repository.NewSessionRepository(db),
		repository.NewAccountRepository(db),
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)

	now := time.Now()
	old := now.AddDate(0, 0, -90)

	// Expired and active bans.
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)
	require.NoError(t, db.Create(&models.BlocklistEntry{Expires: &past}).Error)
	require.NoError(t, db.Create(&models.BlocklistEntry{Expires: &future}).Error)
	permanent := &models.BlocklistEntry{}

	// Stale, fresh and banned-but-stale sessions.
	stale := &models.Session{IPAddress: "203.0.113.30"}
	fresh := &models.Session{IPAddress: "203.0.113.31"}
	bannedStale := &models.Session{IPAddress: "203.0.113.32"}
	require.NoError(t, db.Create(stale).Error)
	require.NoError(t, db.Create(fresh).Error)
	require.NoError(t, db.Create(bannedStale).Error)
	require.NoError(t, db.Model(stale).Update("created_at", old).Error)
	require.NoError(t, db.Model(bannedStale).Update("created_at", old).Error)
	permanent.SessionID = &bannedStale.ID
	require.NoError(t, db.Create(permanent).Error)

	// Inactive generated, active generated, inactive custom.
	inactiveGenerated := &models.Account{Handle: "OLDGHOST", Password: "ABCD1234", LastLogin: &old}
	activeGenerated := &models.Account{Handle: "FRESHGEN", Password: "ABCD1234", LastLogin: &now}
	inactiveCustom := &models.Account{Handle: "OLDREGLR", Password: "$2a$10$hash", PasswordCustom: true, LastLogin: &old}
	neverLoggedIn := &models.Account{Handle: "NEVRSEEN", Password: "ABCD1234"}
	require.NoError(t, db.Create(inactiveGenerated).Error)
	require.NoError(t, db.Create(activeGenerated).Error)
	require.NoError(t, db.Create(inactiveCustom).Error)
	require.NoError(t, db.Create(neverLoggedIn).Error)

	result, err := svc.Run(context.Background(), DefaultSessionMaxAgeDays, DefaultAccountInactivityDays)
	require.NoError(t, err)

	assert.EqualValues(t, 1, result.ExpiredBlocks)
	assert.EqualValues(t, 1, result.StaleSessions)
	assert.EqualValues(t, 1, result.InactiveAccounts)

	// The banned stale session survives so the ban keeps matching.
	var sessions int64
	require.NoError(t, db.Model(&models.Session{}).Count(&sessions).Error)
	assert.EqualValues(t, 2, sessions)

	// Customized and never-logged-in accounts survive.
	var handles []string
	require.NoError(t, db.Model(&models.Account{}).Order("handle").Pluck("handle", &handles).Error)
	assert.Equal(t, []string{"FRESHGEN", "NEVRSEEN", "OLDREGLR"}, handles)
}
