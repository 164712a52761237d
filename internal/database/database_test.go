package database

import (
	"testing"

	"hushwall/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestMigrate(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, Migrate(db))

	for _, table := range []string{
		"accounts", "sessions", "blocklist_entries", "categories", "tags",
		"confessions", "comments", "reactions", "reports", "messages",
	} {
		assert.True(t, db.Migrator().HasTable(table), "missing table %s", table)
	}
	assert.True(t, db.Migrator().HasTable("confession_categories"))
	assert.True(t, db.Migrator().HasTable("report_voters"))
}

func TestMigrateRoundTrip(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	account := &models.Account{Handle: "QUIETFOX", Password: "12345678"}
	require.NoError(t, db.Create(account).Error)

	session := &models.Session{IPAddress: "203.0.113.9", AccountID: &account.ID}
	require.NoError(t, db.Create(session).Error)

	confession := &models.Confession{
		Title:     "First",
		Text:      "text",
		AccountID: &account.ID,
	}
	require.NoError(t, db.Create(confession).Error)

	// Handle uniqueness is enforced at the schema level.
	dup := &models.Account{Handle: "QUIETFOX", Password: "87654321"}
	assert.ErrorIs(t, db.Create(dup).Error, gorm.ErrDuplicatedKey)
}
