package seed

import (
	"os"
	"path/filepath"
	"testing"

	"hushwall/internal/database"
	"hushwall/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newSeedDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func TestCategoriesUpsert(t *testing.T) {
	db := newSeedDB(t)

	require.NoError(t, Categories(db))
	var count int64
	require.NoError(t, db.Model(&models.Category{}).Count(&count).Error)
	assert.EqualValues(t, len(BuiltInCategories), count)

	// A second pass is a no-op.
	require.NoError(t, Categories(db))
	require.NoError(t, db.Model(&models.Category{}).Count(&count).Error)
	assert.EqualValues(t, len(BuiltInCategories), count)
}

func TestSeed(t *testing.T) {
	db := newSeedDB(t)

	require.NoError(t, Seed(db, Options{NumAccounts: 5, NumConfessions: 10, ShouldClean: true}))

	var accounts, sessions, confessions int64
	require.NoError(t, db.Model(&models.Account{}).Count(&accounts).Error)
	require.NoError(t, db.Model(&models.Session{}).Count(&sessions).Error)
	require.NoError(t, db.Model(&models.Confession{}).Count(&confessions).Error)
	assert.EqualValues(t, 5, accounts)
	assert.EqualValues(t, 5, sessions)
	assert.EqualValues(t, 10, confessions)

	// Every confession has an author and every session is bound.
	var orphaned int64
	require.NoError(t, db.Model(&models.Confession{}).Where("account_id IS NULL").Count(&orphaned).Error)
	assert.Zero(t, orphaned)
}

func TestSeedRequiresAccounts(t *testing.T) {
	db := newSeedDB(t)
	assert.Error(t, Seed(db, Options{NumAccounts: 0, NumConfessions: 3}))
}

func TestLoadFixtures(t *testing.T) {
	db := newSeedDB(t)

	path := filepath.Join(t.TempDir(), "fixtures.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"categories:\n  - confessions at sea\ntags:\n  - maritime\n"), 0o644))

	require.NoError(t, LoadFixtures(db, path))

	var category models.Category
	require.NoError(t, db.Where("name = ?", "Confessions at sea").First(&category).Error)
	var tag models.Tag
	require.NoError(t, db.Where("name = ?", "maritime").First(&tag).Error)

	t.Run("missing file", func(t *testing.T) {
		assert.Error(t, LoadFixtures(db, filepath.Join(t.TempDir(), "nope.yaml")))
	})
}
