package repository

import (
	"context"
	"testing"
	"time"

	"hushwall/internal/database"
	"hushwall/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func TestCascadeDeleteConfession(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewConfessionRepository(db)

	confession := &models.Confession{Title: "Doomed", Text: "text"}
	require.NoError(t, db.Create(confession).Error)
	comment := &models.Comment{ConfessionID: confession.ID, Text: "child"}
	require.NoError(t, db.Create(comment).Error)
	require.NoError(t, db.Create(&models.Reaction{ConfessionID: &confession.ID, Emoji: "🔥"}).Error)
	require.NoError(t, db.Create(&models.Reaction{CommentID: &comment.ID, Emoji: "🔥"}).Error)
	confessionReport := &models.Report{ConfessionID: &confession.ID, Reason: "reported directly"}
	require.NoError(t, db.Create(confessionReport).Error)
	commentReport := &models.Report{CommentID: &comment.ID, Reason: "reported via comment"}
	require.NoError(t, db.Create(commentReport).Error)

	// An unrelated confession must survive untouched.
	bystander := &models.Confession{Title: "Bystander", Text: "text"}
	require.NoError(t, db.Create(bystander).Error)

	require.NoError(t, repo.Delete(ctx, confession.ID))

	var confessions, comments, reactions int64
	require.NoError(t, db.Model(&models.Confession{}).Count(&confessions).Error)
	require.NoError(t, db.Model(&models.Comment{}).Count(&comments).Error)
	require.NoError(t, db.Model(&models.Reaction{}).Count(&reactions).Error)
	assert.EqualValues(t, 1, confessions)
	assert.Zero(t, comments)
	assert.Zero(t, reactions)

	// Reports survive with their target references nulled.
	var r1, r2 models.Report
	require.NoError(t, db.First(&r1, confessionReport.ID).Error)
	require.NoError(t, db.First(&r2, commentReport.ID).Error)
	assert.Nil(t, r1.ConfessionID)
	assert.Nil(t, r2.CommentID)
}

func TestConfessionListVisibility(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewConfessionRepository(db)

	author := &models.Account{Handle: "AUTHORAA", Password: "ABCD1234"}
	require.NoError(t, db.Create(author).Error)
	require.NoError(t, db.Create(&models.Confession{Title: "Mine unapproved", Text: "x", AccountID: &author.ID}).Error)
	require.NoError(t, db.Create(&models.Confession{Title: "Mine approved", Text: "x", AccountID: &author.ID, IsApproved: true}).Error)
	require.NoError(t, db.Create(&models.Confession{Title: "Theirs unapproved", Text: "x"}).Error)

	t.Run("anonymous sees approved only", func(t *testing.T) {
		list, err := repo.List(ctx, ConfessionListOptions{Limit: 10})
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "Mine approved", list[0].Title)
	})

	t.Run("author also sees own unapproved, newest first", func(t *testing.T) {
		list, err := repo.List(ctx, ConfessionListOptions{ViewerAccountID: &author.ID, Limit: 10})
		require.NoError(t, err)
		require.Len(t, list, 2)
		// No moderation-queue ordering for regular members.
		assert.Equal(t, "Mine approved", list[0].Title)
		assert.Equal(t, "Mine unapproved", list[1].Title)
	})

	t.Run("staff sees everything, unapproved first", func(t *testing.T) {
		list, err := repo.List(ctx, ConfessionListOptions{ViewerAccountID: &author.ID, Staff: true, Limit: 10})
		require.NoError(t, err)
		require.Len(t, list, 3)
		assert.False(t, list[0].IsApproved)
	})

	t.Run("own filter", func(t *testing.T) {
		list, err := repo.List(ctx, ConfessionListOptions{ViewerAccountID: &author.ID, Own: true, Limit: 10})
		require.NoError(t, err)
		assert.Len(t, list, 2)
	})
}

func TestConfessionSearchAndCounts(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewConfessionRepository(db)

	tagged := &models.Confession{Title: "Plain title", Text: "plain body", IsApproved: true}
	require.NoError(t, db.Create(tagged).Error)
	tags, err := repo.EnsureTags(ctx, []string{"nightshift"})
	require.NoError(t, err)
	require.NoError(t, repo.ReplaceTags(ctx, tagged, tags))

	other := &models.Confession{Title: "Something else", Text: "matching needle here", IsApproved: true}
	require.NoError(t, db.Create(other).Error)
	require.NoError(t, db.Create(&models.Comment{ConfessionID: other.ID, Text: "one"}).Error)
	require.NoError(t, db.Create(&models.Comment{ConfessionID: other.ID, Text: "two"}).Error)

	t.Run("search matches text", func(t *testing.T) {
		list, err := repo.List(ctx, ConfessionListOptions{Search: "needle", Limit: 10})
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, other.ID, list[0].ID)
	})

	t.Run("search matches tags", func(t *testing.T) {
		list, err := repo.List(ctx, ConfessionListOptions{Search: "nightshift", Limit: 10})
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, tagged.ID, list[0].ID)
	})

	t.Run("rows carry computed counts", func(t *testing.T) {
		got, err := repo.GetByID(ctx, other.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, got.CommentCount)
	})

	t.Run("most comments sort", func(t *testing.T) {
		list, err := repo.List(ctx, ConfessionListOptions{SortBy: SortMostComments, Limit: 10})
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, other.ID, list[0].ID)
	})
}

func TestCountsSince(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	store := NewCountStore(db)

	account := &models.Account{Handle: "COUNTERA", Password: "ABCD1234"}
	require.NoError(t, db.Create(account).Error)
	session := &models.Session{IPAddress: "203.0.113.7"}
	require.NoError(t, db.Create(session).Error)

	old := time.Now().Add(-2 * time.Hour)
	require.NoError(t, db.Create(&models.Confession{Title: "Recent", Text: "x", AccountID: &account.ID}).Error)
	require.NoError(t, db.Create(&models.Comment{ConfessionID: 1, SessionID: &session.ID, Text: "recent"}).Error)
	stale := &models.Comment{ConfessionID: 1, SessionID: &session.ID, Text: "stale"}
	require.NoError(t, db.Create(stale).Error)
	require.NoError(t, db.Model(stale).Update("created_at", old).Error)

	since := time.Now().Add(-time.Hour)

	confessions, err := store.CountConfessionsByAccountSince(ctx, account.ID, since)
	require.NoError(t, err)
	assert.EqualValues(t, 1, confessions)

	comments, err := store.CountCommentsBySessionSince(ctx, session.ID, since)
	require.NoError(t, err)
	assert.EqualValues(t, 1, comments)

	reactions, err := store.CountReactionsBySessionSince(ctx, session.ID, since)
	require.NoError(t, err)
	assert.Zero(t, reactions)
}
