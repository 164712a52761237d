package policy

import (
	"context"
	"testing"
	"time"

	"hushwall/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCountStore struct {
	confessions int64
	comments    int64
	reactions   int64
	err         error

	lastSince time.Time
}

func (s *stubCountStore) CountConfessionsByAccountSince(_ context.Context, _ uint, since time.Time) (int64, error) {
	s.lastSince = since
	return s.confessions, s.err
}

func (s *stubCountStore) CountCommentsBySessionSince(_ context.Context, _ uint, since time.Time) (int64, error) {
	s.lastSince = since
	return s.comments, s.err
}

func (s *stubCountStore) CountReactionsBySessionSince(_ context.Context, _ uint, since time.Time) (int64, error) {
	s.lastSince = since
	return s.reactions, s.err
}

func isPolicyError(t *testing.T, err error) {
	t.Helper()
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "POLICY_VIOLATION", appErr.Code)
}

func TestCheckConfession(t *testing.T) {
	t.Run("first confession of the day passes", func(t *testing.T) {
		store := &stubCountStore{confessions: 0}
		limiter := NewRateLimiter(store)
		assert.NoError(t, limiter.CheckConfession(context.Background(), 1))
	})

	t.Run("any prior confession in the window rejects", func(t *testing.T) {
		store := &stubCountStore{confessions: 1}
		limiter := NewRateLimiter(store)
		isPolicyError(t, limiter.CheckConfession(context.Background(), 1))
	})

	t.Run("window is 24 hours", func(t *testing.T) {
		store := &stubCountStore{}
		limiter := NewRateLimiter(store)
		now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		limiter.now = func() time.Time { return now }

		require.NoError(t, limiter.CheckConfession(context.Background(), 1))
		assert.Equal(t, now.Add(-24*time.Hour), store.lastSince)
	})

	t.Run("store errors surface", func(t *testing.T) {
		store := &stubCountStore{err: context.DeadlineExceeded}
		limiter := NewRateLimiter(store)
		assert.ErrorIs(t, limiter.CheckConfession(context.Background(), 1), context.DeadlineExceeded)
	})
}

func TestCheckCommentBoundary(t *testing.T) {
	for count, wantErr := range map[int64]bool{0: false, 2: false, 3: true} {
		store := &stubCountStore{comments: count}
		limiter := NewRateLimiter(store)
		err := limiter.CheckComment(context.Background(), 1)
		if wantErr {
			isPolicyError(t, err)
		} else {
			assert.NoError(t, err, "count %d", count)
		}
	}
}

func TestCheckReactionBoundary(t *testing.T) {
	for count, wantErr := range map[int64]bool{0: false, 2: false, 3: true} {
		store := &stubCountStore{reactions: count}
		limiter := NewRateLimiter(store)
		err := limiter.CheckReaction(context.Background(), 1)
		if wantErr {
			isPolicyError(t, err)
		} else {
			assert.NoError(t, err, "count %d", count)
		}
	}
}
