// Package policy implements creation-time throttles. Unlike the transport
// limiter in front of the app, these count persisted rows for the acting
// identity inside a trailing window, so they survive restarts and apply per
// identity rather than per connection.
package policy

import (
	"context"
	"time"

	"hushwall/internal/models"
	"hushwall/internal/observability"
)

// Creation limits.
const (
	ConfessionWindow = 24 * time.Hour
	CommentWindow    = time.Hour
	ReactionWindow   = time.Hour
	CommentLimit     = 3
	ReactionLimit    = 3
)

// CountStore supplies trailing-window row counts for the acting identity.
type CountStore interface {
	CountConfessionsByAccountSince(ctx context.Context, accountID uint, since time.Time) (int64, error)
	CountCommentsBySessionSince(ctx context.Context, sessionID uint, since time.Time) (int64, error)
	CountReactionsBySessionSince(ctx context.Context, sessionID uint, since time.Time) (int64, error)
}

// RateLimiter rejects creations that exceed the per-identity windows.
type RateLimiter struct {
	store CountStore
	now   func() time.Time
}

// NewRateLimiter creates a rate limiter over the given count store.
func NewRateLimiter(store CountStore) *RateLimiter {
	return &RateLimiter{store: store, now: time.Now}
}

// CheckConfession rejects when the account already authored a confession in
// the trailing 24 hours: one confession per day.
func (r *RateLimiter) CheckConfession(ctx context.Context, accountID uint) error {
	count, err := r.store.CountConfessionsByAccountSince(ctx, accountID, r.now().Add(-ConfessionWindow))
	if err != nil {
		return err
	}
	if count > 0 {
		observability.RateLimitRejections.WithLabelValues("confession").Inc()
		return models.NewPolicyError("You already made one confession in the last day.")
	}
	return nil
}

// CheckComment rejects once the session has created exactly CommentLimit
// comments in the trailing hour. The equality comparison (rather than >=) is
// the documented contract.
func (r *RateLimiter) CheckComment(ctx context.Context, sessionID uint) error {
	count, err := r.store.CountCommentsBySessionSince(ctx, sessionID, r.now().Add(-CommentWindow))
	if err != nil {
		return err
	}
	if count == CommentLimit {
		observability.RateLimitRejections.WithLabelValues("comment").Inc()
		return models.NewPolicyError("You already gave three comments in the last hour.")
	}
	return nil
}

// CheckReaction is CheckComment for reactions.
func (r *RateLimiter) CheckReaction(ctx context.Context, sessionID uint) error {
	count, err := r.store.CountReactionsBySessionSince(ctx, sessionID, r.now().Add(-ReactionWindow))
	if err != nil {
		return err
	}
	if count == ReactionLimit {
		observability.RateLimitRejections.WithLabelValues("reaction").Inc()
		return models.NewPolicyError("You already gave three reactions in the last hour.")
	}
	return nil
}
