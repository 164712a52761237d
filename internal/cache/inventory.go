package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	ConfessionReactionsPrefix = "confession:%d:reactions"
	CommentReactionsPrefix    = "comment:%d:reactions"
	RevokedTokenPrefix        = "revoked:%s"
)

const (
	ReactionsTTL = 2 * time.Minute
)

func ConfessionReactionsKey(confessionID uint) string {
	return fmt.Sprintf(ConfessionReactionsPrefix, confessionID)
}

func CommentReactionsKey(commentID uint) string {
	return fmt.Sprintf(CommentReactionsPrefix, commentID)
}

func revokedTokenKey(jti string) string {
	return fmt.Sprintf(RevokedTokenPrefix, jti)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

// InvalidateReactions drops the cached reaction tally for whichever target
// the reaction belongs to.
func InvalidateReactions(ctx context.Context, confessionID, commentID *uint) {
	if confessionID != nil {
		Invalidate(ctx, ConfessionReactionsKey(*confessionID))
	}
	if commentID != nil {
		Invalidate(ctx, CommentReactionsKey(*commentID))
	}
}

// RevokeToken remembers a logged-out token id until the token would have
// expired anyway. Without Redis logout degrades to client-side discard.
func RevokeToken(ctx context.Context, jti string, ttl time.Duration) {
	if client == nil || jti == "" || ttl <= 0 {
		return
	}
	client.Set(ctx, revokedTokenKey(jti), "1", ttl)
}

// TokenRevoked reports whether the token id was revoked by a logout.
func TokenRevoked(ctx context.Context, jti string) bool {
	if client == nil || jti == "" {
		return false
	}
	n, err := client.Exists(ctx, revokedTokenKey(jti)).Result()
	return err == nil && n > 0
}
