package repository

import (
	"context"
	"time"

	"hushwall/internal/models"

	"gorm.io/gorm"
)

// countStore supplies the trailing-window creation counts the rate limiter
// consumes.
type countStore struct {
	db *gorm.DB
}

// NewCountStore creates a count store backed by the given database.
func NewCountStore(db *gorm.DB) *countStore {
	return &countStore{db: db}
}

func (s *countStore) CountConfessionsByAccountSince(ctx context.Context, accountID uint, since time.Time) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Confession{}).
		Where("account_id = ? AND created_at >= ?", accountID, since).
		Count(&count).Error
	return count, err
}

func (s *countStore) CountCommentsBySessionSince(ctx context.Context, sessionID uint, since time.Time) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Comment{}).
		Where("session_id = ? AND created_at >= ?", sessionID, since).
		Count(&count).Error
	return count, err
}

func (s *countStore) CountReactionsBySessionSince(ctx context.Context, sessionID uint, since time.Time) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Reaction{}).
		Where("session_id = ? AND created_at >= ?", sessionID, since).
		Count(&count).Error
	return count, err
}
