package repository

import (
	"context"
	"time"

	"hushwall/internal/models"

	"gorm.io/gorm"
)

// ReactionRepository defines interface for reaction operations
type ReactionRepository interface {
	Create(ctx context.Context, reaction *models.Reaction) error
	GetByID(ctx context.Context, id uint) (*models.Reaction, error)
	ListBySession(ctx context.Context, sessionID uint, limit, offset int) ([]*models.Reaction, error)
	Delete(ctx context.Context, id uint) error
	Exists(ctx context.Context, sessionID uint, confessionID, commentID *uint, emoji string) (bool, error)
	Histogram(ctx context.Context, confessionID, commentID *uint) ([]models.EmojiBucket, error)
	EmojisBySession(ctx context.Context, sessionID uint, confessionID, commentID *uint) ([]string, error)
	CountBySessionSince(ctx context.Context, sessionID uint, since time.Time) (int64, error)
}

type reactionRepository struct {
	db *gorm.DB
}

// NewReactionRepository creates a new ReactionRepository
func NewReactionRepository(db *gorm.DB) ReactionRepository {
	return &reactionRepository{db: db}
}

func (r *reactionRepository) Create(ctx context.Context, reaction *models.Reaction) error {
	return r.db.WithContext(ctx).Create(reaction).Error
}

func (r *reactionRepository) GetByID(ctx context.Context, id uint) (*models.Reaction, error) {
	var reaction models.Reaction
	if err := r.db.WithContext(ctx).First(&reaction, id).Error; err != nil {
		return nil, err
	}
	return &reaction, nil
}

func (r *reactionRepository) ListBySession(ctx context.Context, sessionID uint, limit, offset int) ([]*models.Reaction, error) {
	var reactions []*models.Reaction
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("id DESC").Limit(limit).Offset(offset).
		Find(&reactions).Error
	return reactions, err
}

func (r *reactionRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Reaction{}, id).Error
}

func targetScope(q *gorm.DB, confessionID, commentID *uint) *gorm.DB {
	if confessionID != nil {
		q = q.Where("confession_id = ?", *confessionID)
	}
	if commentID != nil {
		q = q.Where("comment_id = ?", *commentID)
	}
	return q
}

// Exists reports whether the session already gave this exact reaction to the
// target.
func (r *reactionRepository) Exists(ctx context.Context, sessionID uint, confessionID, commentID *uint, emoji string) (bool, error) {
	q := r.db.WithContext(ctx).Model(&models.Reaction{}).
		Where("session_id = ? AND emoji = ?", sessionID, emoji)
	q = targetScope(q, confessionID, commentID)

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Histogram aggregates reactions on a target into one bucket per emoji.
// Viewer-neutral on purpose: the caller's own-reaction flag is layered on by
// the service so the result can be cached and shared.
func (r *reactionRepository) Histogram(ctx context.Context, confessionID, commentID *uint) ([]models.EmojiBucket, error) {
	q := r.db.WithContext(ctx).Model(&models.Reaction{}).
		Select("emoji, COUNT(*) AS count")
	q = targetScope(q, confessionID, commentID)

	var rows []struct {
		Emoji string
		Count int
	}
	if err := q.Group("emoji").Order("count DESC").Scan(&rows).Error; err != nil {
		return nil, err
	}

	buckets := make([]models.EmojiBucket, 0, len(rows))
	for _, row := range rows {
		buckets = append(buckets, models.EmojiBucket{Emoji: row.Emoji, Count: row.Count})
	}
	return buckets, nil
}

// EmojisBySession lists the emojis the session gave to a target.
func (r *reactionRepository) EmojisBySession(ctx context.Context, sessionID uint, confessionID, commentID *uint) ([]string, error) {
	q := r.db.WithContext(ctx).Model(&models.Reaction{}).
		Where("session_id = ?", sessionID)
	q = targetScope(q, confessionID, commentID)

	var emojis []string
	err := q.Pluck("emoji", &emojis).Error
	return emojis, err
}

func (r *reactionRepository) CountBySessionSince(ctx context.Context, sessionID uint, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Reaction{}).
		Where("session_id = ? AND created_at >= ?", sessionID, since).
		Count(&count).Error
	return count, err
}
