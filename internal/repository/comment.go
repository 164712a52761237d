package repository

import (
	"context"
	"time"

	"hushwall/internal/models"

	"gorm.io/gorm"
)

// CommentListOptions narrow the comment listing.
type CommentListOptions struct {
	ConfessionID *uint
	SessionID    *uint // "mine only"
	Limit        int
	Offset       int
}

// CommentRepository defines interface for comment operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	List(ctx context.Context, opts CommentListOptions) ([]*models.Comment, error)
	Delete(ctx context.Context, id uint) error
	CountBySessionSince(ctx context.Context, sessionID uint, since time.Time) (int64, error)
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).First(&comment, id).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *commentRepository) List(ctx context.Context, opts CommentListOptions) ([]*models.Comment, error) {
	q := r.db.WithContext(ctx).Model(&models.Comment{})
	if opts.ConfessionID != nil {
		q = q.Where("confession_id = ?", *opts.ConfessionID)
	}
	if opts.SessionID != nil {
		q = q.Where("session_id = ?", *opts.SessionID)
	}

	var comments []*models.Comment
	err := q.Order("id DESC").Limit(opts.Limit).Offset(opts.Offset).Find(&comments).Error
	return comments, err
}

// Delete removes a comment together with its reactions.
func (r *commentRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return CascadeDeleteComment(tx, id)
	})
}

// CascadeDeleteComment removes a comment and its reactions inside the
// caller's transaction, nulling report references so reports outlive their
// target.
func CascadeDeleteComment(tx *gorm.DB, id uint) error {
	if err := tx.Where("comment_id = ?", id).Delete(&models.Reaction{}).Error; err != nil {
		return err
	}
	if err := tx.Model(&models.Report{}).
		Where("comment_id = ?", id).
		Update("comment_id", nil).Error; err != nil {
		return err
	}
	return tx.Delete(&models.Comment{}, id).Error
}

func (r *commentRepository) CountBySessionSince(ctx context.Context, sessionID uint, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Comment{}).
		Where("session_id = ? AND created_at >= ?", sessionID, since).
		Count(&count).Error
	return count, err
}
