package repository

import (
	"context"
	"time"

	"hushwall/internal/models"

	"gorm.io/gorm"
)

// SessionRepository defines interface for session operations
type SessionRepository interface {
	GetByAddress(ctx context.Context, ip string) (*models.Session, error)
	GetByID(ctx context.Context, id uint) (*models.Session, error)
	Create(ctx context.Context, session *models.Session) error
	SetAccount(ctx context.Context, sessionID uint, accountID *uint) error
	DeleteStale(ctx context.Context, createdBefore time.Time) (int64, error)
}

type sessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository creates a new SessionRepository
func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

// GetByAddress returns the newest session row for the address. The address
// is not unique across time, and concurrent creates may leave duplicates;
// picking the newest row is the "last write wins" contract.
func (r *sessionRepository) GetByAddress(ctx context.Context, ip string) (*models.Session, error) {
	var session models.Session
	if err := r.db.WithContext(ctx).
		Where("ip_address = ?", ip).
		Order("id DESC").
		First(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepository) GetByID(ctx context.Context, id uint) (*models.Session, error) {
	var session models.Session
	if err := r.db.WithContext(ctx).First(&session, id).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepository) Create(ctx context.Context, session *models.Session) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *sessionRepository) SetAccount(ctx context.Context, sessionID uint, accountID *uint) error {
	return r.db.WithContext(ctx).Model(&models.Session{}).
		Where("id = ?", sessionID).
		Update("account_id", accountID).Error
}

// DeleteStale removes sessions past the age threshold unless a blocklist
// entry still references them.
func (r *sessionRepository) DeleteStale(ctx context.Context, createdBefore time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("created_at <= ?", createdBefore).
		Where("id NOT IN (?)", r.db.Model(&models.BlocklistEntry{}).
			Select("session_id").Where("session_id IS NOT NULL")).
		Delete(&models.Session{})
	return res.RowsAffected, res.Error
}
