package repository

import (
	"context"
	"time"

	"hushwall/internal/models"

	"gorm.io/gorm"
)

// BlocklistListOptions narrow and order the admin blocklist listing.
type BlocklistListOptions struct {
	SessionAddress string // filter by the banned session's address
	OrderBy        string // "id", "-id", "expires", "-expires"
	Limit          int
	Offset         int
}

// BlocklistRepository defines interface for blocklist operations
type BlocklistRepository interface {
	Create(ctx context.Context, entry *models.BlocklistEntry) error
	GetByID(ctx context.Context, id uint) (*models.BlocklistEntry, error)
	List(ctx context.Context, opts BlocklistListOptions) ([]*models.BlocklistEntry, error)
	Update(ctx context.Context, entry *models.BlocklistEntry) error
	Delete(ctx context.Context, id uint) error
	ActiveExists(ctx context.Context, sessionID uint, accountID *uint, now time.Time) (bool, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type blocklistRepository struct {
	db *gorm.DB
}

// NewBlocklistRepository creates a new BlocklistRepository
func NewBlocklistRepository(db *gorm.DB) BlocklistRepository {
	return &blocklistRepository{db: db}
}

func (r *blocklistRepository) Create(ctx context.Context, entry *models.BlocklistEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *blocklistRepository) GetByID(ctx context.Context, id uint) (*models.BlocklistEntry, error) {
	var entry models.BlocklistEntry
	if err := r.db.WithContext(ctx).Preload("Session").First(&entry, id).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *blocklistRepository) List(ctx context.Context, opts BlocklistListOptions) ([]*models.BlocklistEntry, error) {
	q := r.db.WithContext(ctx).Model(&models.BlocklistEntry{}).Preload("Session")

	if opts.SessionAddress != "" {
		q = q.Where("session_id IN (?)", r.db.Model(&models.Session{}).
			Select("id").Where("ip_address = ?", opts.SessionAddress))
	}

	switch opts.OrderBy {
	case "id":
		q = q.Order("id ASC")
	case "expires":
		q = q.Order("expires ASC")
	case "-expires":
		q = q.Order("expires DESC")
	default:
		q = q.Order("id DESC")
	}

	var entries []*models.BlocklistEntry
	err := q.Limit(opts.Limit).Offset(opts.Offset).Find(&entries).Error
	return entries, err
}

func (r *blocklistRepository) Update(ctx context.Context, entry *models.BlocklistEntry) error {
	return r.db.WithContext(ctx).Save(entry).Error
}

func (r *blocklistRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.BlocklistEntry{}, id).Error
}

// ActiveExists reports whether an unexpired entry targets the session or the
// account.
func (r *blocklistRepository) ActiveExists(ctx context.Context, sessionID uint, accountID *uint, now time.Time) (bool, error) {
	q := r.db.WithContext(ctx).Model(&models.BlocklistEntry{}).
		Where("expires IS NULL OR expires > ?", now)

	if accountID != nil {
		q = q.Where("session_id = ? OR account_id = ?", sessionID, *accountID)
	} else {
		q = q.Where("session_id = ?", sessionID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *blocklistRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("expires IS NOT NULL AND expires <= ?", now).
		Delete(&models.BlocklistEntry{})
	return res.RowsAffected, res.Error
}
