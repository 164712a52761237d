// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"time"

	"hushwall/internal/models"

	"gorm.io/gorm"
)

// AccountRepository defines interface for account operations
type AccountRepository interface {
	Create(ctx context.Context, account *models.Account) error
	GetByID(ctx context.Context, id uint) (*models.Account, error)
	GetByHandle(ctx context.Context, handle string) (*models.Account, error)
	List(ctx context.Context, role string, oldestFirst bool, limit, offset int) ([]*models.Account, error)
	Update(ctx context.Context, account *models.Account) error
	TouchLastLogin(ctx context.Context, id uint, at time.Time) error
	DeleteInactiveGenerated(ctx context.Context, inactiveSince time.Time) (int64, error)
}

type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository creates a new AccountRepository
func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) Create(ctx context.Context, account *models.Account) error {
	return r.db.WithContext(ctx).Create(account).Error
}

func (r *accountRepository) GetByID(ctx context.Context, id uint) (*models.Account, error) {
	var account models.Account
	if err := r.db.WithContext(ctx).First(&account, id).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *accountRepository) GetByHandle(ctx context.Context, handle string) (*models.Account, error) {
	var account models.Account
	if err := r.db.WithContext(ctx).Where("handle = ?", handle).First(&account).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *accountRepository) List(ctx context.Context, role string, oldestFirst bool, limit, offset int) ([]*models.Account, error) {
	q := r.db.WithContext(ctx).Model(&models.Account{})
	if role != "" {
		q = q.Where("role = ?", role)
	}
	order := "created_at DESC"
	if oldestFirst {
		order = "created_at ASC"
	}

	var accounts []*models.Account
	err := q.Order(order).Limit(limit).Offset(offset).Find(&accounts).Error
	return accounts, err
}

func (r *accountRepository) Update(ctx context.Context, account *models.Account) error {
	return r.db.WithContext(ctx).Save(account).Error
}

func (r *accountRepository) TouchLastLogin(ctx context.Context, id uint, at time.Time) error {
	return r.db.WithContext(ctx).Model(&models.Account{}).
		Where("id = ?", id).
		Update("last_login", at).Error
}

// DeleteInactiveGenerated removes accounts whose password was never
// customized and whose last login predates the threshold, unless a blocklist
// entry still references them.
func (r *accountRepository) DeleteInactiveGenerated(ctx context.Context, inactiveSince time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("password_custom = ?", false).
		Where("last_login IS NOT NULL AND last_login <= ?", inactiveSince).
		Where("id NOT IN (?)", r.db.Model(&models.BlocklistEntry{}).
			Select("account_id").Where("account_id IS NOT NULL")).
		Delete(&models.Account{})
	return res.RowsAffected, res.Error
}
