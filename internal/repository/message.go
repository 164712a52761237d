package repository

import (
	"context"

	"hushwall/internal/models"

	"gorm.io/gorm"
)

// MessageRepository defines interface for message operations
type MessageRepository interface {
	Create(ctx context.Context, message *models.Message) error
	// Conversations groups the account's message history into one row per
	// correspondent with a running count.
	Conversations(ctx context.Context, accountID uint) ([]models.Conversation, error)
	// Thread returns the two-way history between the account and the
	// correspondent identified by handle, newest first.
	Thread(ctx context.Context, accountID uint, handle string, limit, offset int) ([]*models.Message, error)
}

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new MessageRepository
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, message *models.Message) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *messageRepository) Conversations(ctx context.Context, accountID uint) ([]models.Conversation, error) {
	var conversations []models.Conversation
	err := r.db.WithContext(ctx).
		Table("messages").
		Select("accounts.handle AS handle, COUNT(*) AS count").
		Joins("JOIN accounts ON accounts.id = CASE WHEN messages.sender_id = ? THEN messages.receiver_id ELSE messages.sender_id END", accountID).
		Where("messages.sender_id = ? OR messages.receiver_id = ?", accountID, accountID).
		Group("accounts.handle").
		Order("count DESC").
		Scan(&conversations).Error
	return conversations, err
}

func (r *messageRepository) Thread(ctx context.Context, accountID uint, handle string, limit, offset int) ([]*models.Message, error) {
	correspondent := r.db.Model(&models.Account{}).Select("id").Where("handle = ?", handle)

	var messages []*models.Message
	err := r.db.WithContext(ctx).
		Preload("Sender").
		Preload("Receiver").
		Where("(sender_id = ? AND receiver_id IN (?)) OR (receiver_id = ? AND sender_id IN (?))",
			accountID, correspondent, accountID, correspondent).
		Order("id DESC").
		Limit(limit).Offset(offset).
		Find(&messages).Error
	return messages, err
}
