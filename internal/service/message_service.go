package service

import (
	"context"
	"errors"

	"hushwall/internal/authz"
	"hushwall/internal/identity"
	"hushwall/internal/models"
	"hushwall/internal/repository"
	"hushwall/internal/validation"

	"gorm.io/gorm"
)

type MessageService struct {
	messages repository.MessageRepository
	accounts repository.AccountRepository
	guard    *authz.Engine
}

func NewMessageService(
	messages repository.MessageRepository,
	accounts repository.AccountRepository,
	guard *authz.Engine,
) *MessageService {
	return &MessageService{messages: messages, accounts: accounts, guard: guard}
}

// SendMessageInput addresses the receiver by handle; the sender is always
// the caller.
type SendMessageInput struct {
	Receiver string `json:"receiver"`
	Text     string `json:"text"`
}

// Send delivers a private message from the caller to another account.
func (s *MessageService) Send(ctx context.Context, id identity.Identity, in SendMessageInput) (*models.Message, error) {
	if err := s.guard.Authorize(ctx, id, authz.ResourceMessage, authz.ActionCreate, authz.Object{Owned: true}); err != nil {
		return nil, err
	}

	fields := validation.Errors{}
	fields.CheckLength("text", in.Text, validation.MessageMinLen, validation.MessageMaxLen)
	fields.CheckRequired("receiver", in.Receiver)
	if !fields.Empty() {
		return nil, models.NewFieldValidationError(fields)
	}

	receiver, err := s.accounts.GetByHandle(ctx, in.Receiver)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewValidationError("No such handle")
		}
		return nil, err
	}
	if receiver.ID == *id.AccountID() {
		return nil, models.NewPolicyError("You cannot message yourself")
	}

	message := &models.Message{
		SenderID:   *id.AccountID(),
		ReceiverID: receiver.ID,
		Text:       in.Text,
	}
	if err := s.messages.Create(ctx, message); err != nil {
		return nil, err
	}
	message.Receiver = receiver
	return message, nil
}

// Conversations lists the caller's correspondents with message counts,
// busiest first.
func (s *MessageService) Conversations(ctx context.Context, id identity.Identity) ([]models.Conversation, error) {
	if err := s.guard.Authorize(ctx, id, authz.ResourceMessage, authz.ActionRead, authz.Object{Owned: true}); err != nil {
		return nil, err
	}
	return s.messages.Conversations(ctx, *id.AccountID())
}

// Thread returns the caller's history with one correspondent, newest first.
func (s *MessageService) Thread(ctx context.Context, id identity.Identity, handle string, limit, offset int) ([]*models.Message, error) {
	if err := s.guard.Authorize(ctx, id, authz.ResourceMessage, authz.ActionRead, authz.Object{Owned: true}); err != nil {
		return nil, err
	}
	if _, err := s.accounts.GetByHandle(ctx, handle); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Account", handle)
		}
		return nil, err
	}
	return s.messages.Thread(ctx, *id.AccountID(), handle, limit, offset)
}
