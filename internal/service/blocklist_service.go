package service

import (
	"context"
	"errors"
	"time"

	"hushwall/internal/authz"
	"hushwall/internal/identity"
	"hushwall/internal/models"
	"hushwall/internal/repository"

	"gorm.io/gorm"
)

type BlocklistService struct {
	blocklist repository.BlocklistRepository
	accounts  repository.AccountRepository
	sessions  repository.SessionRepository
	guard     *authz.Engine
}

func NewBlocklistService(
	blocklist repository.BlocklistRepository,
	accounts repository.AccountRepository,
	sessions repository.SessionRepository,
	guard *authz.Engine,
) *BlocklistService {
	return &BlocklistService{blocklist: blocklist, accounts: accounts, sessions: sessions, guard: guard}
}

// BlockInput targets an account by handle or a session by address, never
// both. A nil Expires is a permanent ban.
type BlockInput struct {
	Account *string    `json:"account"`
	Session *string    `json:"session"`
	Expires *time.Time `json:"expires"`
}

func (s *BlocklistService) resolveTarget(ctx context.Context, in BlockInput) (accountID, sessionID *uint, err error) {
	if (in.Account == nil) == (in.Session == nil) {
		return nil, nil, models.NewValidationError("Exactly one of account or session must be set")
	}
	if in.Account != nil {
		account, err := s.accounts.GetByHandle(ctx, *in.Account)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, nil, models.NewValidationError("No such handle")
			}
			return nil, nil, err
		}
		return &account.ID, nil, nil
	}
	session, err := s.sessions.GetByAddress(ctx, *in.Session)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, models.NewValidationError("No such session")
		}
		return nil, nil, err
	}
	return nil, &session.ID, nil
}

// Block creates a blocklist entry. Admin only; admins cannot block
// themselves, and an expiry in the past is rejected.
func (s *BlocklistService) Block(ctx context.Context, id identity.Identity, in BlockInput) (*models.BlocklistEntry, error) {
	if err := s.guard.Authorize(ctx, id, authz.ResourceBlocklist, authz.ActionCreate, authz.Object{}); err != nil {
		return nil, err
	}

	if in.Expires != nil && !in.Expires.After(time.Now()) {
		return nil, models.NewValidationError("Expiry must be in the future")
	}

	accountID, sessionID, err := s.resolveTarget(ctx, in)
	if err != nil {
		return nil, err
	}
	if accountID != nil && id.OwnsAccount(accountID) {
		return nil, models.NewPolicyError("You cannot block yourself")
	}
	if sessionID != nil && *sessionID == id.SessionID() {
		return nil, models.NewPolicyError("You cannot block yourself")
	}

	entry := &models.BlocklistEntry{
		AccountID: accountID,
		SessionID: sessionID,
		Expires:   in.Expires,
	}
	if err := s.blocklist.Create(ctx, entry); err != nil {
		return nil, err
	}
	return s.Get(ctx, id, entry.ID)
}

// List returns blocklist entries for the admin view.
func (s *BlocklistService) List(ctx context.Context, id identity.Identity, opts repository.BlocklistListOptions) ([]*models.BlocklistEntry, error) {
	if err := s.guard.Authorize(ctx, id, authz.ResourceBlocklist, authz.ActionRead, authz.Object{}); err != nil {
		return nil, err
	}
	entries, err := s.blocklist.List(ctx, opts)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		flattenBlock(e)
	}
	return entries, nil
}

func (s *BlocklistService) Get(ctx context.Context, id identity.Identity, entryID uint) (*models.BlocklistEntry, error) {
	if err := s.guard.Authorize(ctx, id, authz.ResourceBlocklist, authz.ActionRead, authz.Object{}); err != nil {
		return nil, err
	}
	entry, err := s.blocklist.GetByID(ctx, entryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Block", entryID)
		}
		return nil, err
	}
	flattenBlock(entry)
	return entry, nil
}

// Update changes the expiry of an existing entry.
func (s *BlocklistService) Update(ctx context.Context, id identity.Identity, entryID uint, expires *time.Time) (*models.BlocklistEntry, error) {
	if err := s.guard.Authorize(ctx, id, authz.ResourceBlocklist, authz.ActionUpdate, authz.Object{}); err != nil {
		return nil, err
	}
	if expires != nil && !expires.After(time.Now()) {
		return nil, models.NewValidationError("Expiry must be in the future")
	}

	entry, err := s.blocklist.GetByID(ctx, entryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Block", entryID)
		}
		return nil, err
	}
	entry.Expires = expires
	if err := s.blocklist.Update(ctx, entry); err != nil {
		return nil, err
	}
	flattenBlock(entry)
	return entry, nil
}

// Unblock removes an entry, lifting the ban immediately.
func (s *BlocklistService) Unblock(ctx context.Context, id identity.Identity, entryID uint) error {
	if err := s.guard.Authorize(ctx, id, authz.ResourceBlocklist, authz.ActionDelete, authz.Object{}); err != nil {
		return err
	}
	if _, err := s.blocklist.GetByID(ctx, entryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Block", entryID)
		}
		return err
	}
	return s.blocklist.Delete(ctx, entryID)
}

func flattenBlock(e *models.BlocklistEntry) {
	if e.Session != nil {
		e.SessionAddress = e.Session.IPAddress
	}
}
