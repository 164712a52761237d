package identity

import (
	"context"
	"errors"

	"hushwall/internal/models"

	"gorm.io/gorm"
)

// SessionStore is the slice of the session repository the resolver needs.
type SessionStore interface {
	GetByAddress(ctx context.Context, ip string) (*models.Session, error)
	Create(ctx context.Context, session *models.Session) error
	SetAccount(ctx context.Context, sessionID uint, accountID *uint) error
}

// AccountStore is the slice of the account repository the resolver needs.
type AccountStore interface {
	GetByID(ctx context.Context, id uint) (*models.Account, error)
}

// Resolver maps an inbound request to a Session and, when possible, an
// Account.
type Resolver struct {
	sessions SessionStore
	accounts AccountStore
}

// NewResolver creates a Resolver over the given stores.
func NewResolver(sessions SessionStore, accounts AccountStore) *Resolver {
	return &Resolver{sessions: sessions, accounts: accounts}
}

// Resolve fetches or creates the session for the address and attaches the
// acting account. tokenAccountID is the account authenticated by the bearer
// token, nil for anonymous requests.
//
// Concurrent first requests from one address may race the create; that is
// tolerated (both rows persist, the later lookup wins). When no token is
// present the session's linked account acts as the effective account, which
// is what lets a first-time anonymous poster come back and edit from the same
// address. Address-keyed identity is spoofable; the contract is kept
// deliberately.
func (r *Resolver) Resolve(ctx context.Context, ip string, tokenAccountID *uint) (Identity, error) {
	session, err := r.sessions.GetByAddress(ctx, ip)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		session = &models.Session{IPAddress: ip}
		if createErr := r.sessions.Create(ctx, session); createErr != nil {
			// Lost the create race or transient failure: one more lookup
			// before giving up.
			session, err = r.sessions.GetByAddress(ctx, ip)
			if err != nil {
				return Identity{}, err
			}
		}
	} else if err != nil {
		return Identity{}, err
	}

	id := Identity{Session: session}

	switch {
	case tokenAccountID != nil:
		account, err := r.accounts.GetByID(ctx, *tokenAccountID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Token outlived the account (cleanup); downgrade to guest.
			break
		} else if err != nil {
			return Identity{}, err
		}
		id.Account = account
		if session.AccountID == nil || *session.AccountID != account.ID {
			if err := r.sessions.SetAccount(ctx, session.ID, &account.ID); err != nil {
				return Identity{}, err
			}
			session.AccountID = &account.ID
		}
	case session.AccountID != nil:
		account, err := r.accounts.GetByID(ctx, *session.AccountID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			break
		} else if err != nil {
			return Identity{}, err
		}
		id.Account = account
	}

	return id, nil
}
