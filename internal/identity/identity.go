// Package identity resolves who is making a request: the address-keyed
// anonymous session, and optionally a durable account.
package identity

import "hushwall/internal/models"

// Role is the closed set of caller roles.
type Role uint8

const (
	RoleGuest Role = iota
	RoleMember
	RoleModerator
	RoleAdmin
)

// String implements fmt.Stringer for logging.
func (r Role) String() string {
	switch r {
	case RoleMember:
		return "member"
	case RoleModerator:
		return "moderator"
	case RoleAdmin:
		return "admin"
	default:
		return "guest"
	}
}

// Identity is the resolved caller, passed explicitly into every core
// operation. Session is always present; Account is nil for guests.
type Identity struct {
	Session *models.Session
	Account *models.Account
}

// Role maps the account's stored role string onto the closed enum.
func (id Identity) Role() Role {
	if id.Account == nil {
		return RoleGuest
	}
	switch id.Account.Role {
	case models.RoleAdmin:
		return RoleAdmin
	case models.RoleModerator:
		return RoleModerator
	default:
		return RoleMember
	}
}

// Authenticated reports whether the caller acts under an account.
func (id Identity) Authenticated() bool { return id.Account != nil }

// AccountID returns the acting account id, or nil for guests.
func (id Identity) AccountID() *uint {
	if id.Account == nil {
		return nil
	}
	return &id.Account.ID
}

// SessionID returns the resolved session id.
func (id Identity) SessionID() uint {
	if id.Session == nil {
		return 0
	}
	return id.Session.ID
}

// OwnsSession reports whether the caller's session owns the given sender
// reference (comments, reactions).
func (id Identity) OwnsSession(sessionID *uint) bool {
	return sessionID != nil && id.Session != nil && *sessionID == id.Session.ID
}

// OwnsAccount reports whether the caller's account owns the given author
// reference (confessions).
func (id Identity) OwnsAccount(accountID *uint) bool {
	return accountID != nil && id.Account != nil && *accountID == id.Account.ID
}
