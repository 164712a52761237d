package models

import "time"

// BlocklistEntry ties a ban to an Account or a Session, never both. A nil
// Expires is a permanent ban. Entries are consulted, never mutated; expired
// ones are removed by the cleanup job.
type BlocklistEntry struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	AccountID *uint      `gorm:"uniqueIndex:blocklist_unique,priority:1" json:"account,omitempty"`
	Account   *Account   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	SessionID *uint      `gorm:"uniqueIndex:blocklist_unique,priority:2" json:"-"`
	Session   *Session   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Expires   *time.Time `gorm:"uniqueIndex:blocklist_unique,priority:3" json:"expires"`
	CreatedAt time.Time  `json:"created"`

	// SessionAddress is accepted and rendered in place of the raw session id
	// on the admin API.
	SessionAddress string `gorm:"-" json:"session,omitempty"`
}

// Active reports whether the ban is currently in force.
func (b *BlocklistEntry) Active(now time.Time) bool {
	return b.Expires == nil || b.Expires.After(now)
}
