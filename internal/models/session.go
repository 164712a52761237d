package models

import "time"

// Session is the anonymous identity for a network address. A row is
// fetched-or-created per inbound address; the address is deliberately not
// unique-indexed because concurrent first requests may race and create
// duplicates, which the resolver tolerates (last write wins).
type Session struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	IPAddress string    `gorm:"size:45;index;not null" json:"ip_address"`
	AccountID *uint     `gorm:"index" json:"account,omitempty"`
	Account   *Account  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time `json:"created"`
}
