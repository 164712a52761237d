package models

import "time"

// Message is a direct message between two accounts. Sender and receiver are
// rendered by handle on the API.
type Message struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	SenderID   uint      `gorm:"not null;index" json:"-"`
	Sender     *Account  `gorm:"foreignKey:SenderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	ReceiverID uint      `gorm:"not null;index" json:"-"`
	Receiver   *Account  `gorm:"foreignKey:ReceiverID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Text       string    `gorm:"size:1000;not null" json:"text"`
	CreatedAt  time.Time `json:"sent"`

	SenderHandle   string `gorm:"-" json:"sender,omitempty"`
	ReceiverHandle string `gorm:"-" json:"receiver"`
}

// Conversation is one row of the grouped message listing: the other party's
// handle and the running message count, resolved relative to the caller.
type Conversation struct {
	Handle string `json:"handle"`
	Count  int    `json:"count"`
}
