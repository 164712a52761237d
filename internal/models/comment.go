package models

import "time"

// Comment belongs to a confession and is owned by the submitting session.
// Deleting the confession cascades here.
type Comment struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	SessionID    *uint       `gorm:"index" json:"sender,omitempty"`
	Session      *Session    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"-"`
	ConfessionID uint        `gorm:"not null;index" json:"confession"`
	Confession   *Confession `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Text         string      `gorm:"size:255;not null" json:"text"`
	CreatedAt    time.Time   `json:"created"`
}
