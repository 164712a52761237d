package models

import "time"

// Reaction is a single-emoji response to exactly one of a confession or a
// comment. The exactly-one-target rule is enforced at validation time, not in
// the schema.
type Reaction struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	SessionID    *uint       `gorm:"index" json:"sender,omitempty"`
	Session      *Session    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"-"`
	ConfessionID *uint       `gorm:"index" json:"confession,omitempty"`
	Confession   *Confession `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	CommentID    *uint       `gorm:"index" json:"comment,omitempty"`
	Comment      *Comment    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Emoji        string      `gorm:"size:8;not null" json:"emoji"`
	CreatedAt    time.Time   `json:"created"`
}

// EmojiBucket is one row of the aggregated reaction listing: a count per
// emoji, plus whether the calling session contributed (only populated for
// authenticated callers).
type EmojiBucket struct {
	Emoji    string `json:"emoji"`
	Count    int    `json:"count"`
	IsAuthor *bool  `json:"is_author,omitempty"`
}
