package models

import (
	"strings"
	"time"
)

// Category groups confessions. Names are stored capitalized.
type Category struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:255;uniqueIndex;not null" json:"name"`
}

// Capitalize normalizes a category name for storage: first rune upper, rest lower.
func Capitalize(name string) string {
	if name == "" {
		return name
	}
	return strings.ToUpper(name[:1]) + strings.ToLower(name[1:])
}

// Tag is a free-form label attached to confessions.
type Tag struct {
	ID   uint   `gorm:"primaryKey" json:"-"`
	Name string `gorm:"size:100;uniqueIndex;not null" json:"name"`
}

// Confession is the core resource. The author reference survives as NULL if
// the account is later removed by cleanup.
type Confession struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	Title      string     `gorm:"size:255;not null" json:"title"`
	Text       string     `gorm:"type:text;not null" json:"text"`
	AccountID  *uint      `gorm:"index" json:"author,omitempty"`
	Account    *Account   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"-"`
	IsApproved bool       `gorm:"not null;default:false" json:"is_approved"`
	Categories []Category `gorm:"many2many:confession_categories" json:"-"`
	Tags       []Tag      `gorm:"many2many:confession_tags" json:"-"`
	CreatedAt  time.Time  `json:"created"`

	// Computed at query time.
	CommentCount  int `gorm:"-" json:"comment_count"`
	ReactionCount int `gorm:"-" json:"reaction_count"`

	// Flattened representations for output.
	CategoryNames []string `gorm:"-" json:"categories"`
	TagNames      []string `gorm:"-" json:"tags"`
}

// Flatten fills the output-only name slices from loaded associations.
func (c *Confession) Flatten() {
	c.CategoryNames = make([]string, 0, len(c.Categories))
	for _, cat := range c.Categories {
		c.CategoryNames = append(c.CategoryNames, cat.Name)
	}
	c.TagNames = make([]string, 0, len(c.Tags))
	for _, t := range c.Tags {
		c.TagNames = append(c.TagNames, t.Name)
	}
}
