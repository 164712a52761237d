package models

import "time"

// Report is a community flag against exactly one of a confession or a
// comment. The target references are SET NULL so the report survives as a
// historical record once the vote threshold removes its target. The reporting
// session is stored for duplicate detection but exposed to admins only.
type Report struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	SessionID    *uint       `gorm:"index" json:"session,omitempty"`
	Session      *Session    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"-"`
	ConfessionID *uint       `gorm:"index" json:"confession"`
	Confession   *Confession `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"-"`
	CommentID    *uint       `gorm:"index" json:"comment"`
	Comment      *Comment    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"-"`
	Reason       string      `gorm:"size:1000;not null" json:"reason"`
	Voters       []Account   `gorm:"many2many:report_voters" json:"-"`
	CreatedAt    time.Time   `json:"created"`

	// Computed at query time.
	VoteCount    int      `gorm:"-" json:"vote_count"`
	VoterHandles []string `gorm:"-" json:"voters"`
}

// VoteThreshold is the number of distinct voters that triggers removal of the
// reported target.
const VoteThreshold = 3

// Flatten fills the voter handle list from the loaded association.
func (r *Report) Flatten() {
	r.VoterHandles = make([]string, 0, len(r.Voters))
	for _, v := range r.Voters {
		r.VoterHandles = append(r.VoterHandles, v.Handle)
	}
	r.VoteCount = len(r.Voters)
}
