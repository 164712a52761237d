// Package shape implements field-level visibility: explicit projections that
// remove or force fields on representations depending on the caller. This is
// independent of the coarse permission pass/fail in authz: an allowed
// operation can still have fields silently dropped or overridden.
package shape

import (
	"hushwall/internal/identity"
	"hushwall/internal/models"
)

// Confession prepares a confession for output. The author reference is
// visible to admins only.
func Confession(c *models.Confession, role identity.Role) *models.Confession {
	c.Flatten()
	if role != identity.RoleAdmin {
		c.AccountID = nil
	}
	return c
}

// Confessions shapes a slice in place.
func Confessions(list []*models.Confession, role identity.Role) []*models.Confession {
	for _, c := range list {
		Confession(c, role)
	}
	return list
}

// ConfessionPatch is the writable surface of a confession update. Pointer
// fields distinguish "absent" from "zero".
type ConfessionPatch struct {
	Title      *string  `json:"title"`
	Text       *string  `json:"text"`
	IsApproved *bool    `json:"is_approved"`
	Categories []uint   `json:"categories"`
	Tags       []string `json:"tags"`
}

// ShapeConfessionPatch drops fields the caller may not write, mirroring the
// write-side rules: title/text only for the original author or an admin;
// is_approved only for staff reviewing someone else's confession. The patch
// never carries an author; the server owns that field.
func ShapeConfessionPatch(p *ConfessionPatch, role identity.Role, isAuthor bool) {
	if !isAuthor && role != identity.RoleAdmin {
		p.Title = nil
		p.Text = nil
	}
	if isAuthor || (role != identity.RoleAdmin && role != identity.RoleModerator) {
		p.IsApproved = nil
	}
}

// Comment hides the owning session from everyone but admins.
func Comment(c *models.Comment, role identity.Role) *models.Comment {
	if role != identity.RoleAdmin {
		c.SessionID = nil
	}
	return c
}

// Comments shapes a slice in place.
func Comments(list []*models.Comment, role identity.Role) []*models.Comment {
	for _, c := range list {
		Comment(c, role)
	}
	return list
}

// Reaction hides the owning session from everyone but admins.
func Reaction(r *models.Reaction, role identity.Role) *models.Reaction {
	if role != identity.RoleAdmin {
		r.SessionID = nil
	}
	return r
}

// Reactions shapes a slice in place.
func Reactions(list []*models.Reaction, role identity.Role) []*models.Reaction {
	for _, r := range list {
		Reaction(r, role)
	}
	return list
}

// Account prepares an account representation for the given viewer: id and
// role are admin-only, and the stored password disappears once the owner set
// a custom one (it is a hash at that point, but it is also nobody's business).
func Account(a *models.Account, viewer identity.Role) *models.Account {
	out := *a
	if viewer != identity.RoleAdmin {
		out.ID = 0
		out.Role = ""
	}
	if out.PasswordCustom {
		out.Password = ""
	}
	return &out
}

// Accounts shapes a slice for output.
func Accounts(list []*models.Account, viewer identity.Role) []*models.Account {
	out := make([]*models.Account, len(list))
	for i, a := range list {
		out[i] = Account(a, viewer)
	}
	return out
}

// Report hides the reporting session from everyone but admins.
func Report(r *models.Report, role identity.Role) *models.Report {
	r.Flatten()
	if role != identity.RoleAdmin {
		r.SessionID = nil
	}
	return r
}

// Reports shapes a slice in place.
func Reports(list []*models.Report, role identity.Role) []*models.Report {
	for _, r := range list {
		Report(r, role)
	}
	return list
}

// Message resolves handles for output. The sender is exposed to admins on
// reads only; for everyone else the field is absent, matching the write side
// where the sender is always forced to the caller.
func Message(m *models.Message, role identity.Role, read bool) *models.Message {
	if m.Receiver != nil {
		m.ReceiverHandle = m.Receiver.Handle
	}
	m.SenderHandle = ""
	if role == identity.RoleAdmin && read && m.Sender != nil {
		m.SenderHandle = m.Sender.Handle
	}
	return m
}

// Messages shapes a slice in place.
func Messages(list []*models.Message, role identity.Role, read bool) []*models.Message {
	for _, m := range list {
		Message(m, role, read)
	}
	return list
}
