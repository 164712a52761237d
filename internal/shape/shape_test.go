package shape

import (
	"testing"

	"hushwall/internal/identity"
	"hushwall/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uintPtr(v uint) *uint { return &v }

func TestConfessionShaping(t *testing.T) {
	t.Run("author hidden from non-admins", func(t *testing.T) {
		c := &models.Confession{ID: 1, AccountID: uintPtr(7)}
		Confession(c, identity.RoleModerator)
		assert.Nil(t, c.AccountID)
	})

	t.Run("author visible to admins", func(t *testing.T) {
		c := &models.Confession{ID: 1, AccountID: uintPtr(7)}
		Confession(c, identity.RoleAdmin)
		require.NotNil(t, c.AccountID)
		assert.EqualValues(t, 7, *c.AccountID)
	})

	t.Run("associations flatten to names", func(t *testing.T) {
		c := &models.Confession{
			Categories: []models.Category{{Name: "Work"}},
			Tags:       []models.Tag{{Name: "late"}, {Name: "night"}},
		}
		Confession(c, identity.RoleGuest)
		assert.Equal(t, []string{"Work"}, c.CategoryNames)
		assert.Equal(t, []string{"late", "night"}, c.TagNames)
	})
}

func TestShapeConfessionPatch(t *testing.T) {
	title := "t"
	text := "x"
	approved := true

	fullPatch := func() *ConfessionPatch {
		return &ConfessionPatch{Title: &title, Text: &text, IsApproved: &approved}
	}

	t.Run("author keeps content, loses approval", func(t *testing.T) {
		p := fullPatch()
		ShapeConfessionPatch(p, identity.RoleMember, true)
		assert.NotNil(t, p.Title)
		assert.NotNil(t, p.Text)
		assert.Nil(t, p.IsApproved)
	})

	t.Run("moderator reviewing a stranger keeps approval, loses content", func(t *testing.T) {
		p := fullPatch()
		ShapeConfessionPatch(p, identity.RoleModerator, false)
		assert.Nil(t, p.Title)
		assert.Nil(t, p.Text)
		assert.NotNil(t, p.IsApproved)
	})

	t.Run("admin reviewing a stranger keeps everything", func(t *testing.T) {
		p := fullPatch()
		ShapeConfessionPatch(p, identity.RoleAdmin, false)
		assert.NotNil(t, p.Title)
		assert.NotNil(t, p.IsApproved)
	})

	t.Run("member patching a stranger keeps nothing", func(t *testing.T) {
		p := fullPatch()
		ShapeConfessionPatch(p, identity.RoleMember, false)
		assert.Nil(t, p.Title)
		assert.Nil(t, p.Text)
		assert.Nil(t, p.IsApproved)
	})
}

func TestAccountShaping(t *testing.T) {
	base := models.Account{ID: 3, Handle: "QUIETFOX", Password: "ABCD1234", Role: models.RoleModerator}

	t.Run("member view hides id and role", func(t *testing.T) {
		a := base
		out := Account(&a, identity.RoleMember)
		assert.Zero(t, out.ID)
		assert.Empty(t, out.Role)
		assert.Equal(t, "ABCD1234", out.Password)
	})

	t.Run("admin view keeps everything", func(t *testing.T) {
		a := base
		out := Account(&a, identity.RoleAdmin)
		assert.EqualValues(t, 3, out.ID)
		assert.Equal(t, models.RoleModerator, out.Role)
	})

	t.Run("custom password never rendered", func(t *testing.T) {
		a := base
		a.PasswordCustom = true
		a.Password = "$2a$10$hash"
		out := Account(&a, identity.RoleAdmin)
		assert.Empty(t, out.Password)
	})

	t.Run("source is not mutated", func(t *testing.T) {
		a := base
		Account(&a, identity.RoleMember)
		assert.EqualValues(t, 3, a.ID)
	})
}

func TestSessionOwnedShaping(t *testing.T) {
	t.Run("comment session hidden from moderators", func(t *testing.T) {
		c := &models.Comment{SessionID: uintPtr(5)}
		Comment(c, identity.RoleModerator)
		assert.Nil(t, c.SessionID)
	})

	t.Run("reaction session kept for admins", func(t *testing.T) {
		r := &models.Reaction{SessionID: uintPtr(5)}
		Reaction(r, identity.RoleAdmin)
		assert.NotNil(t, r.SessionID)
	})

	t.Run("report session hidden from moderators", func(t *testing.T) {
		r := &models.Report{SessionID: uintPtr(5), Voters: []models.Account{{Handle: "VOTERAAA"}}}
		Report(r, identity.RoleModerator)
		assert.Nil(t, r.SessionID)
		assert.Equal(t, []string{"VOTERAAA"}, r.VoterHandles)
		assert.Equal(t, 1, r.VoteCount)
	})
}

func TestMessageShaping(t *testing.T) {
	message := func() *models.Message {
		return &models.Message{
			Sender:   &models.Account{Handle: "SENDERAA"},
			Receiver: &models.Account{Handle: "RECEIVRB"},
		}
	}

	t.Run("sender absent for members", func(t *testing.T) {
		m := Message(message(), identity.RoleMember, true)
		assert.Empty(t, m.SenderHandle)
		assert.Equal(t, "RECEIVRB", m.ReceiverHandle)
	})

	t.Run("sender shown to admins on reads", func(t *testing.T) {
		m := Message(message(), identity.RoleAdmin, true)
		assert.Equal(t, "SENDERAA", m.SenderHandle)
	})

	t.Run("sender absent even for admins on writes", func(t *testing.T) {
		m := Message(message(), identity.RoleAdmin, false)
		assert.Empty(t, m.SenderHandle)
	})
}
