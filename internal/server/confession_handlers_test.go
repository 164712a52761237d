package server

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"hushwall/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func confessionBody(title string) fiber.Map {
	return fiber.Map{
		"title":     title,
		"text":      strings.Repeat("a", 200),
		"bot_check": "ok",
	}
}

func TestCreateConfessionAnonymous(t *testing.T) {
	t.Parallel()
	_, app, db := newTestServer(t)

	resp := doRequest(t, app, http.MethodPost, "/entry/", confessionBody("My first confession"), "10.0.0.1", "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var out struct {
		Confession models.Confession `json:"confession"`
		Account    struct {
			Handle   string `json:"handle"`
			Password string `json:"password"`
		} `json:"account"`
	}
	decodeBody(t, resp, &out)

	// A first-time anonymous poster gets generated credentials, exactly once.
	assert.NotZero(t, out.Confession.ID)
	assert.Len(t, out.Account.Handle, 8)
	assert.NotEmpty(t, out.Account.Password)
	assert.False(t, out.Confession.IsApproved)

	var session models.Session
	require.NoError(t, db.Where("ip_address = ?", "10.0.0.1").First(&session).Error)
	require.NotNil(t, session.AccountID)

	// The session is now bound to the provisioned account, so the next
	// confession within the day trips the throttle.
	resp = doRequest(t, app, http.MethodPost, "/entry/", confessionBody("Another one"), "10.0.0.1", "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestCreateConfessionValidation(t *testing.T) {
	t.Parallel()
	_, app, _ := newTestServer(t)

	t.Run("body one rune short of the minimum", func(t *testing.T) {
		resp := doRequest(t, app, http.MethodPost, "/entry/", fiber.Map{
			"title":     "Short body",
			"text":      strings.Repeat("a", 199),
			"bot_check": "ok",
		}, "10.0.1.1", "")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("body exactly at the minimum", func(t *testing.T) {
		resp := doRequest(t, app, http.MethodPost, "/entry/", confessionBody("Long enough"), "10.0.1.2", "")
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
	})

	t.Run("missing bot check", func(t *testing.T) {
		resp := doRequest(t, app, http.MethodPost, "/entry/", fiber.Map{
			"title": "No bot check",
			"text":  strings.Repeat("a", 200),
		}, "10.0.1.3", "")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestGetConfessionVisibility(t *testing.T) {
	t.Parallel()
	_, app, db := newTestServer(t)

	author := createAccount(t, db, "AUTHORAA", "")
	authorToken := loginAs(t, app, "AUTHORAA", "10.0.2.1")

	unapproved := &models.Confession{Title: "Hidden", Text: strings.Repeat("x", 200), AccountID: &author.ID}
	require.NoError(t, db.Create(unapproved).Error)
	approved := &models.Confession{Title: "Public", Text: strings.Repeat("x", 200), AccountID: &author.ID, IsApproved: true}
	require.NoError(t, db.Create(approved).Error)

	path := fmt.Sprintf("/entry/%d", unapproved.ID)

	t.Run("stranger gets 404", func(t *testing.T) {
		resp := doRequest(t, app, http.MethodGet, path, nil, "10.0.2.2", "")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("author sees own unapproved", func(t *testing.T) {
		resp := doRequest(t, app, http.MethodGet, path, nil, "10.0.2.1", authorToken)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("moderator sees everything", func(t *testing.T) {
		createAccount(t, db, "MODERATE", models.RoleModerator)
		modToken := loginAs(t, app, "MODERATE", "10.0.2.3")
		resp := doRequest(t, app, http.MethodGet, path, nil, "10.0.2.3", modToken)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("list filters unapproved for strangers", func(t *testing.T) {
		resp := doRequest(t, app, http.MethodGet, "/entry/", nil, "10.0.2.4", "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var list []models.Confession
		decodeBody(t, resp, &list)
		require.Len(t, list, 1)
		assert.Equal(t, approved.ID, list[0].ID)
		// The author reference never leaks to non-admins.
		assert.Nil(t, list[0].AccountID)
	})
}

func TestUpdateConfessionShaping(t *testing.T) {
	t.Parallel()
	_, app, db := newTestServer(t)

	author := createAccount(t, db, "WRITERAA", "")
	authorToken := loginAs(t, app, "WRITERAA", "10.0.3.1")

	confession := &models.Confession{Title: "Draft", Text: strings.Repeat("x", 200), AccountID: &author.ID}
	require.NoError(t, db.Create(confession).Error)
	path := fmt.Sprintf("/entry/%d", confession.ID)

	t.Run("author field writes are silently dropped", func(t *testing.T) {
		resp := doRequest(t, app, http.MethodPatch, path, fiber.Map{
			"title":       "Renamed",
			"is_approved": true,
		}, "10.0.3.1", authorToken)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var out models.Confession
		decodeBody(t, resp, &out)
		assert.Equal(t, "Renamed", out.Title)
		assert.False(t, out.IsApproved, "is_approved must not be writable by the author")
	})

	t.Run("stranger cannot update", func(t *testing.T) {
		createAccount(t, db, "STRANGER", "")
		strangerToken := loginAs(t, app, "STRANGER", "10.0.3.2")
		resp := doRequest(t, app, http.MethodPatch, path, fiber.Map{"title": "Hijack"}, "10.0.3.2", strangerToken)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("moderator approves", func(t *testing.T) {
		createAccount(t, db, "REVIEWER", models.RoleModerator)
		modToken := loginAs(t, app, "REVIEWER", "10.0.3.3")
		resp := doRequest(t, app, http.MethodPatch, path, fiber.Map{"is_approved": true}, "10.0.3.3", modToken)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var out models.Confession
		decodeBody(t, resp, &out)
		assert.True(t, out.IsApproved)
	})

	t.Run("author cannot edit once approved", func(t *testing.T) {
		resp := doRequest(t, app, http.MethodPatch, path, fiber.Map{"title": "Too late"}, "10.0.3.1", authorToken)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})
}
