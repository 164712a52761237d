package server

import (
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"hushwall/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlocklistAdminOnly(t *testing.T) {
	t.Parallel()
	_, app, db := newTestServer(t)

	createAccount(t, db, "MODBLOCK", models.RoleModerator)
	modToken := loginAs(t, app, "MODBLOCK", "10.4.0.1")

	t.Run("guest cannot list", func(t *testing.T) {
		resp := doRequest(t, app, http.MethodGet, "/blocklist/", nil, "10.4.0.2", "")
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("moderator cannot block", func(t *testing.T) {
		resp := doRequest(t, app, http.MethodPost, "/blocklist/", fiber.Map{
			"session": "10.4.0.2",
		}, "10.4.0.1", modToken)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})
}

func TestBlockedSessionCanReadButNotWrite(t *testing.T) {
	t.Parallel()
	_, app, db := newTestServer(t)

	confession := &models.Confession{Title: "Visible", Text: strings.Repeat("x", 200), IsApproved: true}
	require.NoError(t, db.Create(confession).Error)

	// The offender makes a request first so their session exists to target.
	resp := doRequest(t, app, http.MethodGet, "/entry/", nil, "10.4.1.9", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	createAccount(t, db, "BANADMIN", models.RoleAdmin)
	adminToken := loginAs(t, app, "BANADMIN", "10.4.1.1")

	resp = doRequest(t, app, http.MethodPost, "/blocklist/", fiber.Map{
		"session": "10.4.1.9",
	}, "10.4.1.1", adminToken)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var entry models.BlocklistEntry
	decodeBody(t, resp, &entry)
	assert.Equal(t, "10.4.1.9", entry.SessionAddress)
	assert.Nil(t, entry.Expires, "no expiry means permanent")

	t.Run("reads still work", func(t *testing.T) {
		resp := doRequest(t, app, http.MethodGet, fmt.Sprintf("/entry/%d", confession.ID), nil, "10.4.1.9", "")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("writes are refused", func(t *testing.T) {
		resp := doRequest(t, app, http.MethodPost, "/comment/", fiber.Map{
			"confession": confession.ID, "text": "still here", "bot_check": "ok",
		}, "10.4.1.9", "")
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("unblock lifts the ban", func(t *testing.T) {
		resp := doRequest(t, app, http.MethodDelete, fmt.Sprintf("/blocklist/%d", entry.ID), nil, "10.4.1.1", adminToken)
		require.Equal(t, http.StatusNoContent, resp.StatusCode)

		resp = doRequest(t, app, http.MethodPost, "/comment/", fiber.Map{
			"confession": confession.ID, "text": "back again", "bot_check": "ok",
		}, "10.4.1.9", "")
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
	})
}

func TestBlockValidation(t *testing.T) {
	t.Parallel()
	_, app, db := newTestServer(t)

	createAccount(t, db, "RULEADMN", models.RoleAdmin)
	adminToken := loginAs(t, app, "RULEADMN", "10.4.2.1")
	createAccount(t, db, "INNOCENT", "")

	t.Run("cannot block yourself", func(t *testing.T) {
		resp := doRequest(t, app, http.MethodPost, "/blocklist/", fiber.Map{
			"account": "RULEADMN",
		}, "10.4.2.1", adminToken)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("expiry must be in the future", func(t *testing.T) {
		resp := doRequest(t, app, http.MethodPost, "/blocklist/", fiber.Map{
			"account": "INNOCENT",
			"expires": time.Now().Add(-time.Hour),
		}, "10.4.2.1", adminToken)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("exactly one target", func(t *testing.T) {
		resp := doRequest(t, app, http.MethodPost, "/blocklist/", fiber.Map{
			"account": "INNOCENT",
			"session": "10.4.2.1",
		}, "10.4.2.1", adminToken)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		resp = doRequest(t, app, http.MethodPost, "/blocklist/", fiber.Map{}, "10.4.2.1", adminToken)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("unknown handle", func(t *testing.T) {
		resp := doRequest(t, app, http.MethodPost, "/blocklist/", fiber.Map{
			"account": "NOBODYXX",
		}, "10.4.2.1", adminToken)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestUpdateBlockExpiry(t *testing.T) {
	t.Parallel()
	_, app, db := newTestServer(t)

	createAccount(t, db, "EXPADMIN", models.RoleAdmin)
	adminToken := loginAs(t, app, "EXPADMIN", "10.4.3.1")
	target := createAccount(t, db, "SHORTBAN", "")

	resp := doRequest(t, app, http.MethodPost, "/blocklist/", fiber.Map{
		"account": "SHORTBAN",
	}, "10.4.3.1", adminToken)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var entry models.BlocklistEntry
	decodeBody(t, resp, &entry)
	require.NotNil(t, entry.AccountID)
	assert.Equal(t, target.ID, *entry.AccountID)

	expires := time.Now().Add(48 * time.Hour).UTC()
	resp = doRequest(t, app, http.MethodPut, fmt.Sprintf("/blocklist/%d", entry.ID), fiber.Map{
		"expires": expires,
	}, "10.4.3.1", adminToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var updated models.BlocklistEntry
	decodeBody(t, resp, &updated)
	require.NotNil(t, updated.Expires)
	assert.WithinDuration(t, expires, *updated.Expires, time.Second)
}
