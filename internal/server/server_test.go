package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"hushwall/internal/authz"
	"hushwall/internal/config"
	"hushwall/internal/database"
	"hushwall/internal/featureflags"
	"hushwall/internal/identity"
	"hushwall/internal/middleware"
	"hushwall/internal/models"
	"hushwall/internal/policy"
	"hushwall/internal/repository"
	"hushwall/internal/service"
	"hushwall/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// newTestServer wires a full server over an in-memory database. The Fiber app
// honors X-Forwarded-For so tests can act as distinct clients.
func newTestServer(t *testing.T) (*Server, *fiber.App, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	cfg := &config.Config{
		JWTSecret: "0123456789abcdef0123456789abcdef",
		Port:      "0",
		Env:       "test",
	}

	accountRepo := repository.NewAccountRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	blocklistRepo := repository.NewBlocklistRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	confessionRepo := repository.NewConfessionRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	reactionRepo := repository.NewReactionRepository(db)
	reportRepo := repository.NewReportRepository(db)
	messageRepo := repository.NewMessageRepository(db)

	guard := authz.NewEngine(blocklistRepo)
	limits := policy.NewRateLimiter(repository.NewCountStore(db))

	s := &Server{
		config:       cfg,
		db:           db,
		featureFlags: featureflags.NewManager(""),
		resolver:     identity.NewResolver(sessionRepo, accountRepo),
		botChecker:   validation.PresenceBotChecker{},
	}
	s.accounts = service.NewAccountService(accountRepo, sessionRepo, guard)
	s.categories = service.NewCategoryService(categoryRepo, guard)
	s.confessions = service.NewConfessionService(confessionRepo, categoryRepo, guard, limits, s.accounts)
	s.comments = service.NewCommentService(commentRepo, confessionRepo, guard, limits)
	s.reactions = service.NewReactionService(reactionRepo, confessionRepo, commentRepo, guard, limits)
	s.reports = service.NewReportService(reportRepo, confessionRepo, commentRepo, guard)
	s.messages = service.NewMessageService(messageRepo, accountRepo, guard)
	s.blocklist = service.NewBlocklistService(blocklistRepo, accountRepo, sessionRepo, guard)

	middleware.InitMiddleware(cfg)

	app := fiber.New(fiber.Config{ProxyHeader: fiber.HeaderXForwardedFor})
	app.Use(middleware.AuthOptional)
	app.Use(s.WithIdentity())
	s.SetupRoutes(app)

	return s, app, db
}

// doRequest performs a request as the given client address, optionally with a
// bearer token.
func doRequest(t *testing.T, app *fiber.App, method, path string, body any, ip, token string) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if ip != "" {
		req.Header.Set("X-Forwarded-For", ip)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

// createAccount persists an account with a known plaintext password and
// returns it.
func createAccount(t *testing.T, db *gorm.DB, handle, role string) *models.Account {
	t.Helper()
	account := &models.Account{Handle: handle, Password: "generated-pw", Role: role}
	require.NoError(t, db.Create(account).Error)
	return account
}

// loginAs authenticates the given handle from the given address and returns
// the bearer token.
func loginAs(t *testing.T, app *fiber.App, handle, ip string) string {
	t.Helper()
	resp := doRequest(t, app, http.MethodPost, "/user/me", fiber.Map{
		"handle":   handle,
		"password": "generated-pw",
	}, ip, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Token string `json:"token"`
	}
	decodeBody(t, resp, &out)
	require.NotEmpty(t, out.Token)
	return out.Token
}
