// Package server contains the HTTP handlers and route assembly for the API.
package server

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	_ "hushwall/docs" // swagger docs
	"hushwall/internal/authz"
	"hushwall/internal/cache"
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

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers.
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	featureFlags   *featureflags.Manager
	resolver       *identity.Resolver
	botChecker     validation.BotChecker

	categories  *service.CategoryService
	confessions *service.ConfessionService
	comments    *service.CommentService
	reactions   *service.ReactionService
	reports     *service.ReportService
	accounts    *service.AccountService
	messages    *service.MessageService
	blocklist   *service.BlocklistService
}

// NewServer creates a new server instance with all dependencies.
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)

	return NewServerWithDeps(cfg, db, cache.GetClient())
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis and
// optionally performs explicit seeding.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
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

	prom := middleware.InitMetrics("hushwall-api")

	flags := featureflags.NewManager(cfg.FeatureFlags)

	// Remote captcha verification needs a secret and can be switched off per
	// environment; everything else falls back to presence-only.
	var checker validation.BotChecker = validation.PresenceBotChecker{}
	if cfg.CaptchaSecret != "" && flags.Raw()["captcha"] != "off" {
		checker = validation.NewRemoteBotChecker(cfg.CaptchaSecret)
	}

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: prom,
		featureFlags:   flags,
		resolver:       identity.NewResolver(sessionRepo, accountRepo),
		botChecker:     checker,
	}

	server.accounts = service.NewAccountService(accountRepo, sessionRepo, guard)
	server.categories = service.NewCategoryService(categoryRepo, guard)
	server.confessions = service.NewConfessionService(confessionRepo, categoryRepo, guard, limits, server.accounts)
	server.comments = service.NewCommentService(commentRepo, confessionRepo, guard, limits)
	server.reactions = service.NewReactionService(reactionRepo, confessionRepo, commentRepo, guard, limits)
	server.reports = service.NewReportService(reportRepo, confessionRepo, commentRepo, guard)
	server.messages = service.NewMessageService(messageRepo, accountRepo, guard)
	server.blocklist = service.NewBlocklistService(blocklistRepo, accountRepo, sessionRepo, guard)

	middleware.InitMiddleware(cfg)

	return server, nil
}

// SetupMiddleware configures middleware for the Fiber app.
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Bearer token validation runs app-wide; most routes also work anonymously.
	app.Use(middleware.AuthOptional)

	// Context middleware to propagate request ID and account ID; must run
	// after AuthOptional so the account is known.
	app.Use(middleware.ContextMiddleware())

	// Prometheus metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	// Structured logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// Distributed tracing
	app.Use(middleware.TracingMiddleware())

	// CORS middleware should run before middlewares that can short-circuit
	// (e.g. limiter) so browser clients still receive CORS headers on error
	// responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		// Never rate-limit preflight requests; they should be handled by CORS.
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))

	// Session resolution; skipped for infrastructure endpoints.
	app.Use(s.WithIdentity())
}

// SetupRoutes configures all routes for the application.
func (s *Server) SetupRoutes(app *fiber.App) {
	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	categories := app.Group("/category")
	categories.Get("/", s.ListCategories)
	categories.Post("/", s.CreateCategory)
	categories.Get("/:id", s.GetCategory)
	categories.Put("/:id", s.UpdateCategory)
	categories.Delete("/:id", s.DeleteCategory)

	entries := app.Group("/entry")
	entries.Get("/", s.ListConfessions)
	entries.Post("/", s.CreateConfession)
	entries.Get("/:id", s.GetConfession)
	entries.Put("/:id", s.UpdateConfession)
	entries.Patch("/:id", s.UpdateConfession)
	entries.Delete("/:id", s.DeleteConfession)

	comments := app.Group("/comment")
	comments.Get("/", s.ListComments)
	comments.Post("/", s.CreateComment)
	comments.Get("/:id", s.GetComment)
	comments.Delete("/:id", s.DeleteComment)

	reactions := app.Group("/reaction")
	reactions.Get("/", s.ListReactions)
	reactions.Post("/", s.CreateReaction)
	reactions.Delete("/:id", s.DeleteReaction)

	reports := app.Group("/report")
	reports.Get("/", s.ListReports)
	reports.Post("/", s.CreateReport)
	reports.Get("/:id", s.GetReport)
	reports.Post("/:id/vote", s.VoteReport)
	reports.Delete("/:id", s.DeleteReport)

	messages := app.Group("/message")
	messages.Get("/", s.ListConversations)
	messages.Post("/", s.SendMessage)
	messages.Get("/:handle", s.GetThread)

	users := app.Group("/user")
	users.Get("/", s.ListAccounts)
	users.Get("/me", s.GetMyAccount)
	users.Post("/me", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.Login)
	users.Put("/me", s.UpdateMyAccount)
	users.Patch("/me", s.UpdateMyAccount)
	users.Get("/logout", s.Logout)
	users.Post("/:id/role", s.SetAccountRole)
	users.Get("/:id", s.GetAccount)

	blocks := app.Group("/blocklist")
	blocks.Get("/", s.ListBlocks)
	blocks.Post("/", s.CreateBlock)
	blocks.Get("/:id", s.GetBlock)
	blocks.Put("/:id", s.UpdateBlock)
	blocks.Delete("/:id", s.DeleteBlock)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	// Redis is optional; the app degrades to uncached operation without it.
	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// generateToken creates a JWT for the given account.
func (s *Server) generateToken(accountID uint, handle string) (string, error) {
	if s.config.JWTSecret == "" {
		return "", fmt.Errorf("JWT secret not configured")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":    strconv.FormatUint(uint64(accountID), 10),
		"handle": handle,
		"iss":    "hushwall-api",
		"aud":    "hushwall-client",
		"exp":    now.Add(time.Hour * 24 * 7).Unix(),
		"iat":    now.Unix(),
		"nbf":    now.Unix(),
		"jti":    s.generateJTI(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}

// generateJTI creates a unique JWT ID so individual tokens can be revoked.
func (s *Server) generateJTI() string {
	return fmt.Sprintf("%d-%s", time.Now().Unix(), uuid.New().String()[:8])
}

// NewApp builds the Fiber app with the server's configuration. Identity is
// keyed on the client address, so X-Forwarded-For is only honored when it
// comes from an explicitly trusted proxy.
func (s *Server) NewApp() *fiber.App {
	cfg := fiber.Config{
		AppName: "Hushwall API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	}
	if proxies := strings.TrimSpace(s.config.TrustedProxies); proxies != "" {
		cfg.EnableTrustedProxyCheck = true
		cfg.TrustedProxies = strings.Split(proxies, ",")
		cfg.ProxyHeader = fiber.HeaderXForwardedFor
	}
	return fiber.New(cfg)
}

// Start starts the server.
func (s *Server) Start() error {
	app := s.NewApp()
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	log.Printf("Server starting on port %s...", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			log.Printf("error shutting down HTTP server: %v", err)
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Printf("error closing sql DB: %v", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			log.Printf("error closing redis: %v", rerr)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}
