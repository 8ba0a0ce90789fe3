// Package server exposes the HTTP API.
package server

import (
	"context"
	"time"

	"tokenhealth/internal/aggregator"
	"tokenhealth/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// MetricsService computes a merged metrics record for one token.
type MetricsService interface {
	GetMetrics(ctx context.Context, req aggregator.Request) (*models.MetricsRecord, error)
}

// ResolveService maps raw identifiers to catalog identities and runs searches.
type ResolveService interface {
	Resolve(ctx context.Context, raw string) (*models.ResolvedToken, error)
	Search(ctx context.Context, query string) ([]models.TokenSearchResult, error)
}

// QuotaService gates scans per user per day.
type QuotaService interface {
	Check(ctx context.Context, userID string, now time.Time) error
	DailyLimit(userID string) int
}

// ScanRecorder enqueues scan history rows.
type ScanRecorder interface {
	Record(scan *models.ScanRecord) bool
}

// ScanReader lists persisted scan history.
type ScanReader interface {
	RecentScans(ctx context.Context, limit int) ([]models.ScanRecord, error)
}

// Config carries the server's dependencies and credentials.
type Config struct {
	Metrics  MetricsService
	Resolver ResolveService
	Quota    QuotaService
	Recorder ScanRecorder
	Scans    ScanReader

	AuthUsername string
	AuthPassword string
}

type Server struct {
	app *fiber.App
	cfg Config
	now func() time.Time
}

func NewServer(cfg Config) *Server {
	app := fiber.New(fiber.Config{
		AppName: "Token Health API",
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	s := &Server{
		app: app,
		cfg: cfg,
		now: time.Now,
	}

	// API routes
	api := app.Group("/api/v1")
	api.Post("/token/resolve", s.resolveToken)
	api.Post("/token/search", s.searchTokens)
	api.Post("/token/metrics", s.tokenMetrics)
	api.Post("/token/tokenomics", s.tokenTokenomics)
	api.Get("/scans/recent", authMiddleware(cfg.AuthUsername, cfg.AuthPassword), s.recentScans)

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	return s
}

// WithClock replaces the time source for deterministic tests.
func (s *Server) WithClock(now func() time.Time) *Server {
	s.now = now
	return s
}

// App exposes the fiber app for in-process tests.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Start(port string) error {
	return s.app.Listen(":" + port)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}
