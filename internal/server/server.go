package server

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	redisstore "github.com/gofiber/storage/redis/v3"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"teamhub/internal/config"
	"teamhub/internal/middleware"
)

// Server wraps the Fiber app and configuration.
type Server struct {
	App *fiber.App
	Cfg *config.Config
	Log zerolog.Logger

	limiterStore fiber.Storage
}

// New creates a new server with middleware configured.
func New(cfg *config.Config, log zerolog.Logger) *Server {
	app := fiber.New(fiber.Config{
		AppName:   "teamhub",
		BodyLimit: 1 << 20,
		ErrorHandler: func(c fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			message := "internal server error"

			var fe *fiber.Error
			if errors.As(err, &fe) {
				code = fe.Code
				message = fe.Message
			} else {
				log.Error().Err(err).Str("path", c.Path()).Msg("unhandled error")
			}

			return c.Status(code).JSON(fiber.Map{
				"status": "error",
				"error":  message,
			})
		},
	})

	s := &Server{App: app, Cfg: cfg, Log: log}

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.RequestLogger(log))

	origins := cfg.AllowedOrigins()
	if len(origins) == 0 {
		origins = []string{cfg.BaseURL}
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		MaxAge:       86400,
	}))

	if cfg.RateLimit > 0 {
		lc := limiter.Config{
			Max:        cfg.RateLimit,
			Expiration: time.Minute,
			KeyGenerator: func(c fiber.Ctx) string {
				return c.IP()
			},
			Next: func(c fiber.Ctx) bool {
				return c.Path() == "/healthz" || c.Path() == "/metrics"
			},
			LimitReached: func(c fiber.Ctx) error {
				return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
					"status": "error",
					"error":  "rate limit exceeded, try again later",
				})
			},
		}
		// Share counters across replicas when Redis is available.
		if cfg.RedisURL != "" {
			s.limiterStore = redisstore.New(redisstore.Config{URL: cfg.RedisURL})
			lc.Storage = s.limiterStore
			log.Info().Msg("rate limiter using redis storage")
		}
		app.Use(limiter.New(lc))
	}

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	return s
}

// Start listens on the configured address until Shutdown is called.
func (s *Server) Start() error {
	s.Log.Info().Str("addr", s.Cfg.ServerAddr).Msg("starting server")
	return s.App.Listen(s.Cfg.ServerAddr, fiber.ListenConfig{DisableStartupMessage: true})
}

// Shutdown gracefully shuts down the server and releases the limiter store.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.App.ShutdownWithContext(ctx)
	if s.limiterStore != nil {
		if cerr := s.limiterStore.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}
