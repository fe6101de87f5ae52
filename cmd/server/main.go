package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/HammerMeetNail/combohub/internal/config"
	"github.com/HammerMeetNail/combohub/internal/database"
	"github.com/HammerMeetNail/combohub/internal/handlers"
	"github.com/HammerMeetNail/combohub/internal/logging"
	"github.com/HammerMeetNail/combohub/internal/metrics"
	"github.com/HammerMeetNail/combohub/internal/middleware"
	"github.com/HammerMeetNail/combohub/internal/services"
)

func main() {
	if err := run(); err != nil {
		logging.Error("Application error", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
}

func run() error {
	logger := logging.New()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if cfg.Server.Debug {
		logger.SetLevel(logging.LevelDebug)
		logging.SetDefaultLevel(logging.LevelDebug)
		logger.Debug("Debug logging enabled", map[string]interface{}{"env": cfg.Server.Environment})
	}

	logger.Info("Starting combohub server...")

	ctx := context.Background()

	logger.Info("Connecting to PostgreSQL", map[string]interface{}{
		"host": cfg.Database.Host,
		"port": cfg.Database.Port,
	})
	db, err := database.NewPostgresDB(ctx, cfg.Database.DSN(), database.PoolOptions{
		MaxConns:         cfg.Database.MaxConns,
		MinConns:         cfg.Database.MinConns,
		StatementTimeout: cfg.Database.StatementTimeout,
	})
	if err != nil {
		return fmt.Errorf("connecting to postgres: %w", err)
	}
	defer db.Close()

	logger.Info("Running database migrations...")
	migrator, err := database.NewMigrator(cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	if err := migrator.Up(); err != nil {
		_ = migrator.Close()
		return fmt.Errorf("running migrations: %w", err)
	}
	_ = migrator.Close()
	logger.Info("Migrations completed")

	logger.Info("Connecting to Redis", map[string]interface{}{"addr": cfg.Redis.Addr()})
	redisDB, err := database.NewRedisDB(ctx, database.RedisOptions{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})
	if err != nil {
		return fmt.Errorf("connecting to redis: %w", err)
	}
	defer func() { _ = redisDB.Close() }()

	dbAdapter := services.NewPoolAdapter(db.Pool)
	redisAdapter := services.NewRedisAdapter(redisDB.Client)

	userService := services.NewUserService(dbAdapter)
	comboService := services.NewComboService(dbAdapter)
	likeService := services.NewLikeService(dbAdapter)
	commentService := services.NewCommentService(dbAdapter)
	sessionService := services.NewSessionService(redisAdapter, cfg.Session.TTL)

	var tokens services.TokenVerifierInterface
	if cfg.Session.JWTSecret != "" {
		tokens = services.NewTokenVerifier(cfg.Session.JWTSecret, cfg.Session.JWTIssuer)
	}

	m := metrics.New(prometheus.NewRegistry())
	renderer, err := handlers.NewRenderer(cfg.Server.TemplatesDir, logger)
	if err != nil {
		return fmt.Errorf("loading templates: %w", err)
	}

	handler := newServerHandler(serverDeps{
		health:   handlers.NewHealthHandler(db, redisDB),
		pages:    handlers.NewComboPageHandler(comboService, commentService, renderer),
		toggles:  handlers.NewToggleHandler(comboService, likeService, commentService, renderer, m),
		comments: handlers.NewCommentHandler(comboService, commentService, renderer),
		sessions: middleware.NewSessionMiddleware(sessionService, tokens, userService, cfg.Session.CookieName, logger),
		limiter: middleware.NewRateLimiter(redisDB.Client, cfg.RateLimit.Actions, cfg.RateLimit.Window,
			"ratelimit:mutations:", middleware.ViewerKey, true),
		metrics: m,
		logger:  logger,
		secure:  cfg.Server.Secure,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	done := make(chan bool, 1)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		logger.Info("Server is shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		server.SetKeepAlivesEnabled(false)
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("Could not gracefully shutdown the server", map[string]interface{}{
				"error": err.Error(),
			})
		}
		close(done)
	}()

	logger.Info("Server listening", map[string]interface{}{"addr": addr})
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	<-done
	logger.Info("Server stopped")
	return nil
}

type serverDeps struct {
	health   *handlers.HealthHandler
	pages    *handlers.ComboPageHandler
	toggles  *handlers.ToggleHandler
	comments *handlers.CommentHandler
	sessions *middleware.SessionMiddleware
	limiter  *middleware.RateLimiter
	metrics  *metrics.Metrics
	logger   *logging.Logger
	secure   bool
}

// newServerHandler registers every route and wraps the mux in the middleware
// chain. Metrics sits directly on the mux so r.Pattern is populated. Cross-site
// mutations are refused before the session cookie is even read.
func newServerHandler(d serverDeps) http.Handler {
	mutation := func(h http.HandlerFunc) http.Handler {
		return d.sessions.RequireViewer(d.limiter.Middleware(h))
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", d.health.Health)
	mux.HandleFunc("GET /ready", d.health.Ready)
	mux.HandleFunc("GET /live", d.health.Live)
	mux.Handle("GET /metrics", d.metrics.Handler())

	// Pages and fragments
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/combos", http.StatusFound)
	})
	mux.HandleFunc("GET /combos", d.pages.List)
	mux.HandleFunc("GET /combos/{slug}", d.pages.Show)
	mux.HandleFunc("GET /combos/{id}/controls/{kind}", d.pages.Control)
	mux.HandleFunc("GET /combos/{id}/comments", d.pages.Comments)

	// Combo memberships
	mux.Handle("POST /combos/{id}/likes", mutation(d.toggles.AddLike))
	mux.Handle("POST /combos/{id}/likes/{likeID}/delete", mutation(d.toggles.RemoveLike))
	mux.Handle("POST /combos/{id}/favorites", mutation(d.toggles.AddFavorite))
	mux.Handle("POST /combos/{id}/favorites/{favoriteID}/delete", mutation(d.toggles.RemoveFavorite))
	mux.Handle("POST /combos/{id}/delete", mutation(d.toggles.DeleteCombo))

	// Comments
	mux.Handle("POST /combos/{id}/comments", mutation(d.comments.Create))
	mux.Handle("POST /comments/{id}/likes", mutation(d.toggles.LikeComment))
	mux.Handle("POST /comments/{id}/likes/{likeID}/delete", mutation(d.toggles.UnlikeComment))

	var handler http.Handler = mux
	handler = middleware.NewRequestMetrics(d.metrics).Apply(handler)
	handler = d.sessions.Authenticate(handler)
	handler = middleware.NewCSRFMiddleware(d.secure).Protect(handler)
	handler = middleware.NewSecurityHeaders(d.secure).Apply(handler)
	handler = middleware.NewRequestLogger(d.logger).Apply(handler)
	return handler
}
