package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/modelodev/scrumbringer/internal/config"
	"github.com/modelodev/scrumbringer/internal/handler"
	"github.com/modelodev/scrumbringer/internal/messaging"
	"github.com/modelodev/scrumbringer/internal/middleware"
	"github.com/modelodev/scrumbringer/internal/observability"
	"github.com/modelodev/scrumbringer/internal/ratelimit"
	"github.com/modelodev/scrumbringer/internal/repository/postgres"
	"github.com/modelodev/scrumbringer/internal/security"
	"github.com/modelodev/scrumbringer/internal/service"
)

func main() {
	cfg := config.Load()

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logFormat := os.Getenv("LOG_FORMAT")
	if logFormat == "" {
		logFormat = "json"
	}
	observability.InitLogger(logLevel, logFormat)

	slog.Info("starting scrumbringer auth server")

	connCtx, connCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer connCancel()

	db, err := config.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer db.Close()

	if err := db.PingContext(connCtx); err != nil {
		slog.Error("database ping failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	slog.Info("connected to postgresql")

	// Mailer broker is optional: without it reset notifications are
	// simply not published.
	var rmq *messaging.RabbitMQ
	var notifier service.ResetNotifier
	if cfg.RabbitMQURL != "" {
		rmqCtx, rmqCancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer rmqCancel()

		rmq, err = messaging.NewRabbitMQWithRetry(rmqCtx, cfg.RabbitMQURL)
		if err != nil {
			slog.Error("failed to connect to rabbitmq", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer rmq.Close()
		notifier = messaging.NewPublisher(rmq)
		slog.Info("connected to rabbitmq")
	} else {
		slog.Warn("RABBITMQ_URL not set, reset notifications disabled")
	}

	txManager := postgres.NewTxManager(db)
	userRepo := postgres.NewUserRepository(db)
	orgRepo := postgres.NewOrgRepository(db)
	resetRepo := postgres.NewResetTokenRepository(db)

	tokenService := security.NewTokenService(cfg.SessionSecret, cfg.SessionTTL)
	hasher := security.NewBcryptHasher(12)

	authService := service.NewAuthService(txManager, userRepo, orgRepo, tokenService, hasher)
	resetService := service.NewPasswordResetService(txManager, userRepo, resetRepo, hasher, notifier)

	authHandler := handler.NewAuthHandler(authService, cfg.IsProduction())
	resetHandler := handler.NewPasswordResetHandler(resetService)

	resetLimiter := ratelimit.NewFixedWindow()
	defer resetLimiter.Stop()

	apiThrottle := middleware.NewThrottle(20, 50)
	defer apiThrottle.Stop()

	r := chi.NewRouter()

	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.CORS(middleware.ParseOrigins(cfg.AllowedOrigins)))
	r.Use(middleware.Metrics())
	r.Use(middleware.OpenAPIValidator(middleware.DefaultOpenAPIValidatorConfig(cfg.Environment)))

	r.Get("/health", handler.Health)
	r.Get("/health/ready", handler.Ready(db, rmq))
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// Anonymous auth endpoints share the general throttle.
		r.Group(func(r chi.Router) {
			r.Use(apiThrottle.Middleware())
			r.Post("/auth/register", authHandler.Register)
			r.Post("/auth/login", authHandler.Login)
		})

		// Password reset: hard fixed-window ceiling per client IP.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(resetLimiter, "pwreset", cfg.ResetRateLimit, cfg.ResetRateWindow))
			r.Post("/password-resets", resetHandler.Create)
			r.Get("/password-resets/{token}", resetHandler.Validate)
			r.Post("/password-resets/consume", resetHandler.Consume)
		})

		// Authenticated surface: session check, then CSRF for anything
		// state-changing.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(tokenService))
			r.Use(middleware.CSRF())
			r.Use(apiThrottle.Middleware())

			r.Get("/auth/me", authHandler.Me)
			r.Post("/auth/logout", authHandler.Logout)
		})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("scrumbringer listening", slog.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	slog.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", slog.String("error", err.Error()))
	}

	slog.Info("server stopped gracefully")
}
