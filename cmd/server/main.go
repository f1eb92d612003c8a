package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/aclog/aclog-server-go/internal/cache"
	"github.com/aclog/aclog-server-go/internal/config"
	"github.com/aclog/aclog-server-go/internal/database"
	"github.com/aclog/aclog-server-go/internal/handler"
	"github.com/aclog/aclog-server-go/internal/jobs"
	"github.com/aclog/aclog-server-go/internal/middleware"
	"github.com/aclog/aclog-server-go/internal/redis"
	"github.com/aclog/aclog-server-go/internal/repository"
	"github.com/aclog/aclog-server-go/internal/service"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	setLogLevel(cfg.LogLevel)

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), config.DBPingTimeout)
	if err := db.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ping database")
	}
	cancel()
	log.Info().Msg("database connected")

	var (
		store       cache.Store
		rateLimiter *service.RateLimiter
	)

	cleanupJob := jobs.NewCleanupJob(config.CleanupJobInterval)

	switch cfg.CacheBackend {
	case "redis":
		redisClient, err := redis.NewClient(cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer redisClient.Close()
		log.Info().Msg("redis connected")

		store = cache.NewRedisStore(redisClient.Client)
		rateLimiter = service.NewRateLimiter(redisClient.Client)
	case "postgres":
		pgStore := cache.NewPostgresStore(db.DB)
		store = pgStore
		cleanupJob.Register("cache entries", pgStore)
	case "memory":
		store = cache.NewMemoryStore()
		log.Warn().Msg("using in-memory cache backend, entries do not survive restarts")
	}

	userRepo := repository.NewUserRepository(db.DB)
	locationRepo := repository.NewLocationRepository(db.DB)
	activityRepo := repository.NewActivityRepository(db.DB)
	workLogRepo := repository.NewWorkLogRepository(db.DB)

	otpService := service.NewOTPService(userRepo, store, cfg.OTPTTL())
	sessionService := service.NewSessionService(store, cfg.SessionTTL())
	userService := service.NewUserService(userRepo)
	locationService := service.NewLocationService(locationRepo)
	activityService := service.NewActivityService(activityRepo)
	adminService := service.NewAdminService(userRepo)
	workLogService := service.NewWorkLogService(db, workLogRepo)

	authMiddleware := middleware.NewAuthMiddleware(sessionService)
	bodyLimitMiddleware := middleware.NewBodyLimitMiddleware(0)

	// Only the redis deployment gets the IP limiter in front of OTP
	// requests; the per-identifier and per-IP verify limits still apply
	// everywhere.
	sendOtpLimiter := func(next http.Handler) http.Handler { return next }
	if rateLimiter != nil {
		sendOtpLimiter = middleware.NewIPRateLimitMiddleware(
			rateLimiter, 10, time.Minute, "send_otp",
		).Handler
	}

	authHandler := handler.NewAuthHandler(
		userService, otpService, sessionService,
		rateLimiter, cfg.OTPSendPerMinute,
		authMiddleware, sendOtpLimiter,
	)
	locationHandler := handler.NewLocationHandler(locationService, authMiddleware)
	activityHandler := handler.NewActivityHandler(activityService, authMiddleware)
	adminHandler := handler.NewAdminHandler(adminService, authMiddleware)
	workLogHandler := handler.NewWorkLogHandler(workLogService, authMiddleware)
	mediaHandler := handler.NewMediaHandler(cfg.UploadDir, cfg.MaxUploadBytes, authMiddleware)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(config.ServerRequestTimeout))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{
			"status":    "ok",
			"timestamp": time.Now().UnixMilli(),
		})
	})

	r.Route("/api", func(r chi.Router) {
		// The default body cap stays off the media mount, which carries
		// its own upload-sized limit.
		r.Group(func(r chi.Router) {
			r.Use(bodyLimitMiddleware.Handler)
			r.Mount("/auth", authHandler.Routes())
			r.Mount("/location", locationHandler.Routes())
			r.Mount("/activities", activityHandler.Routes())
			r.Mount("/admin", adminHandler.Routes())
			r.Mount("/worklog", workLogHandler.Routes())
		})
		r.Mount("/media", mediaHandler.Routes())
	})

	r.Get("/uploads/*", handler.UploadsFileServer(cfg.UploadDir).ServeHTTP)

	cleanupJob.Start()
	defer cleanupJob.Stop()

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: 0,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr()).Str("cacheBackend", cfg.CacheBackend).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), config.ServerShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

func setLogLevel(level string) {
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
