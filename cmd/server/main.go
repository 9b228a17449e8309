package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/scrcorp/taskmanager-server/internal/featureflags"
	"github.com/scrcorp/taskmanager-server/internal/handler"
	"github.com/scrcorp/taskmanager-server/internal/infrastructure/logger"
	"github.com/scrcorp/taskmanager-server/internal/infrastructure/redis"
	"github.com/scrcorp/taskmanager-server/internal/observability/tracing"
	"github.com/scrcorp/taskmanager-server/internal/reliability/retry"
	"github.com/scrcorp/taskmanager-server/internal/repository"
	"github.com/scrcorp/taskmanager-server/internal/security/audit"
	"github.com/scrcorp/taskmanager-server/internal/security/auth"
	"github.com/scrcorp/taskmanager-server/internal/security/ratelimit"
	"github.com/scrcorp/taskmanager-server/internal/service"
	"github.com/scrcorp/taskmanager-server/internal/worker"
	"github.com/scrcorp/taskmanager-server/pkg/cache"
	"github.com/scrcorp/taskmanager-server/pkg/config"
	"github.com/scrcorp/taskmanager-server/pkg/database"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg.LogLevel)
	log.Info("starting taskmanager server", slog.String("environment", cfg.Environment))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := tracing.Init(ctx, log, "taskmanager", cfg.Environment, cfg.OTLPEndpoint)
	if err != nil {
		log.Error("failed to initialize tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer shutdownTracing(context.Background())

	dbConfig := database.DefaultConfig()
	dbConfig.URL = cfg.DatabaseURL
	pool, err := retry.Do(ctx, retry.DefaultConfig(), log, "connect postgres", func(ctx context.Context) (*database.ConnectionPool, error) {
		return database.NewConnectionPool(ctx, dbConfig, log)
	})
	if err != nil {
		log.Error("failed to connect to postgres", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()
	db := pool.GetDB()

	// Redis is optional: without it the template cache degrades to an
	// in-process store.
	var cacheStore repository.CacheStore
	redisClient, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		log.Warn("redis unavailable, using in-process template cache", slog.String("error", err.Error()))
		cacheStore = cache.NewMemory()
	} else {
		defer redisClient.Close()
		cacheStore = redisClient
	}

	// Repositories.
	orgRepo := repository.NewPostgresOrganizationRepository(db, log)
	brandRepo := repository.NewPostgresBrandRepository(db, log)
	shiftRepo := repository.NewPostgresShiftRepository(db, log)
	positionRepo := repository.NewPostgresPositionRepository(db, log)
	roleRepo := repository.NewPostgresRoleRepository(db, log)
	userRepo := repository.NewPostgresUserRepository(db, log)
	checklistRepo := repository.NewCachedChecklistRepository(
		repository.NewPostgresChecklistRepository(db, log),
		cacheStore,
		cfg.TemplateCacheTTL,
		log,
	)
	assignmentRepo := repository.NewPostgresAssignmentRepository(db, log)
	taskRepo := repository.NewPostgresTaskRepository(db, log)
	announcementRepo := repository.NewPostgresAnnouncementRepository(db, log)
	notificationRepo := repository.NewPostgresNotificationRepository(db, log)

	// Services.
	tokenManager := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer)
	notificationService := service.NewNotificationService(notificationRepo, log)
	authService := service.NewAuthService(userRepo, roleRepo, tokenManager, log)
	userService := service.NewUserService(orgRepo, roleRepo, userRepo, log)
	orgService := service.NewOrganizationService(orgRepo, brandRepo, shiftRepo, positionRepo, log)
	checklistService := service.NewChecklistService(checklistRepo, brandRepo, shiftRepo, positionRepo, log)
	assignmentService := service.NewAssignmentService(assignmentRepo, checklistRepo, brandRepo, shiftRepo, positionRepo, userRepo, notificationService, log)
	taskService := service.NewTaskService(taskRepo, brandRepo, userRepo, notificationService, log)
	announcementService := service.NewAnnouncementService(announcementRepo, brandRepo, userRepo, notificationService, log)

	// Security components.
	rateLimiter := ratelimit.NewLimiter(cfg.RateLimitPerMinute, time.Minute)
	auditLogger := audit.NewLogger(log)

	// Handlers and routes.
	handlers := handler.Handlers{
		Auth:         handler.NewAuthHandler(authService, userService, auditLogger, log),
		Organization: handler.NewOrganizationHandler(orgService, log),
		User:         handler.NewUserHandler(userService, log),
		Checklist:    handler.NewChecklistHandler(checklistService, log),
		Assignment:   handler.NewAssignmentHandler(assignmentService, log),
		Task:         handler.NewTaskHandler(taskService, log),
		Announcement: handler.NewAnnouncementHandler(announcementService, log),
		Notification: handler.NewNotificationHandler(notificationService, log),
		Feed:         handler.NewFeedHandler(notificationService, tokenManager, cfg.CORSAllowedOrigins, log),
		Health:       handler.NewHealthHandler(pool, redisClient, log),
	}
	router := handler.NewRouter(handlers, tokenManager, rateLimiter, auditLogger, cfg.CORSAllowedOrigins, log)
	rootHandler := withRequestID(router, log)

	// Missed-assignment sweep.
	if featureflags.Enabled("disable_missed_sweep") {
		log.Info("missed sweep disabled by flag")
	} else {
		sweep := worker.NewMissedSweep(assignmentRepo, log, cfg.SweepInterval, cfg.SweepGrace)
		go sweep.Start(ctx)
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      rootHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info("server starting",
		slog.Int("port", cfg.ServerPort),
		slog.String("auth", "jwt"),
		slog.Int("rate_limit_per_minute", cfg.RateLimitPerMinute),
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", slog.String("error", err.Error()))
		}
	}()

	<-sigChan
	log.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", slog.String("error", err.Error()))
	}

	cancel()
	rateLimiter.Stop()
	log.Info("server stopped")
}

type requestIDKey struct{}

// withRequestID attaches a request ID to the context and response headers
// and logs one completion line per request.
func withRequestID(next http.Handler, log *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := generateRequestID()
		w.Header().Set("X-Request-ID", reqID)

		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		start := time.Now()

		next.ServeHTTP(w, r.WithContext(ctx))

		log.Info("request completed",
			slog.String("request_id", reqID),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Duration("duration_ms", time.Since(start)),
		)
	})
}

func generateRequestID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err == nil {
		return hex.EncodeToString(buf)
	}
	return fmt.Sprintf("req-%d", time.Now().UnixNano())
}
