package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/mamadbah2/palmoil/internal/config"
	"github.com/mamadbah2/palmoil/internal/repository/mongodb"
	"github.com/mamadbah2/palmoil/internal/scheduler"
	"github.com/mamadbah2/palmoil/internal/server/handlers"
	"github.com/mamadbah2/palmoil/internal/server/router"
	"github.com/mamadbah2/palmoil/internal/service/dashboard"
	"github.com/mamadbah2/palmoil/internal/service/session"
	"github.com/mamadbah2/palmoil/pkg/clients/backend"
	"github.com/mamadbah2/palmoil/pkg/clients/whatsapp"
	"github.com/mamadbah2/palmoil/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.LogLevel))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)
	gin.SetMode(cfg.Server.GinMode)

	loc, err := time.LoadLocation(cfg.Digest.Timezone)
	if err != nil {
		baseLogger.Fatal("invalid timezone", zap.String("timezone", cfg.Digest.Timezone), zap.Error(err))
	}

	store, closeStore := newTokenStore(cfg, baseLogger)
	defer closeStore()

	tokens := session.NewTokens(store, logger.Named(baseLogger, "session.tokens"))
	apiClient := backend.NewClient(cfg.Backend, tokens, logger.Named(baseLogger, "client.backend"))
	sessions := session.NewManager(apiClient, tokens, logger.Named(baseLogger, "session"))

	initCtx, cancelInit := context.WithTimeout(context.Background(), 30*time.Second)
	if err := sessions.Init(initCtx); err != nil {
		baseLogger.Error("failed to restore session", zap.Error(err))
	}
	if !sessions.IsAuthenticated() && cfg.Backend.HasServiceAccount() {
		if _, err := sessions.Login(initCtx, cfg.Backend.Username, cfg.Backend.Password); err != nil {
			baseLogger.Warn("service account login failed", zap.Error(err))
		}
	}
	cancelInit()

	dashboardSvc := dashboard.NewService(apiClient, loc, logger.Named(baseLogger, "svc.dashboard"))

	var digestArchive *mongodb.MongoDBRepository
	if cfg.MongoDB.Enabled() {
		digestArchive, err = mongodb.Connect(context.Background(), cfg.MongoDB.URI, cfg.MongoDB.DBName)
		if err != nil {
			baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
		}
		defer func() {
			if err := digestArchive.Close(context.Background()); err != nil {
				baseLogger.Error("failed to close mongodb connection", zap.Error(err))
			}
		}()
	} else {
		baseLogger.Warn("mongodb uri missing, digests will not be archived")
	}

	// Interfaces stay nil when the archive is disabled.
	var (
		archive        scheduler.Archive
		archiveHistory handlers.DigestArchive
	)
	if digestArchive != nil {
		archive, archiveHistory = digestArchive, digestArchive
	}

	dashboardHandler := handlers.NewDashboardHandler(dashboardSvc, logger.Named(baseLogger, "handlers.dashboard"))
	digestHandler := handlers.NewDigestHandler(dashboardSvc, archiveHistory, logger.Named(baseLogger, "handlers.digest"))
	sessionHandler := handlers.NewSessionHandler(sessions, logger.Named(baseLogger, "handlers.session"))
	engine := router.New(dashboardHandler, digestHandler, sessionHandler, logger.Named(baseLogger, "router"))

	if cfg.Digest.Enabled {
		var notifier scheduler.Notifier
		if cfg.WhatsApp.Enabled() {
			notifier = whatsapp.NewNotifier(whatsapp.NewClient(cfg.WhatsApp), logger.Named(baseLogger, "notifier.whatsapp"))
			baseLogger.Info("whatsapp digest notifications enabled")
		}

		sched, err := scheduler.NewScheduler(*cfg, dashboardSvc, sessions, archive, notifier, logger.Named(baseLogger, "scheduler"))
		if err != nil {
			baseLogger.Fatal("failed to init scheduler", zap.Error(err))
		}
		if err := sched.Start(); err != nil {
			baseLogger.Fatal("failed to start scheduler", zap.Error(err))
		}
		defer sched.Stop()
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port), zap.String("backend", cfg.Backend.BaseURL))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}

// newTokenStore picks the session token backend named by SESSION_STORE.
func newTokenStore(cfg *config.Config, log *zap.Logger) (session.Store, func()) {
	switch cfg.Session.Store {
	case config.SessionStoreFile:
		log.Info("using file session store", zap.String("path", cfg.Session.FilePath))
		return session.NewFileStore(cfg.Session.FilePath), func() {}
	case config.SessionStoreRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		log.Info("using redis session store", zap.String("addr", cfg.Redis.Addr))
		return session.NewRedisStore(client, cfg.Redis.KeyPrefix), func() {
			if err := client.Close(); err != nil {
				log.Error("failed to close redis client", zap.Error(err))
			}
		}
	default:
		return session.NewMemoryStore(), func() {}
	}
}
