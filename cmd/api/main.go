package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dan9191/loan-appraisal/internal/config"
	"github.com/Dan9191/loan-appraisal/internal/handler"
	"github.com/Dan9191/loan-appraisal/internal/integrations/cbr"
	"github.com/Dan9191/loan-appraisal/internal/repository"
	"github.com/Dan9191/loan-appraisal/internal/scheduler"
	"github.com/Dan9191/loan-appraisal/internal/service"
	"github.com/Dan9191/loan-appraisal/internal/utils/email"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	logLevel, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Initialize database
	db, err := sql.Open("postgres", cfg.DBConn)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}

	// Key rate cache
	cache := newCache(cfg, logger)

	// Initialize layers
	repo := repository.NewRepository(db)
	cbrClient := cbr.NewCBRClient(cfg, logger)
	mailer := email.NewSender(cfg, logger)
	svc := service.NewService(repo, cache, cbrClient, mailer, logger, cfg)
	h := handler.NewHandler(svc, logger)

	// Background key rate refresh
	sched, err := scheduler.New(cfg.KeyRateRefreshSpec, svc, logger)
	if err != nil {
		logger.Fatalf("Failed to create scheduler: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      h.Router(cfg),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		logger.Infof("Starting server on %s", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Server failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Errorf("Graceful shutdown failed: %v", err)
	}
}

// newCache prefers Redis and falls back to process memory when it is not configured or not reachable
func newCache(cfg *config.Config, logger *logrus.Logger) repository.CacheRepository {
	if cfg.RedisAddr == "" {
		logger.Info("REDIS_ADDR not set, caching key rate in memory")
		return repository.NewMemoryCache()
	}

	rc := repository.NewRedisCache(cfg.RedisAddr)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rc.Ping(ctx); err != nil {
		logger.Warnf("Redis at %s unavailable, caching key rate in memory: %v", cfg.RedisAddr, err)
		rc.Close()
		return repository.NewMemoryCache()
	}
	logger.Infof("Caching key rate in Redis at %s", cfg.RedisAddr)
	return rc
}
