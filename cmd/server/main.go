package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kamy/api/internal/config"
	"github.com/kamy/api/internal/database"
	"github.com/kamy/api/internal/middleware"
	"github.com/kamy/api/internal/router"
	"github.com/kamy/api/internal/services"
	"github.com/kamy/api/pkg/logger"
	"github.com/kamy/api/pkg/utils"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	logger.Init(cfg.Log.Level)

	tokens, err := utils.NewTokenManager(cfg.JWT.Secret, cfg.JWT.TokenTTL())
	if err != nil {
		log.Fatalf("token manager initialization failed: %v", err)
	}

	db, err := database.Connect(cfg.DB)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}

	store := services.NewNotificationService(db)

	var queue services.NotificationQueue
	var worker *services.Worker
	if cfg.Notifications.Mode == config.NotificationsBestEffort {
		queue = services.NewNotificationQueue(*cfg, store)
		if queue.IsAsync() {
			worker = services.NewWorker(cfg.Redis, store)
			worker.Start()
		}
	}
	notifier := services.NewNotifier(cfg.Notifications.Mode, store, queue)

	limiter := middleware.NewRateLimiter(cfg.RateLimit.AuthRPS, cfg.RateLimit.AuthBurst)

	app := router.New(router.Deps{
		DB:          db,
		Tokens:      tokens,
		Notifier:    notifier,
		RateLimiter: limiter,
		FrontendURL: cfg.Server.FrontendURL,
	})

	listenAddr := fmt.Sprintf(":%s", cfg.Server.Port)

	logger.Info("server_starting", map[string]interface{}{
		"port":               cfg.Server.Port,
		"address":            listenAddr,
		"db_driver":          cfg.DB.Driver,
		"notifications_mode": notifier.Mode(),
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(listenAddr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Printf("shutting down server due to signal: %s", sig)
		shutdownDone := make(chan struct{})
		go func() {
			_ = app.Shutdown()
			close(shutdownDone)
		}()
		select {
		case <-shutdownDone:
		case <-time.After(shutdownTimeout):
			log.Print("forced shutdown timeout reached")
		}
	case err := <-errCh:
		if err != nil {
			log.Fatalf("server error: %v", err)
		}
	}

	limiter.Stop()
	if queue != nil {
		if err := queue.Close(); err != nil {
			logger.Error("notification_queue_close_failed", err, nil)
		}
	}
	if worker != nil {
		worker.Stop()
	}
	logger.Info("server_stopped", nil)
}
