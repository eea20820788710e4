// Command api serves the enquiry intake HTTP API and the GreenAPI webhook.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"enquiry_intake_backend/internal/email"
	"enquiry_intake_backend/internal/enquiries"
	"enquiry_intake_backend/internal/events"
	apphttp "enquiry_intake_backend/internal/http"
	"enquiry_intake_backend/internal/http/router"
	"enquiry_intake_backend/internal/notification"
	"enquiry_intake_backend/internal/scheduler"
	"enquiry_intake_backend/internal/whatsapp"
	"enquiry_intake_backend/platform/cache"
	"enquiry_intake_backend/platform/config"
	"enquiry_intake_backend/platform/db"
	"enquiry_intake_backend/platform/logger"
	"enquiry_intake_backend/platform/validator"

	"github.com/redis/go-redis/v9"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Env)

	if err := run(cfg, log); err != nil {
		log.Error("api stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	log.Info("starting api", "env", cfg.Env, "addr", cfg.HTTPAddr)

	pool, err := db.Connect(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer pool.Close()
	if cfg.GetAutoMigrate() {
		if err := db.MigrateWithRetry(ctx, pool, log); err != nil {
			return err
		}
	}

	redisClient := openRedis(ctx, cfg, log)
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
	}

	bus := events.NewInMemoryBus(log)
	gateway := whatsapp.NewClient(cfg, log)

	notifications := notification.New(email.NewSender(cfg), cfg, log)
	notifications.SetWhatsAppSender(gateway)
	notifications.RegisterHandlers(bus)
	if queue := openTaskQueue(cfg, log); queue != nil {
		defer func() { _ = queue.Close() }()
		notifications.SetTaskQueue(queue)
	}

	srv := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: router.New(&apphttp.App{
			Config: cfg,
			Logger: log,
			Health: pool,
			Modules: []apphttp.Module{
				enquiries.NewModule(pool, redisClient, gateway, bus, validator.New(), cfg, log),
			},
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.ListenAndServe() }()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err = srv.Shutdown(shutdownCtx)
	bus.Wait()
	return err
}

// openRedis returns nil when Redis is not configured or not reachable; the
// webhook dedup cache then falls back to the database lookup.
func openRedis(ctx context.Context, cfg config.SchedulerConfig, log *logger.Logger) *redis.Client {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not set, webhook dedup uses the database only")
		return nil
	}
	client, err := cache.NewClient(ctx, cfg)
	if err != nil {
		log.Error("redis unavailable, continuing without it", "error", err)
		return nil
	}
	return client
}

// openTaskQueue returns nil when comment notifications should be sent inline.
func openTaskQueue(cfg config.SchedulerConfig, log *logger.Logger) *scheduler.Client {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not set, comment notifications are sent inline")
		return nil
	}
	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("task queue unavailable, comment notifications are sent inline", "error", err)
		return nil
	}
	return client
}
