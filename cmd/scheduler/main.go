// Command scheduler runs the asynq worker that delivers queued comment
// notifications, plus the periodic staff lock monitor.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"enquiry_intake_backend/internal/email"
	"enquiry_intake_backend/internal/enquiries/repository"
	"enquiry_intake_backend/internal/events"
	"enquiry_intake_backend/internal/notification"
	"enquiry_intake_backend/internal/scheduler"
	"enquiry_intake_backend/internal/whatsapp"
	"enquiry_intake_backend/platform/config"
	"enquiry_intake_backend/platform/db"
	"enquiry_intake_backend/platform/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Env)

	if err := run(cfg, log); err != nil {
		log.Error("scheduler stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	log.Info("starting scheduler", "env", cfg.Env)

	pool, err := db.Connect(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer pool.Close()

	bus := events.NewInMemoryBus(log)
	worker, err := scheduler.NewWorker(cfg, bus, log)
	if err != nil {
		return err
	}

	// No task queue here: a failed delivery is retried by asynq, never re-enqueued.
	notifications := notification.New(email.NewSender(cfg), cfg, log)
	notifications.SetWhatsAppSender(whatsapp.NewClient(cfg, log))
	notifications.RegisterHandlers(bus)

	go scheduler.NewLockMonitor(repository.New(pool), log, cfg.GetLockCheckInterval()).Run(ctx)

	worker.Run(ctx)
	bus.Wait()
	return nil
}
