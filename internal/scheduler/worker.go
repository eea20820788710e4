package scheduler

import (
	"context"
	"fmt"

	"enquiry_intake_backend/internal/events"
	"enquiry_intake_backend/platform/config"
	"enquiry_intake_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	bus    events.Bus
	log    *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, bus events.Bus, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queueName(cfg): 1,
		},
	})

	w := newWorker(bus, log)
	w.server = server
	return w, nil
}

func newWorker(bus events.Bus, log *logger.Logger) *Worker {
	mux := asynq.NewServeMux()
	w := &Worker{
		mux: mux,
		bus: bus,
		log: log,
	}
	mux.HandleFunc(TaskCommentNotification, w.handleCommentNotification)
	return w
}

// handleCommentNotification publishes the queued change synchronously so a
// failed delivery is reported back to asynq and retried.
func (w *Worker) handleCommentNotification(ctx context.Context, task *asynq.Task) error {
	if w.bus == nil {
		return nil
	}

	payload, err := ParseCommentNotificationPayload(task)
	if err != nil {
		return fmt.Errorf("parse comment notification: %v: %w", err, asynq.SkipRetry)
	}

	enquiryID, err := uuid.Parse(payload.EnquiryID)
	if err != nil {
		return fmt.Errorf("parse enquiry id: %v: %w", err, asynq.SkipRetry)
	}

	// Keep the original change's identity so logs on both sides of the queue line up.
	base := events.NewBaseEvent()
	if !payload.ChangedAt.IsZero() {
		base.Timestamp = payload.ChangedAt
	}
	if payload.EventID != "" {
		base.ID = payload.EventID
	}

	return w.bus.PublishSync(ctx, events.CommentNotificationDue{
		BaseEvent: events.NewBaseEvent(),
		Notification: events.EnquiryCommentChanged{
			BaseEvent:      base,
			EnquiryID:      enquiryID,
			DisplayName:    payload.DisplayName,
			MobileNumber:   payload.MobileNumber,
			BusinessNature: payload.BusinessNature,
			PreviousLabel:  payload.PreviousLabel,
			Comment:        payload.Comment,
			TemplateKey:    payload.TemplateKey,
			ChangedBy:      payload.ChangedBy,
		},
	})
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}
