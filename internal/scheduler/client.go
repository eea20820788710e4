package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"enquiry_intake_backend/internal/events"
	"enquiry_intake_backend/platform/cache"
	"enquiry_intake_backend/platform/config"

	"github.com/hibiken/asynq"
)

const (
	defaultQueue                 = "default"
	commentNotificationRetries   = 5
	commentNotificationTimeout   = 2 * time.Minute
	commentNotificationRetention = 24 * time.Hour
)

var errClientUnavailable = errors.New("scheduler client not configured")

type Client struct {
	client *asynq.Client
	queue  string
}

func NewClient(cfg config.SchedulerConfig) (*Client, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	return &Client{
		client: asynq.NewClient(opt),
		queue:  queueName(cfg),
	}, nil
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// EnqueueCommentNotification hands a comment change to the worker process.
func (c *Client) EnqueueCommentNotification(ctx context.Context, n events.EnquiryCommentChanged) error {
	if c == nil || c.client == nil {
		return errClientUnavailable
	}

	task, err := NewCommentNotificationTask(CommentNotificationPayload{
		EnquiryID:      n.EnquiryID.String(),
		DisplayName:    n.DisplayName,
		MobileNumber:   n.MobileNumber,
		BusinessNature: n.BusinessNature,
		PreviousLabel:  n.PreviousLabel,
		Comment:        n.Comment,
		TemplateKey:    n.TemplateKey,
		ChangedBy:      n.ChangedBy,
		ChangedAt:      n.OccurredAt(),
		EventID:        n.EventID(),
	})
	if err != nil {
		return err
	}

	_, err = c.client.EnqueueContext(ctx, task,
		asynq.Queue(c.queue),
		asynq.MaxRetry(commentNotificationRetries),
		asynq.Timeout(commentNotificationTimeout),
		asynq.Retention(commentNotificationRetention),
	)
	return err
}

func queueName(cfg config.SchedulerConfig) string {
	if queue := cfg.GetAsynqQueueName(); queue != "" {
		return queue
	}
	return defaultQueue
}

func redisClientOpt(redisURL string, tlsInsecure bool) (asynq.RedisClientOpt, error) {
	opt, err := cache.Options(redisURL, tlsInsecure)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Username:  opt.Username,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: opt.TLSConfig,
	}, nil
}
