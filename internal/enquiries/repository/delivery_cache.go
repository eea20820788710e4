package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const deliveryKeyPrefix = "webhook:delivery:"

// DeliveryCache remembers which webhook deliveries already produced an
// enquiry, so provider redeliveries are answered without a database read.
// A nil *DeliveryCache is valid and never hits.
type DeliveryCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewDeliveryCache returns nil when client is nil.
func NewDeliveryCache(client *redis.Client, ttl time.Duration) *DeliveryCache {
	if client == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &DeliveryCache{client: client, ttl: ttl}
}

func deliveryKey(mobileNumber, providerMessageID string) string {
	return deliveryKeyPrefix + mobileNumber + ":" + providerMessageID
}

// Lookup returns the enquiry id recorded for the delivery.
func (c *DeliveryCache) Lookup(ctx context.Context, mobileNumber, providerMessageID string) (uuid.UUID, bool, error) {
	if c == nil {
		return uuid.Nil, false, nil
	}
	raw, err := c.client.Get(ctx, deliveryKey(mobileNumber, providerMessageID)).Result()
	if errors.Is(err, redis.Nil) {
		return uuid.Nil, false, nil
	}
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("lookup delivery marker: %w", err)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("parse delivery marker: %w", err)
	}
	return id, true, nil
}

// Remember records the enquiry id for the delivery. Existing markers are kept.
func (c *DeliveryCache) Remember(ctx context.Context, mobileNumber, providerMessageID string, enquiryID uuid.UUID) error {
	if c == nil {
		return nil
	}
	if err := c.client.SetNX(ctx, deliveryKey(mobileNumber, providerMessageID), enquiryID.String(), c.ttl).Err(); err != nil {
		return fmt.Errorf("store delivery marker: %w", err)
	}
	return nil
}

// Forget drops the marker so a redelivery after a delete is treated as new.
func (c *DeliveryCache) Forget(ctx context.Context, mobileNumber, providerMessageID string) error {
	if c == nil {
		return nil
	}
	if err := c.client.Del(ctx, deliveryKey(mobileNumber, providerMessageID)).Err(); err != nil {
		return fmt.Errorf("drop delivery marker: %w", err)
	}
	return nil
}
