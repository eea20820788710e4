package service

import (
	"context"
	"errors"

	"enquiry_intake_backend/internal/enquiries/repository"
	"enquiry_intake_backend/platform/logger"

	"github.com/google/uuid"
)

// DeduplicationGuard answers whether a provider delivery already produced an
// enquiry. The Redis marker is consulted first, the enquiries table second.
// The unique index behind InsertIfAbsent remains the final word.
type DeduplicationGuard struct {
	cache  *repository.DeliveryCache
	reader repository.EnquiryReader
	log    *logger.Logger
}

func NewDeduplicationGuard(cache *repository.DeliveryCache, reader repository.EnquiryReader, log *logger.Logger) *DeduplicationGuard {
	return &DeduplicationGuard{cache: cache, reader: reader, log: log}
}

// IsDuplicate returns the existing enquiry id for the delivery. Deliveries
// without a provider message id are never duplicates.
func (g *DeduplicationGuard) IsDuplicate(ctx context.Context, mobileNumber, providerMessageID string) (uuid.UUID, bool, error) {
	if providerMessageID == "" || mobileNumber == "" {
		return uuid.Nil, false, nil
	}

	id, ok, err := g.cache.Lookup(ctx, mobileNumber, providerMessageID)
	if err != nil {
		g.log.Warn("delivery marker lookup failed", "mobile", mobileNumber, "error", err)
	} else if ok {
		return id, true, nil
	}

	existing, err := g.reader.FindByDedupKey(ctx, mobileNumber, providerMessageID)
	if errors.Is(err, repository.ErrNotFound) {
		return uuid.Nil, false, nil
	}
	if err != nil {
		return uuid.Nil, false, err
	}

	g.Remember(ctx, mobileNumber, providerMessageID, existing.ID)
	return existing.ID, true, nil
}

// Remember stores the delivery marker. Failures only cost a database read later.
func (g *DeduplicationGuard) Remember(ctx context.Context, mobileNumber, providerMessageID string, enquiryID uuid.UUID) {
	if providerMessageID == "" {
		return
	}
	if err := g.cache.Remember(ctx, mobileNumber, providerMessageID, enquiryID); err != nil {
		g.log.Warn("delivery marker store failed", "mobile", mobileNumber, "error", err)
	}
}

// Forget drops the marker of a deleted enquiry. Failures are logged; the
// marker then lingers until its TTL.
func (g *DeduplicationGuard) Forget(ctx context.Context, mobileNumber, providerMessageID string) {
	if providerMessageID == "" {
		return
	}
	if err := g.cache.Forget(ctx, mobileNumber, providerMessageID); err != nil {
		g.log.Warn("delivery marker drop failed", "mobile", mobileNumber, "error", err)
	}
}
