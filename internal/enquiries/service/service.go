// Package service coordinates enquiry intake and the enquiry lifecycle:
// webhook intake, staff updates under the assignment lock, and the WhatsApp
// messages those changes trigger.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"enquiry_intake_backend/internal/enquiries/domain"
	"enquiry_intake_backend/internal/enquiries/repository"
	"enquiry_intake_backend/internal/enquiries/transport"
	"enquiry_intake_backend/internal/events"
	"enquiry_intake_backend/internal/whatsapp"
	"enquiry_intake_backend/platform/apperr"
	"enquiry_intake_backend/platform/logger"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const msgEnquiryNotFound = "Enquiry not found"

// Gateway sends WhatsApp messages and reports the instance state.
// *whatsapp.Client satisfies it, including the nil client of an unconfigured deployment.
type Gateway interface {
	Send(ctx context.Context, destination, text string) whatsapp.Result
	CheckStatus(ctx context.Context) whatsapp.Status
}

// Service provides business logic for enquiries.
type Service struct {
	repo       repository.Repository
	guard      *DeduplicationGuard
	gateway    Gateway
	bus        events.Bus
	log        *logger.Logger
	now        func() time.Time
	staffDelay time.Duration
}

// Option customises a Service.
type Option func(*Service)

// WithClock replaces time.Now, used by tests that pin the lock window.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithStaffMessageDelay sets the pause between the staff introduction messages.
func WithStaffMessageDelay(d time.Duration) Option {
	return func(s *Service) { s.staffDelay = d }
}

// New creates a new enquiries service.
func New(repo repository.Repository, cache *repository.DeliveryCache, gateway Gateway, bus events.Bus, log *logger.Logger, opts ...Option) *Service {
	s := &Service{
		repo:       repo,
		guard:      NewDeduplicationGuard(cache, repo, log),
		gateway:    gateway,
		bus:        bus,
		log:        log,
		now:        time.Now,
		staffDelay: time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetByID retrieves an enquiry by ID.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (transport.EnquiryResponse, error) {
	e, err := s.load(ctx, id)
	if err != nil {
		return transport.EnquiryResponse{}, err
	}
	return transport.ToResponse(e), nil
}

// List returns every enquiry, newest date first, annotated with the staff lock.
func (s *Service) List(ctx context.Context) (transport.EnquiryListResponse, error) {
	var (
		items  []domain.Enquiry
		status domain.StaffLockStatus
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = s.repo.List(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		status, err = s.LockStatus(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return transport.EnquiryListResponse{}, err
	}

	now := s.now()
	out := make([]transport.EnquiryListItem, 0, len(items))
	for _, e := range items {
		canAssign := domain.CanAssign(e, status, now)
		out = append(out, transport.EnquiryListItem{
			EnquiryResponse:       transport.ToResponse(e),
			StaffAssignmentLocked: !canAssign,
			CanAssignStaff:        canAssign,
			StaffDropdown:         domain.StaffDropdown(e, status, now),
		})
	}

	return transport.EnquiryListResponse{Items: out, Total: len(out), StaffLockStatus: status}, nil
}

// LockStatus recomputes the global staff assignment lock from the two counts.
func (s *Service) LockStatus(ctx context.Context) (domain.StaffLockStatus, error) {
	cutoff := s.now().Add(-domain.OldEnquiryAge)

	var oldUnassigned, assigned int
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.repo.CountOldUnassigned(gctx, cutoff)
		oldUnassigned = n
		return err
	})
	g.Go(func() error {
		n, err := s.repo.CountAssigned(gctx)
		assigned = n
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.StaffLockStatus{}, fmt.Errorf("staff lock counts: %w", err)
	}

	return domain.ComputeStatus(oldUnassigned, assigned), nil
}

// Delete removes an enquiry and the webhook delivery marker that points at it.
func (s *Service) Delete(ctx context.Context, id uuid.UUID, actor string) error {
	e, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound(msgEnquiryNotFound)
		}
		return err
	}
	if e.WhatsAppMessageID != nil {
		s.guard.Forget(ctx, e.MobileNumber, *e.WhatsAppMessageID)
	}
	s.log.Info("enquiry deleted", "enquiryId", id, "actor", actor)
	return nil
}

// Stats returns the dashboard counters.
func (s *Service) Stats(ctx context.Context) (transport.StatsResponse, error) {
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return transport.StatsResponse{}, err
	}
	return transport.StatsResponse{
		Total:       stats.Total,
		GSTYes:      stats.GSTYes,
		GSTNo:       stats.GSTNo,
		TopComments: toLabelCounts(stats.TopComments),
		TopStaff:    toLabelCounts(stats.TopStaff),
	}, nil
}

// WhatsAppStatus reports whether the gateway instance is authorised.
func (s *Service) WhatsAppStatus(ctx context.Context) whatsapp.Status {
	return s.gateway.CheckStatus(ctx)
}

func (s *Service) load(ctx context.Context, id uuid.UUID) (domain.Enquiry, error) {
	e, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.Enquiry{}, apperr.NotFound(msgEnquiryNotFound)
	}
	return e, err
}

func toLabelCounts(rows []repository.LabelCount) []transport.LabelCount {
	out := make([]transport.LabelCount, 0, len(rows))
	for _, r := range rows {
		out = append(out, transport.LabelCount{Label: r.Label, Count: r.Count})
	}
	return out
}
