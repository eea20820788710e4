package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"enquiry_intake_backend/internal/enquiries/domain"
	"enquiry_intake_backend/internal/enquiries/repository"
	"enquiry_intake_backend/internal/events"
	"enquiry_intake_backend/internal/whatsapp"
	"enquiry_intake_backend/platform/logger"

	"github.com/google/uuid"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

type fakeRepo struct {
	mu        sync.Mutex
	rows      map[uuid.UUID]domain.Enquiry
	insertErr error
	dedupErr  error
}

func newFakeRepo(rows ...domain.Enquiry) *fakeRepo {
	r := &fakeRepo{rows: map[uuid.UUID]domain.Enquiry{}}
	for _, e := range rows {
		if e.ID == uuid.Nil {
			e.ID = uuid.New()
		}
		r.rows[e.ID] = e
	}
	return r
}

func (r *fakeRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}

func (r *fakeRepo) FindByID(_ context.Context, id uuid.UUID) (domain.Enquiry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.rows[id]
	if !ok {
		return domain.Enquiry{}, repository.ErrNotFound
	}
	return e, nil
}

func (r *fakeRepo) FindByDedupKey(_ context.Context, mobileNumber, providerMessageID string) (domain.Enquiry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.dedupErr != nil {
		return domain.Enquiry{}, r.dedupErr
	}
	return r.findByKeyLocked(mobileNumber, providerMessageID)
}

func (r *fakeRepo) findByKeyLocked(mobileNumber, providerMessageID string) (domain.Enquiry, error) {
	for _, e := range r.rows {
		if e.MobileNumber == mobileNumber && e.WhatsAppMessageID != nil && *e.WhatsAppMessageID == providerMessageID {
			return e, nil
		}
	}
	return domain.Enquiry{}, repository.ErrNotFound
}

func (r *fakeRepo) List(_ context.Context) ([]domain.Enquiry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Enquiry, 0, len(r.rows))
	for _, e := range r.rows {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (r *fakeRepo) Stats(_ context.Context) (repository.Stats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stats := repository.Stats{Total: len(r.rows)}
	for _, e := range r.rows {
		switch e.GST {
		case domain.GSTYes:
			stats.GSTYes++
		case domain.GSTNo:
			stats.GSTNo++
		}
	}
	return stats, nil
}

func (r *fakeRepo) InsertIfAbsent(ctx context.Context, e domain.Enquiry) (domain.Enquiry, bool, error) {
	r.mu.Lock()
	if r.insertErr != nil {
		r.mu.Unlock()
		return domain.Enquiry{}, false, r.insertErr
	}
	if e.WhatsAppMessageID != nil {
		if existing, err := r.findByKeyLocked(e.MobileNumber, *e.WhatsAppMessageID); err == nil {
			r.mu.Unlock()
			return existing, false, nil
		}
	}
	r.mu.Unlock()
	stored, err := r.Create(ctx, e)
	return stored, err == nil, err
}

func (r *fakeRepo) Create(_ context.Context, e domain.Enquiry) (domain.Enquiry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.insertErr != nil {
		return domain.Enquiry{}, r.insertErr
	}
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	r.rows[e.ID] = e
	return e, nil
}

func (r *fakeRepo) UpdateByID(_ context.Context, id uuid.UUID, p repository.UpdateParams) (domain.Enquiry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.rows[id]
	if !ok {
		return domain.Enquiry{}, repository.ErrNotFound
	}
	if p.Date != nil {
		e.Date = *p.Date
	}
	if p.DisplayName != nil {
		e.DisplayName = *p.DisplayName
	}
	if p.UserName.Set {
		e.UserName = p.UserName.Value
	}
	if p.MobileNumber != nil {
		e.MobileNumber = *p.MobileNumber
	}
	if p.SecondaryMobileNumber.Set {
		e.SecondaryMobileNumber = p.SecondaryMobileNumber.Value
	}
	if p.GST != nil {
		e.GST = *p.GST
	}
	if p.GSTStatus.Set {
		e.GSTStatus = p.GSTStatus.Value
	}
	if p.BusinessType.Set {
		e.BusinessType = p.BusinessType.Value
	}
	if p.BusinessNature.Set {
		e.BusinessNature = p.BusinessNature.Value
	}
	if p.Staff != nil {
		e.Staff = *p.Staff
	}
	if p.StaffLocked != nil {
		e.StaffLocked = *p.StaffLocked
	}
	if p.Comments.Set {
		e.Comments = p.Comments.Value
	}
	if p.AdditionalComments.Set {
		e.AdditionalComments = p.AdditionalComments.Value
	}
	e.UpdatedBy = p.UpdatedBy
	r.rows[id] = e
	return e, nil
}

func (r *fakeRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.rows, id)
	return nil
}

func (r *fakeRepo) CountOldUnassigned(_ context.Context, cutoff time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.rows {
		if e.Date.Before(cutoff) && !e.Staff.IsHuman() {
			n++
		}
	}
	return n, nil
}

func (r *fakeRepo) CountAssigned(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.rows {
		if e.Staff.IsHuman() {
			n++
		}
	}
	return n, nil
}

type sentMessage struct {
	destination string
	text        string
	at          time.Time
}

type fakeGateway struct {
	mu      sync.Mutex
	sent    []sentMessage
	results []whatsapp.Result
	status  whatsapp.Status
}

func (g *fakeGateway) Send(_ context.Context, destination, text string) whatsapp.Result {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sent = append(g.sent, sentMessage{destination: destination, text: text, at: time.Now()})
	if len(g.results) > 0 {
		r := g.results[0]
		g.results = g.results[1:]
		return r
	}
	return whatsapp.Result{Success: true, ProviderMessageID: fmt.Sprintf("out-%d", len(g.sent)), StatusCode: 200}
}

func (g *fakeGateway) CheckStatus(context.Context) whatsapp.Status {
	return g.status
}

func (g *fakeGateway) messages() []sentMessage {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]sentMessage(nil), g.sent...)
}

type recordingBus struct {
	mu     sync.Mutex
	events []events.Event
}

func (b *recordingBus) Publish(_ context.Context, event events.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
}

func (b *recordingBus) PublishSync(ctx context.Context, event events.Event) error {
	b.Publish(ctx, event)
	return nil
}

func (b *recordingBus) Subscribe(string, events.Handler) {}

func (b *recordingBus) named(name string) []events.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []events.Event
	for _, e := range b.events {
		if e.EventName() == name {
			out = append(out, e)
		}
	}
	return out
}

func newTestService(repo *fakeRepo, gw *fakeGateway, bus *recordingBus, cache *repository.DeliveryCache) *Service {
	return New(repo, cache, gw, bus, logger.New("development"),
		WithClock(func() time.Time { return testNow }),
		WithStaffMessageDelay(0),
	)
}

func strPtr(s string) *string { return &s }
