package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"enquiry_intake_backend/internal/enquiries/domain"
	"enquiry_intake_backend/internal/enquiries/transport"
	"enquiry_intake_backend/platform/logger"
)

func TestStaffIntroductionSpacing(t *testing.T) {
	const delay = 20 * time.Millisecond
	e := enquiry(domain.SystemWhatsAppBot, false, time.Hour)
	gw := &fakeGateway{}
	svc := New(newFakeRepo(e), nil, gw, &recordingBus{}, logger.New("development"),
		WithClock(func() time.Time { return testNow }),
		WithStaffMessageDelay(delay),
	)

	if _, err := svc.Update(context.Background(), e.ID, transport.UpdateEnquiryRequest{Staff: strPtr("Priya")}, "priya"); err != nil {
		t.Fatalf("update: %v", err)
	}

	sent := gw.messages()
	if len(sent) != 3 {
		t.Fatalf("expected 3 sends, got %d", len(sent))
	}
	for i := 1; i < len(sent); i++ {
		if gap := sent[i].at.Sub(sent[i-1].at); gap < delay {
			t.Fatalf("send %d followed the previous one after %v, want at least %v", i+1, gap, delay)
		}
	}
}

func TestStaffIntroductionStopsOnCancel(t *testing.T) {
	e := enquiry("Priya", false, time.Hour)
	gw := &fakeGateway{}
	svc := New(newFakeRepo(e), nil, gw, &recordingBus{}, logger.New("development"),
		WithStaffMessageDelay(time.Hour),
	)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcome, sent := svc.sendStaffIntroduction(ctx, e)
	if sent != 1 || len(gw.messages()) != 1 {
		t.Fatalf("expected only the first message, sent=%d gateway=%d", sent, len(gw.messages()))
	}
	if outcome.WhatsAppSent == nil || *outcome.WhatsAppSent || outcome.WhatsAppError == nil {
		t.Fatalf("expected a failed outcome, got %+v", outcome)
	}
}

func TestSleep(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := sleep(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Fatalf("cancelled sleep = %v, want context.Canceled", err)
	}
	if err := sleep(ctx, 0); !errors.Is(err, context.Canceled) {
		t.Fatalf("zero sleep on cancelled ctx = %v, want context.Canceled", err)
	}
	if err := sleep(context.Background(), time.Millisecond); err != nil {
		t.Fatalf("sleep: %v", err)
	}
}
