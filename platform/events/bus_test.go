package events

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"enquiry_intake_backend/platform/logger"
)

type pinged struct{ BaseEvent }

func (pinged) EventName() string { return "test.pinged" }

func TestPublishRunsHandlersDetachedFromCaller(t *testing.T) {
	bus := NewInMemoryBus(logger.New("development"))

	var calls atomic.Int32
	var sawCancelled atomic.Bool
	bus.Subscribe("test.pinged", HandlerFunc(func(ctx context.Context, _ Event) error {
		if ctx.Err() != nil {
			sawCancelled.Store(true)
		}
		calls.Add(1)
		return nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	bus.Publish(ctx, pinged{NewBaseEvent()})
	bus.Wait()

	if calls.Load() != 1 {
		t.Fatalf("expected 1 handler call, got %d", calls.Load())
	}
	if sawCancelled.Load() {
		t.Fatal("handler context must not inherit the caller's cancellation")
	}
}

func TestPublishSyncStopsOnFirstError(t *testing.T) {
	bus := NewInMemoryBus(logger.New("development"))
	boom := errors.New("boom")

	second := false
	bus.Subscribe("test.pinged", HandlerFunc(func(context.Context, Event) error { return boom }))
	bus.Subscribe("test.pinged", HandlerFunc(func(context.Context, Event) error {
		second = true
		return nil
	}))

	err := bus.PublishSync(context.Background(), pinged{NewBaseEvent()})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if second {
		t.Fatal("second handler must not run after a failure")
	}
}

func TestPublishRecoversFromPanics(t *testing.T) {
	bus := NewInMemoryBus(logger.New("development"))
	bus.Subscribe("test.pinged", HandlerFunc(func(context.Context, Event) error { panic("nope") }))

	bus.Publish(context.Background(), pinged{NewBaseEvent()})
	bus.Wait()
}

func TestNewBaseEventIsStamped(t *testing.T) {
	a, b := NewBaseEvent(), NewBaseEvent()
	if a.EventID() == "" || a.EventID() == b.EventID() {
		t.Fatalf("expected distinct ids, got %q and %q", a.EventID(), b.EventID())
	}
	if a.OccurredAt().Location() != time.UTC {
		t.Fatal("expected UTC timestamp")
	}
}
