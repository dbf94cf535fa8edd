package events

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type pingEvent struct {
	BaseEvent
}

func (pingEvent) EventName() string { return "test.ping" }

type handlerFunc func(ctx context.Context, event Event) error

func (f handlerFunc) Handle(ctx context.Context, event Event) error { return f(ctx, event) }

func TestPublishSyncRunsHandlersInOrderAndJoinsErrors(t *testing.T) {
	bus := NewInMemoryBus(nil)
	var order []int
	boom := errors.New("boom")

	bus.Subscribe("test.ping", handlerFunc(func(context.Context, Event) error {
		order = append(order, 1)
		return boom
	}))
	bus.Subscribe("test.ping", handlerFunc(func(context.Context, Event) error {
		order = append(order, 2)
		return nil
	}))

	err := bus.PublishSync(context.Background(), pingEvent{BaseEvent: NewBaseEventAt(time.Now())})
	if !errors.Is(err, boom) {
		t.Fatalf("expected joined error to contain boom, got %v", err)
	}
	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Fatalf("unexpected handler order %v", order)
	}
}

func TestPublishSurvivesCancelledContextAndPanics(t *testing.T) {
	bus := NewInMemoryBus(nil)
	var calls atomic.Int32

	bus.Subscribe("test.ping", handlerFunc(func(ctx context.Context, _ Event) error {
		if ctx.Err() != nil {
			t.Errorf("handler context should be detached, got %v", ctx.Err())
		}
		calls.Add(1)
		return nil
	}))
	bus.Subscribe("test.ping", handlerFunc(func(context.Context, Event) error {
		calls.Add(1)
		panic("handler exploded")
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	bus.Publish(ctx, pingEvent{BaseEvent: BaseEvent{Timestamp: time.Now()}})
	bus.Wait()

	if got := calls.Load(); got != 2 {
		t.Fatalf("expected 2 handler calls, got %d", got)
	}
}

func TestNewBaseEventAtNormalisesToUTC(t *testing.T) {
	at := time.Date(2026, 3, 1, 9, 30, 0, 0, time.FixedZone("BRT", -3*60*60))
	got := NewBaseEventAt(at).OccurredAt()
	if got.Location() != time.UTC || !got.Equal(at) {
		t.Fatalf("expected %v in UTC, got %v", at, got)
	}
}

func TestPublishWithoutSubscribersIsNoop(t *testing.T) {
	bus := NewInMemoryBus(nil)
	if err := bus.PublishSync(context.Background(), pingEvent{}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}
