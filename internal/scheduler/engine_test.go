package scheduler

import (
	"testing"
	"time"
)

func TestEngineEmitsInTriggerOrder(t *testing.T) {
	engine := NewEngine(8)
	engine.Start()
	defer engine.Stop()

	now := time.Now()
	if err := engine.Schedule(Event{Kind: KindFetch, At: now.Add(80 * time.Millisecond)}); err != nil {
		t.Fatalf("schedule later: %v", err)
	}
	if err := engine.Schedule(Event{Kind: KindRollover, At: now.Add(20 * time.Millisecond)}); err != nil {
		t.Fatalf("schedule sooner: %v", err)
	}

	first := waitEvent(t, engine.C(), time.Second)
	second := waitEvent(t, engine.C(), time.Second)
	if first.Kind != KindRollover || second.Kind != KindFetch {
		t.Fatalf("unexpected order: first=%s second=%s", first.Kind, second.Kind)
	}
}

func TestEngineNonBlockingDropsWhenConsumerIsSlow(t *testing.T) {
	engine := NewEngine(1)
	engine.Start()
	defer engine.Stop()

	at := time.Now().Add(20 * time.Millisecond)
	for i := 0; i < 25; i++ {
		if err := engine.Schedule(Event{Kind: KindProbe, At: at}); err != nil {
			t.Fatalf("schedule event: %v", err)
		}
	}

	time.Sleep(120 * time.Millisecond)
	if engine.Dropped() == 0 {
		t.Fatalf("expected dropped events > 0, got %d", engine.Dropped())
	}
}

func TestRescheduleReplacesPendingKind(t *testing.T) {
	engine := NewEngine(4)
	engine.Start()
	defer engine.Stop()

	far := time.Now().Add(time.Hour)
	for i := 0; i < 3; i++ {
		if err := engine.Schedule(Event{Kind: KindFetch, At: far}); err != nil {
			t.Fatalf("schedule: %v", err)
		}
	}
	if err := engine.Schedule(Event{Kind: KindRollover, At: far}); err != nil {
		t.Fatalf("schedule rollover: %v", err)
	}
	if err := engine.Reschedule(Event{Kind: KindFetch, At: time.Now().Add(10 * time.Millisecond)}); err != nil {
		t.Fatalf("reschedule: %v", err)
	}
	if got := engine.Pending(); got != 2 {
		t.Fatalf("expected 2 pending events, got %d", got)
	}
	if ev := waitEvent(t, engine.C(), time.Second); ev.Kind != KindFetch {
		t.Fatalf("unexpected event %s", ev.Kind)
	}
}

func TestScheduleValidatesTriggerTime(t *testing.T) {
	engine := NewEngine(1)
	if err := engine.Schedule(Event{Kind: KindFetch}); err != ErrInvalidTriggerTime {
		t.Fatalf("expected ErrInvalidTriggerTime, got %v", err)
	}
}

func TestScheduleAfterStopFails(t *testing.T) {
	engine := NewEngine(1)
	engine.Start()
	engine.Stop()
	if err := engine.Schedule(Event{Kind: KindFetch, At: time.Now()}); err != ErrStopped {
		t.Fatalf("expected ErrStopped, got %v", err)
	}
}

func TestNextMidnight(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*60*60)
	now := time.Date(2024, 12, 31, 23, 59, 0, 0, loc)
	got := NextMidnight(now, loc)
	if want := time.Date(2025, 1, 1, 0, 0, 0, 0, loc); !got.Equal(want) {
		t.Fatalf("NextMidnight = %s, want %s", got, want)
	}
}

func waitEvent(t *testing.T, ch <-chan Event, timeout time.Duration) Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(timeout):
		t.Fatalf("timed out waiting for event")
		return Event{}
	}
}
