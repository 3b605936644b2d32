package scheduler

import (
	"sync"
	"testing"
	"time"
)

func TestEngineConcurrentScheduleAndCancel(t *testing.T) {
	engine := NewEngine(4096)
	engine.Start()
	defer engine.Stop()

	const workers = 8
	const perWorker = 200
	total := workers * perWorker

	now := time.Now()
	var wg sync.WaitGroup
	for w := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range perWorker {
				delay := time.Duration((w+i)%50+10) * time.Millisecond
				kind := KindFetch
				if i%2 == 1 {
					kind = KindProbe
				}
				if err := engine.Schedule(Event{Kind: kind, At: now.Add(delay)}); err != nil {
					t.Errorf("schedule failed: %v", err)
					return
				}
				// Rollover events are cancelled as fast as they are added.
				_ = engine.Schedule(Event{Kind: KindRollover, At: now.Add(time.Hour)})
				engine.Cancel(KindRollover)
			}
		}()
	}
	wg.Wait()
	engine.Cancel(KindRollover)

	deadline := time.After(5 * time.Second)
	counts := map[Kind]int{}
	for received := 0; received < total; received++ {
		select {
		case <-deadline:
			t.Fatalf("timeout waiting events: received=%d total=%d dropped=%d", received, total, engine.Dropped())
		case ev := <-engine.C():
			counts[ev.Kind]++
		}
	}

	if counts[KindFetch] != total/2 || counts[KindProbe] != total/2 || counts[KindRollover] != 0 {
		t.Fatalf("unexpected kinds: %v", counts)
	}
	if engine.Dropped() != 0 {
		t.Fatalf("expected zero drops with active consumer, got=%d", engine.Dropped())
	}
}
