package cooldown

import (
	"sync"
	"testing"
	"time"
)

func TestTryAcquireWindow(t *testing.T) {
	tracker := NewInMemoryTracker()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	tracker.SetClock(func() time.Time { return now })

	ok, err := tracker.TryAcquire(1, "c1", 24*time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("first acquisition should succeed")
	}

	now = now.Add(time.Hour)
	if ok, _ = tracker.TryAcquire(1, "c1", 24*time.Hour); ok {
		t.Error("acquisition inside the window should fail")
	}

	last, found, _ := tracker.LastTriggered(1, "c1")
	if !found || !last.Equal(now.Add(-time.Hour)) {
		t.Error("rejected acquisition must not mutate last_triggered")
	}

	now = now.Add(24 * time.Hour)
	if ok, _ = tracker.TryAcquire(1, "c1", 24*time.Hour); !ok {
		t.Error("acquisition after the window elapsed should succeed")
	}
}

func TestTryAcquireZeroCooldown(t *testing.T) {
	tracker := NewInMemoryTracker()
	for i := 0; i < 3; i++ {
		ok, err := tracker.TryAcquire(1, "c1", 0)
		if err != nil {
			t.Fatal(err)
		}
		if !ok {
			t.Fatalf("zero cooldown acquisition %d should succeed", i)
		}
	}
}

func TestTryAcquireIndependentPairs(t *testing.T) {
	tracker := NewInMemoryTracker()
	if ok, _ := tracker.TryAcquire(1, "c1", time.Hour); !ok {
		t.Fatal("rule 1 / c1 should acquire")
	}
	if ok, _ := tracker.TryAcquire(1, "c2", time.Hour); !ok {
		t.Error("rule 1 / c2 is an independent pair")
	}
	if ok, _ := tracker.TryAcquire(2, "c1", time.Hour); !ok {
		t.Error("rule 2 / c1 is an independent pair")
	}
}

func TestTryAcquireConcurrent(t *testing.T) {
	tracker := NewInMemoryTracker()

	const workers = 64
	var wg sync.WaitGroup
	var mu sync.Mutex
	acquired := 0

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := tracker.TryAcquire(1, "c1", time.Hour)
			if err != nil {
				t.Error(err)
				return
			}
			if ok {
				mu.Lock()
				acquired++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if acquired != 1 {
		t.Errorf("expected exactly one successful acquisition, got %d", acquired)
	}
}
