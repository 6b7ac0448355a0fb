package cooldown

import (
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/creators-HiveHQ/CREATORSHIVEHQLLC-sub000/internal/tests"
)

func dbInitTracker(dbClient *sqlx.DB, t *testing.T) {
	dbDestroyTracker(dbClient, t)
	tests.DBExec(dbClient, tests.CooldownsTableV1, t, true)
}

func dbDestroyTracker(dbClient *sqlx.DB, t *testing.T) {
	tests.DBExec(dbClient, tests.CooldownsDropTableV1, t, true)
}

func TestNewPostgresTracker(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	tracker := NewPostgresTracker(tests.DBClient(t))
	if tracker == nil {
		t.Error("cooldown Tracker is nil")
	}
}

func TestPostgresTryAcquireWindow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping postgresql test in short mode")
	}
	db := tests.DBClient(t)
	defer dbDestroyTracker(db, t)
	dbInitTracker(db, t)
	tracker := NewPostgresTracker(db)

	acquired, err := tracker.TryAcquire(1, "c1", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if !acquired {
		t.Error("first acquisition should succeed")
	}

	acquired, err = tracker.TryAcquire(1, "c1", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if acquired {
		t.Error("second acquisition inside the window should be refused")
	}

	// backdate the row past the window, the next acquisition goes through
	tests.DBExec(db, `UPDATE rule_cooldowns_v1 SET last_triggered = last_triggered - interval '2 hours'`, t, true)
	acquired, err = tracker.TryAcquire(1, "c1", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if !acquired {
		t.Error("acquisition after the window elapsed should succeed")
	}

	last, found, err := tracker.LastTriggered(1, "c1")
	if err != nil {
		t.Fatal(err)
	}
	if !found {
		t.Error("pair should exist after acquisitions")
	}
	if time.Since(last) > time.Minute {
		t.Errorf("last_triggered = %v, expected a fresh timestamp", last)
	}
}

func TestPostgresTryAcquireIndependentPairs(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping postgresql test in short mode")
	}
	db := tests.DBClient(t)
	defer dbDestroyTracker(db, t)
	dbInitTracker(db, t)
	tracker := NewPostgresTracker(db)

	if acquired, _ := tracker.TryAcquire(1, "c1", time.Hour); !acquired {
		t.Error("first pair should acquire")
	}
	if acquired, _ := tracker.TryAcquire(1, "c2", time.Hour); !acquired {
		t.Error("distinct subject should acquire independently")
	}
	if acquired, _ := tracker.TryAcquire(2, "c1", time.Hour); !acquired {
		t.Error("distinct rule should acquire independently")
	}
}

func TestPostgresTryAcquireConcurrent(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping postgresql test in short mode")
	}
	db := tests.DBClient(t)
	defer dbDestroyTracker(db, t)
	dbInitTracker(db, t)
	tracker := NewPostgresTracker(db)

	var wg sync.WaitGroup
	successes := make(chan bool, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			acquired, err := tracker.TryAcquire(7, "c1", time.Hour)
			if err != nil {
				t.Error(err)
				return
			}
			successes <- acquired
		}()
	}
	wg.Wait()
	close(successes)

	count := 0
	for acquired := range successes {
		if acquired {
			count++
		}
	}
	if count != 1 {
		t.Errorf("%d concurrent acquisitions succeeded, expected exactly 1", count)
	}
}
