package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/creators-HiveHQ/CREATORSHIVEHQLLC-sub000/internal/cooldown"
	"github.com/creators-HiveHQ/CREATORSHIVEHQLLC-sub000/internal/dispatcher"
	"github.com/creators-HiveHQ/CREATORSHIVEHQLLC-sub000/internal/event"
	"github.com/creators-HiveHQ/CREATORSHIVEHQLLC-sub000/internal/execution"
	"github.com/creators-HiveHQ/CREATORSHIVEHQLLC-sub000/internal/rule"
	"github.com/creators-HiveHQ/CREATORSHIVEHQLLC-sub000/internal/subject"
	"github.com/creators-HiveHQ/CREATORSHIVEHQLLC-sub000/internal/tests"
)

type stubExecutor struct {
	err   error
	calls int
}

func (e *stubExecutor) Execute(ctx context.Context, params map[string]interface{}, dctx dispatcher.Context) error {
	e.calls++
	return e.err
}

type failingExecutionRepository struct {
	*execution.InMemoryRepository
}

func (r *failingExecutionRepository) Create(record execution.Record) (string, error) {
	return "", errors.New("storage unavailable")
}

type fixture struct {
	engine    *Engine
	clock     *time.Time
	events    *event.InMemoryRepository
	rules     *rule.InMemoryRepository
	records   *execution.InMemoryRepository
	snapshots *subject.InMemoryProvider
	executor  *stubExecutor
}

func setup(t *testing.T) *fixture {
	t.Helper()
	tests.CheckDebugLogs(t)

	now := time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	events := event.NewInMemoryRepository()
	events.SetClock(clock)
	t.Cleanup(event.ReplaceGlobals(events))

	rules := rule.NewInMemoryRepository()
	t.Cleanup(rule.ReplaceGlobals(rules))

	records := execution.NewInMemoryRepository()
	t.Cleanup(execution.ReplaceGlobals(records))

	tracker := cooldown.NewInMemoryTracker()
	tracker.SetClock(clock)
	t.Cleanup(cooldown.ReplaceGlobals(tracker))

	snapshots := subject.NewInMemoryProvider()
	t.Cleanup(subject.ReplaceGlobals(snapshots))

	executor := &stubExecutor{}
	d := dispatcher.NewDispatcher(0)
	d.RegisterExecutor("notify_admin", executor)
	t.Cleanup(dispatcher.ReplaceGlobals(d))

	e := NewEngine(10, 1)
	e.SetClock(clock)

	return &fixture{engine: e, clock: &now, events: events, rules: rules,
		records: records, snapshots: snapshots, executor: executor}
}

func (f *fixture) seedRule(t *testing.T, r rule.Rule) int64 {
	t.Helper()
	id, err := f.rules.Create(r)
	if err != nil {
		t.Fatal(err)
	}
	return id
}

func (f *fixture) appendEvent(t *testing.T, eventType string, subjectID string) string {
	t.Helper()
	id, err := f.events.Create(event.Event{
		EventType:    eventType,
		SourceEntity: "proposal",
		SubjectID:    subjectID,
		Timestamp:    *f.clock,
	})
	if err != nil {
		t.Fatal(err)
	}
	return id
}

func (f *fixture) mustGetEvent(t *testing.T, id string) event.Event {
	t.Helper()
	ev, found, err := f.events.Get(id)
	if err != nil || !found {
		t.Fatalf("event %s: found=%v err=%v", id, found, err)
	}
	return ev
}

func (f *fixture) recordCount(t *testing.T) int {
	t.Helper()
	records, err := f.records.List(execution.Filter{}, 100, 0)
	if err != nil {
		t.Fatal(err)
	}
	return len(records)
}

func TestProcessEventCooldownSuppression(t *testing.T) {
	f := setup(t)
	f.seedRule(t, rule.Rule{
		Name:          "proposal watcher",
		TriggerType:   "proposal.",
		Actions:       []rule.Action{{Type: "notify_admin"}},
		CooldownHours: 24,
		IsActive:      true,
	})
	f.snapshots.Set("c1", map[string]interface{}{"tier": "pro"})

	first := f.appendEvent(t, "proposal.approved", "c1")
	if err := f.engine.processEvent(context.Background(), first); err != nil {
		t.Fatal(err)
	}
	if f.recordCount(t) != 1 {
		t.Fatalf("expected 1 execution record, got %d", f.recordCount(t))
	}
	if ev := f.mustGetEvent(t, first); ev.Status != event.StatusCompleted {
		t.Errorf("status = %s", ev.Status)
	}

	// one hour later, inside the window: suppressed, no record, still completed
	*f.clock = f.clock.Add(time.Hour)
	second := f.appendEvent(t, "proposal.rejected", "c1")
	if err := f.engine.processEvent(context.Background(), second); err != nil {
		t.Fatal(err)
	}
	if f.recordCount(t) != 1 {
		t.Errorf("suppressed trigger must not append a record, got %d", f.recordCount(t))
	}
	ev := f.mustGetEvent(t, second)
	if ev.Status != event.StatusCompleted {
		t.Errorf("suppression is not an error, status = %s", ev.Status)
	}
	if len(ev.ActionResults) != 0 {
		t.Errorf("suppressed trigger must not collect results: %v", ev.ActionResults)
	}

	// past the window: fires again
	*f.clock = f.clock.Add(25 * time.Hour)
	third := f.appendEvent(t, "proposal.approved", "c1")
	if err := f.engine.processEvent(context.Background(), third); err != nil {
		t.Fatal(err)
	}
	if f.recordCount(t) != 2 {
		t.Errorf("expected 2 execution records, got %d", f.recordCount(t))
	}
	if f.executor.calls != 2 {
		t.Errorf("executor calls = %d", f.executor.calls)
	}
}

func TestProcessEventReplayIsIdempotent(t *testing.T) {
	f := setup(t)
	f.seedRule(t, rule.Rule{
		Name:          "welcome",
		TriggerType:   "creator.registered",
		Actions:       []rule.Action{{Type: "notify_admin"}},
		CooldownHours: 24,
		IsActive:      true,
	})

	id := f.appendEvent(t, "creator.registered", "c1")
	if err := f.engine.processEvent(context.Background(), id); err != nil {
		t.Fatal(err)
	}
	if err := f.events.Requeue(id); err != nil {
		t.Fatal(err)
	}
	if err := f.engine.processEvent(context.Background(), id); err != nil {
		t.Fatal(err)
	}

	if f.recordCount(t) != 1 {
		t.Errorf("replay within the cooldown window must not re-dispatch, got %d records", f.recordCount(t))
	}
	if f.executor.calls != 1 {
		t.Errorf("executor calls = %d", f.executor.calls)
	}
	if ev := f.mustGetEvent(t, id); ev.Status != event.StatusCompleted {
		t.Errorf("status = %s", ev.Status)
	}
}

func TestProcessEventPartialActionFailure(t *testing.T) {
	f := setup(t)
	failing := &stubExecutor{err: errors.New("smtp unavailable")}
	d := dispatcher.NewDispatcher(0)
	d.RegisterExecutor("notify_admin", f.executor)
	d.RegisterExecutor("send_email", failing)
	t.Cleanup(dispatcher.ReplaceGlobals(d))

	f.seedRule(t, rule.Rule{
		Name:        "escalation",
		TriggerType: "subscription.cancelled",
		Actions: []rule.Action{
			{Type: "notify_admin"},
			{Type: "send_email"},
			{Type: "notify_admin"},
		},
		IsActive: true,
	})

	id := f.appendEvent(t, "subscription.cancelled", "c1")
	if err := f.engine.processEvent(context.Background(), id); err != nil {
		t.Fatal(err)
	}

	records, err := f.records.List(execution.Filter{}, 10, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	outcomes := records[0].ActionsExecuted
	if len(outcomes) != 3 {
		t.Fatalf("expected 3 outcomes, got %d", len(outcomes))
	}
	if !outcomes[0].Success || outcomes[1].Success || !outcomes[2].Success {
		t.Errorf("expected [success, failed, success], got %+v", outcomes)
	}
	if ev := f.mustGetEvent(t, id); ev.Status != event.StatusCompleted {
		t.Errorf("action failures must not fail the event, status = %s", ev.Status)
	}
}

func TestProcessEventInfrastructureFailure(t *testing.T) {
	f := setup(t)
	t.Cleanup(execution.ReplaceGlobals(&failingExecutionRepository{f.records}))

	f.seedRule(t, rule.Rule{
		Name:        "audited",
		TriggerType: "proposal.approved",
		Actions:     []rule.Action{{Type: "notify_admin"}},
		IsActive:    true,
	})

	id := f.appendEvent(t, "proposal.approved", "c1")
	if err := f.engine.processEvent(context.Background(), id); err == nil {
		t.Fatal("expected an infrastructure error")
	}

	ev := f.mustGetEvent(t, id)
	if ev.Status != event.StatusFailed {
		t.Errorf("status = %s", ev.Status)
	}
	if ev.ErrorMessage == "" {
		t.Error("failed event must carry the error")
	}
}

func TestProcessEventNoMatchingRule(t *testing.T) {
	f := setup(t)
	f.seedRule(t, rule.Rule{
		Name:        "other domain",
		TriggerType: "subscription.",
		Actions:     []rule.Action{{Type: "notify_admin"}},
		IsActive:    true,
	})

	id := f.appendEvent(t, "proposal.approved", "c1")
	if err := f.engine.processEvent(context.Background(), id); err != nil {
		t.Fatal(err)
	}
	if f.recordCount(t) != 0 {
		t.Errorf("no rule should have fired, got %d records", f.recordCount(t))
	}
	if ev := f.mustGetEvent(t, id); ev.Status != event.StatusCompleted {
		t.Errorf("status = %s", ev.Status)
	}
}

func TestQueueBackpressure(t *testing.T) {
	setup(t)
	e := NewEngine(1, 1)

	if err := e.Queue("first"); err != nil {
		t.Fatal(err)
	}
	if err := e.Queue("second"); !errors.Is(err, ErrQueueFull) {
		t.Errorf("expected ErrQueueFull, got %v", err)
	}
}

func TestQueueAfterStop(t *testing.T) {
	f := setup(t)
	f.engine.Start()
	f.engine.Stop()
	if err := f.engine.Queue("late"); !errors.Is(err, ErrEngineStopped) {
		t.Errorf("expected ErrEngineStopped, got %v", err)
	}
}

func TestStartRequeuesStuckProcessingEvents(t *testing.T) {
	f := setup(t)
	f.seedRule(t, rule.Rule{
		Name:        "stuck recovery",
		TriggerType: "proposal.approved",
		Actions:     []rule.Action{{Type: "notify_admin"}},
		IsActive:    true,
	})

	id := f.appendEvent(t, "proposal.approved", "c1")
	if err := f.events.MarkProcessing(id); err != nil {
		t.Fatal(err)
	}

	f.engine.Start()
	f.engine.Stop()

	if ev := f.mustGetEvent(t, id); ev.Status != event.StatusCompleted {
		t.Errorf("stuck event must be reprocessed, status = %s", ev.Status)
	}
	if f.recordCount(t) != 1 {
		t.Errorf("expected 1 record, got %d", f.recordCount(t))
	}
}

func TestForceTrigger(t *testing.T) {
	f := setup(t)
	ruleID := f.seedRule(t, rule.Rule{
		Name:          "manual",
		TriggerType:   "proposal.approved",
		Actions:       []rule.Action{{Type: "notify_admin"}},
		CooldownHours: 24,
		IsActive:      true,
	})

	record, err := f.engine.ForceTrigger(context.Background(), ruleID, "c1")
	if err != nil {
		t.Fatal(err)
	}
	if record.RuleID != ruleID || record.SubjectID != "c1" {
		t.Errorf("record = %+v", record)
	}
	if f.executor.calls != 1 {
		t.Errorf("executor calls = %d", f.executor.calls)
	}

	// the cooldown gate also guards manual triggers
	if _, err := f.engine.ForceTrigger(context.Background(), ruleID, "c1"); !errors.Is(err, ErrCooldownActive) {
		t.Errorf("expected ErrCooldownActive, got %v", err)
	}

	if _, err := f.engine.ForceTrigger(context.Background(), 9999, "c1"); !errors.Is(err, ErrRuleNotFound) {
		t.Errorf("expected ErrRuleNotFound, got %v", err)
	}

	events, err := f.events.List(event.Filter{EventType: "rule.force_triggered"}, 10, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 || events[0].Status != event.StatusCompleted {
		t.Errorf("force trigger must be traced in the ledger: %+v", events)
	}
}
