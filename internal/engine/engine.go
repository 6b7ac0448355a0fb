package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/creators-HiveHQ/CREATORSHIVEHQLLC-sub000/internal/cooldown"
	"github.com/creators-HiveHQ/CREATORSHIVEHQLLC-sub000/internal/dispatcher"
	"github.com/creators-HiveHQ/CREATORSHIVEHQLLC-sub000/internal/evaluator"
	"github.com/creators-HiveHQ/CREATORSHIVEHQLLC-sub000/internal/event"
	"github.com/creators-HiveHQ/CREATORSHIVEHQLLC-sub000/internal/execution"
	"github.com/creators-HiveHQ/CREATORSHIVEHQLLC-sub000/internal/metrics"
	"github.com/creators-HiveHQ/CREATORSHIVEHQLLC-sub000/internal/rule"
	"github.com/creators-HiveHQ/CREATORSHIVEHQLLC-sub000/internal/subject"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	// ErrQueueFull is returned by Queue when the bounded event queue is at
	// capacity. The caller keeps the event in pending and may retry.
	ErrQueueFull = errors.New("engine queue is full")
	// ErrEngineStopped is returned by Queue after Stop
	ErrEngineStopped = errors.New("engine is stopped")
	// ErrCooldownActive is returned by ForceTrigger while the rule cooldown
	// window has not elapsed for the subject
	ErrCooldownActive = errors.New("rule cooldown window has not elapsed")
	// ErrRuleNotFound is returned by ForceTrigger on an unknown or disabled rule
	ErrRuleNotFound = errors.New("rule not found or disabled")
)

var (
	_globalEngineMu sync.RWMutex
	_globalEngine   *Engine
)

// E is used to access the global engine singleton
func E() *Engine {
	_globalEngineMu.RLock()
	defer _globalEngineMu.RUnlock()

	engine := _globalEngine
	return engine
}

// ReplaceGlobals affect a new engine to the global engine singleton
func ReplaceGlobals(engine *Engine) func() {
	_globalEngineMu.Lock()
	defer _globalEngineMu.Unlock()

	prev := _globalEngine
	_globalEngine = engine
	return func() { ReplaceGlobals(prev) }
}

// Engine consumes queued event ids with a fixed worker pool and drives each
// event through its processing lifecycle. One event is handled by exactly one
// worker; the cooldown tracker is the only cross-worker coordination point.
type Engine struct {
	queue   chan string
	workers int
	now     func() time.Time

	mu      sync.RWMutex
	stopped bool
	wg      sync.WaitGroup
}

// NewEngine returns a new engine with a bounded queue and a fixed worker count
func NewEngine(queueSize int, workers int) *Engine {
	if queueSize <= 0 {
		queueSize = 100
	}
	if workers <= 0 {
		workers = 1
	}
	return &Engine{
		queue:   make(chan string, queueSize),
		workers: workers,
		now:     time.Now,
	}
}

// SetClock overrides the engine clock (tests only)
func (e *Engine) SetClock(now func() time.Time) {
	e.now = now
}

// Start launches the worker pool, then requeues the events a previous run left
// in processing so a crash never strands an event. Replaying them is safe:
// the cooldown acquisition is the idempotency boundary.
func (e *Engine) Start() {
	zap.L().Info("Starting automation engine", zap.Int("workers", e.workers), zap.Int("queueSize", cap(e.queue)))

	for i := 0; i < e.workers; i++ {
		e.wg.Add(1)
		go e.worker()
	}

	stuck, err := event.R().ListStuckProcessing(0)
	if err != nil {
		zap.L().Error("Listing stuck processing events", zap.Error(err))
		return
	}
	for _, ev := range stuck {
		if err := event.R().Requeue(ev.ID); err != nil {
			zap.L().Error("Requeueing stuck event", zap.String("id", ev.ID), zap.Error(err))
			continue
		}
		if err := e.Queue(ev.ID); err != nil {
			zap.L().Warn("Stuck event left pending", zap.String("id", ev.ID), zap.Error(err))
		}
	}
	if len(stuck) > 0 {
		zap.L().Info("Requeued events left in processing", zap.Int("count", len(stuck)))
	}
}

// Stop rejects further Queue calls and waits for the workers to drain the queue
func (e *Engine) Stop() {
	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		return
	}
	e.stopped = true
	close(e.queue)
	e.mu.Unlock()

	zap.L().Info("Stopping automation engine...")
	e.wg.Wait()
	zap.L().Info("Stopping automation engine...Done")
}

// Queue hands an event id to the worker pool without blocking. A full queue
// is backpressure, not loss: the event stays pending in the ledger.
func (e *Engine) Queue(id string) error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.stopped {
		return ErrEngineStopped
	}

	select {
	case e.queue <- id:
		metrics.EngineQueueGauge.Set(float64(len(e.queue)))
		return nil
	default:
		return ErrQueueFull
	}
}

func (e *Engine) worker() {
	defer e.wg.Done()
	for id := range e.queue {
		metrics.EngineQueueGauge.Set(float64(len(e.queue)))
		if err := e.safeProcessEvent(id); err != nil {
			zap.L().Error("Event processing failed", zap.String("id", id), zap.Error(err))
		}
	}
}

// safeProcessEvent keeps a panic on one event from taking the worker down,
// the event is marked failed like any other infrastructure error
func (e *Engine) safeProcessEvent(id string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = e.failEvent(id, fmt.Errorf("panic processing event: %v", r))
		}
	}()
	return e.processEvent(context.Background(), id)
}

// processEvent drives a single event from pending to a terminal status.
// Action failures are recorded in the outcomes and never fail the event;
// only infrastructure errors do.
func (e *Engine) processEvent(ctx context.Context, id string) error {
	ev, found, err := event.R().Get(id)
	if err != nil {
		return err
	}
	if !found {
		zap.L().Warn("Queued event no longer exists", zap.String("id", id))
		return nil
	}

	if err := event.R().MarkProcessing(id); err != nil {
		if errors.Is(err, event.ErrInvalidTransition) {
			// already claimed by another worker or already terminal
			return nil
		}
		return err
	}

	matching, err := rule.R().GetMatching(ev.EventType)
	if err != nil {
		return e.failEvent(id, fmt.Errorf("loading matching rules: %w", err))
	}
	snapshot, err := subject.P().GetSnapshot(ev.SubjectID)
	if err != nil {
		return e.failEvent(id, fmt.Errorf("loading subject snapshot: %w", err))
	}

	actionsTriggered := make([]string, 0)
	actionResults := make(map[string]interface{})

	for _, r := range matching {
		if !evaluator.Evaluate(r.Conditions, snapshot) {
			continue
		}

		acquired, err := cooldown.T().TryAcquire(r.ID, ev.SubjectID, r.Cooldown())
		if err != nil {
			return e.failEvent(id, fmt.Errorf("acquiring cooldown for rule %d: %w", r.ID, err))
		}
		if !acquired {
			zap.L().Debug("Rule suppressed by cooldown", zap.Int64("ruleID", r.ID),
				zap.String("subjectID", ev.SubjectID))
			continue
		}
		metrics.RuleTriggers.Inc()

		outcomes := dispatcher.D().Run(ctx, r.Actions, dispatcher.Context{
			RuleID:    r.ID,
			RuleName:  r.Name,
			SubjectID: ev.SubjectID,
			Event:     ev,
			Snapshot:  snapshot,
		})
		for _, outcome := range outcomes {
			actionsTriggered = append(actionsTriggered, outcome.ActionType)
			if !outcome.Success {
				metrics.ActionFailures.WithLabelValues(outcome.ActionType).Inc()
			}
		}

		record := execution.Record{
			ID:              uuid.New().String(),
			RuleID:          r.ID,
			RuleName:        r.Name,
			SubjectID:       ev.SubjectID,
			TriggeredAt:     e.now().UTC(),
			ActionsExecuted: outcomes,
			MetricsSnapshot: snapshot,
		}
		if _, err := execution.R().Create(record); err != nil {
			return e.failEvent(id, fmt.Errorf("writing execution record for rule %d: %w", r.ID, err))
		}

		generic, err := genericOutcomes(outcomes)
		if err != nil {
			return e.failEvent(id, fmt.Errorf("encoding action results for rule %d: %w", r.ID, err))
		}
		actionResults[r.Name] = generic
	}

	if err := event.R().MarkCompleted(id, actionsTriggered, actionResults); err != nil {
		return err
	}
	metrics.EventsProcessed.WithLabelValues(event.StatusCompleted).Inc()
	return nil
}

func (e *Engine) failEvent(id string, cause error) error {
	if err := event.R().MarkFailed(id, cause.Error()); err != nil {
		zap.L().Error("Marking event failed", zap.String("id", id), zap.Error(err))
	}
	metrics.EventsProcessed.WithLabelValues(event.StatusFailed).Inc()
	return cause
}

// ForceTrigger fires a rule for a subject from the administration surface,
// bypassing condition evaluation but not the cooldown gate. The trigger is
// traced in the ledger like any other event.
func (e *Engine) ForceTrigger(ctx context.Context, ruleID int64, subjectID string) (execution.Record, error) {
	r, found, err := rule.R().Get(ruleID)
	if err != nil {
		return execution.Record{}, err
	}
	if !found || !r.IsActive {
		return execution.Record{}, ErrRuleNotFound
	}

	snapshot, err := subject.P().GetSnapshot(subjectID)
	if err != nil {
		return execution.Record{}, err
	}

	acquired, err := cooldown.T().TryAcquire(r.ID, subjectID, r.Cooldown())
	if err != nil {
		return execution.Record{}, err
	}
	if !acquired {
		return execution.Record{}, ErrCooldownActive
	}
	metrics.RuleTriggers.Inc()

	ev := event.Event{
		EventType:    "rule.force_triggered",
		SourceEntity: "rule",
		SourceID:     fmt.Sprintf("%d", r.ID),
		SubjectID:    subjectID,
		Payload:      map[string]interface{}{"rule_id": r.ID, "rule_name": r.Name},
		Timestamp:    e.now().UTC(),
		Status:       event.StatusPending,
	}
	eventID, err := event.R().Create(ev)
	if err != nil {
		return execution.Record{}, err
	}
	if err := event.R().MarkProcessing(eventID); err != nil {
		return execution.Record{}, err
	}
	ev.ID = eventID

	outcomes := dispatcher.D().Run(ctx, r.Actions, dispatcher.Context{
		RuleID:    r.ID,
		RuleName:  r.Name,
		SubjectID: subjectID,
		Event:     ev,
		Snapshot:  snapshot,
	})
	actionsTriggered := make([]string, 0, len(outcomes))
	for _, outcome := range outcomes {
		actionsTriggered = append(actionsTriggered, outcome.ActionType)
		if !outcome.Success {
			metrics.ActionFailures.WithLabelValues(outcome.ActionType).Inc()
		}
	}

	record := execution.Record{
		ID:              uuid.New().String(),
		RuleID:          r.ID,
		RuleName:        r.Name,
		SubjectID:       subjectID,
		TriggeredAt:     e.now().UTC(),
		ActionsExecuted: outcomes,
		MetricsSnapshot: snapshot,
	}
	if _, err := execution.R().Create(record); err != nil {
		return execution.Record{}, e.failEvent(eventID, err)
	}

	generic, err := genericOutcomes(outcomes)
	if err != nil {
		return execution.Record{}, e.failEvent(eventID, err)
	}
	if err := event.R().MarkCompleted(eventID, actionsTriggered, map[string]interface{}{r.Name: generic}); err != nil {
		return execution.Record{}, err
	}
	metrics.EventsProcessed.WithLabelValues(event.StatusCompleted).Inc()
	return record, nil
}

// genericOutcomes converts the typed outcomes to the plain JSON values stored
// in the event action_results aggregate
func genericOutcomes(outcomes []execution.ActionOutcome) (interface{}, error) {
	raw, err := json.Marshal(outcomes)
	if err != nil {
		return nil, err
	}
	var generic []interface{}
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, err
	}
	return generic, nil
}
