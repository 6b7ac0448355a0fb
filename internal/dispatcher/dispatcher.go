package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/creators-HiveHQ/CREATORSHIVEHQLLC-sub000/internal/execution"
	"github.com/creators-HiveHQ/CREATORSHIVEHQLLC-sub000/internal/rule"
	"go.uber.org/zap"
)

var (
	_globalDispatcherMu sync.RWMutex
	_globalDispatcher   *Dispatcher
)

// D is used to access the global dispatcher singleton
func D() *Dispatcher {
	_globalDispatcherMu.RLock()
	defer _globalDispatcherMu.RUnlock()

	dispatcher := _globalDispatcher
	return dispatcher
}

// ReplaceGlobals affect a new dispatcher to the global dispatcher singleton
func ReplaceGlobals(dispatcher *Dispatcher) func() {
	_globalDispatcherMu.Lock()
	defer _globalDispatcherMu.Unlock()

	prev := _globalDispatcher
	_globalDispatcher = dispatcher
	return func() { ReplaceGlobals(prev) }
}

// Dispatcher executes the ordered action list of a triggered rule, one
// executor per action type. Executors are registered once at startup.
type Dispatcher struct {
	executors     map[string]Executor
	actionTimeout time.Duration
}

// NewDispatcher returns a new Dispatcher applying the input per-action timeout.
// A zero timeout disables the per-action deadline.
func NewDispatcher(actionTimeout time.Duration) *Dispatcher {
	return &Dispatcher{
		executors:     make(map[string]Executor),
		actionTimeout: actionTimeout,
	}
}

// RegisterExecutor binds an executor to an action type
func (d *Dispatcher) RegisterExecutor(actionType string, executor Executor) {
	d.executors[actionType] = executor
}

// Run executes every action in list order. A failing action never aborts the
// remaining ones: each action yields exactly one outcome, in the same order
// as the rule action list.
func (d *Dispatcher) Run(ctx context.Context, actions []rule.Action, dctx Context) []execution.ActionOutcome {
	outcomes := make([]execution.ActionOutcome, 0, len(actions))
	for _, action := range actions {
		outcome := execution.ActionOutcome{ActionType: action.Type}

		executor, ok := d.executors[action.Type]
		if !ok {
			outcome.Error = ErrUnknownActionType
			zap.L().Warn("No executor registered for action type",
				zap.String("type", action.Type), zap.Int64("ruleID", dctx.RuleID))
			outcomes = append(outcomes, outcome)
			continue
		}

		if err := d.execute(ctx, executor, action.Params, dctx); err != nil {
			outcome.Error = err.Error()
			zap.L().Warn("Action execution failed", zap.String("type", action.Type),
				zap.Int64("ruleID", dctx.RuleID), zap.String("subjectID", dctx.SubjectID), zap.Error(err))
		} else {
			outcome.Success = true
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes
}

// execute runs a single executor under the per-action deadline, converting
// panics and timeouts into plain errors
func (d *Dispatcher) execute(ctx context.Context, executor Executor, params map[string]interface{}, dctx Context) error {
	actionCtx := ctx
	if d.actionTimeout > 0 {
		var cancel context.CancelFunc
		actionCtx, cancel = context.WithTimeout(ctx, d.actionTimeout)
		defer cancel()
	}

	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("executor panic: %v", r)
			}
		}()
		done <- executor.Execute(actionCtx, params, dctx)
	}()

	select {
	case err := <-done:
		return err
	case <-actionCtx.Done():
		if errors.Is(actionCtx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("action timed out after %s", d.actionTimeout)
		}
		return actionCtx.Err()
	}
}
