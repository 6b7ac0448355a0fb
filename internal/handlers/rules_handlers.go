package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strconv"

	"github.com/creators-HiveHQ/CREATORSHIVEHQLLC-sub000/internal/engine"
	"github.com/creators-HiveHQ/CREATORSHIVEHQLLC-sub000/internal/evaluator"
	"github.com/creators-HiveHQ/CREATORSHIVEHQLLC-sub000/internal/execution"
	"github.com/creators-HiveHQ/CREATORSHIVEHQLLC-sub000/internal/handlers/render"
	"github.com/creators-HiveHQ/CREATORSHIVEHQLLC-sub000/internal/rule"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// withTriggerStats attaches the trigger projections computed from the
// execution records. Rules never store their own counters.
func withTriggerStats(r rule.Rule) rule.Rule {
	count, err := execution.R().CountByRule(r.ID)
	if err != nil {
		zap.L().Warn("Counting rule executions", zap.Int64("id", r.ID), zap.Error(err))
		return r
	}
	r.TimesTriggered = count

	last, found, err := execution.R().LastByRule(r.ID)
	if err != nil {
		zap.L().Warn("Reading last rule execution", zap.Int64("id", r.ID), zap.Error(err))
		return r
	}
	if found {
		r.LastTriggered = &last
	}
	return r
}

// GetRules returns all automation rules with their trigger statistics
func GetRules(w http.ResponseWriter, r *http.Request) {
	rulesMap, err := rule.R().GetAll()
	if err != nil {
		zap.L().Error("Get rules", zap.Error(err))
		render.Error(w, r, render.ErrAPIDBSelectFailed, err)
		return
	}

	rulesSlice := make([]rule.Rule, 0, len(rulesMap))
	for _, ru := range rulesMap {
		rulesSlice = append(rulesSlice, withTriggerStats(ru))
	}
	sort.SliceStable(rulesSlice, func(i, j int) bool {
		return rulesSlice[i].ID < rulesSlice[j].ID
	})

	render.JSON(w, r, rulesSlice)
}

// GetRule returns a single automation rule by its id
func GetRule(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	idRule, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		zap.L().Warn("Parsing rule id", zap.String("RuleID", id), zap.Error(err))
		render.Error(w, r, render.ErrAPIParsingInteger, err)
		return
	}

	ru, found, err := rule.R().Get(idRule)
	if err != nil {
		zap.L().Error("Get rule from repository", zap.Int64("id", idRule), zap.Error(err))
		render.Error(w, r, render.ErrAPIDBSelectFailed, err)
		return
	}
	if !found {
		zap.L().Warn("Rule does not exists", zap.String("ruleid", id))
		render.Error(w, r, render.ErrAPIDBResourceNotFound, err)
		return
	}

	render.JSON(w, r, withTriggerStats(ru))
}

// PostRule creates a new automation rule
func PostRule(w http.ResponseWriter, r *http.Request) {
	var newRule rule.Rule
	err := json.NewDecoder(r.Body).Decode(&newRule)
	if err != nil {
		zap.L().Warn("Rule json decode", zap.Error(err))
		render.Error(w, r, render.ErrAPIDecodeJSONBody, err)
		return
	}

	if ok, err := newRule.IsValid(); !ok {
		zap.L().Warn("Rule is invalid", zap.Error(err))
		render.Error(w, r, render.ErrAPIResourceInvalid, err)
		return
	}

	exists, err := rule.R().CheckByName(newRule.Name)
	if err != nil {
		zap.L().Error("Check rule name", zap.String("name", newRule.Name), zap.Error(err))
		render.Error(w, r, render.ErrAPIDBSelectFailed, err)
		return
	}
	if exists {
		render.Error(w, r, render.ErrAPIResourceDuplicate, errors.New("a rule with this name already exists"))
		return
	}

	idRule, err := rule.R().Create(newRule)
	if err != nil {
		zap.L().Error("Create rule", zap.Error(err))
		render.Error(w, r, render.ErrAPIDBInsertFailed, err)
		return
	}

	created, found, err := rule.R().Get(idRule)
	if err != nil || !found {
		zap.L().Error("Get rule after creation", zap.Int64("id", idRule), zap.Error(err))
		render.Error(w, r, render.ErrAPIDBSelectFailed, err)
		return
	}

	render.Created(w, r, created)
}

// PutRule updates an existing automation rule. The is_active flag and the
// trigger statistics are not writable through this endpoint.
func PutRule(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	idRule, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		zap.L().Warn("Parsing rule id", zap.String("RuleID", id), zap.Error(err))
		render.Error(w, r, render.ErrAPIParsingInteger, err)
		return
	}

	var updated rule.Rule
	err = json.NewDecoder(r.Body).Decode(&updated)
	if err != nil {
		zap.L().Warn("Rule json decode", zap.Error(err))
		render.Error(w, r, render.ErrAPIDecodeJSONBody, err)
		return
	}
	updated.ID = idRule

	if ok, err := updated.IsValid(); !ok {
		zap.L().Warn("Rule is invalid", zap.Error(err))
		render.Error(w, r, render.ErrAPIResourceInvalid, err)
		return
	}

	_, found, err := rule.R().Get(idRule)
	if err != nil {
		zap.L().Error("Get rule from repository", zap.Int64("id", idRule), zap.Error(err))
		render.Error(w, r, render.ErrAPIDBSelectFailed, err)
		return
	}
	if !found {
		render.Error(w, r, render.ErrAPIDBResourceNotFound, errors.New("rule does not exists"))
		return
	}

	err = rule.R().Update(updated)
	if err != nil {
		zap.L().Error("Update rule", zap.Int64("id", idRule), zap.Error(err))
		render.Error(w, r, render.ErrAPIDBUpdateFailed, err)
		return
	}

	result, _, err := rule.R().Get(idRule)
	if err != nil {
		zap.L().Error("Get rule after update", zap.Int64("id", idRule), zap.Error(err))
		render.Error(w, r, render.ErrAPIDBSelectFailed, err)
		return
	}

	render.JSON(w, r, withTriggerStats(result))
}

// DeleteRule removes an automation rule. Execution records referencing the
// rule are kept, the audit trail is append-only.
func DeleteRule(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	idRule, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		zap.L().Warn("Parsing rule id", zap.String("RuleID", id), zap.Error(err))
		render.Error(w, r, render.ErrAPIParsingInteger, err)
		return
	}

	err = rule.R().Delete(idRule)
	if err != nil {
		zap.L().Error("Delete rule", zap.Int64("id", idRule), zap.Error(err))
		render.Error(w, r, render.ErrAPIDBDeleteFailed, err)
		return
	}

	render.OK(w, r)
}

type toggleRuleInput struct {
	IsActive bool `json:"is_active"`
}

// ToggleRule enables or disables a rule without touching its definition
func ToggleRule(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	idRule, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		zap.L().Warn("Parsing rule id", zap.String("RuleID", id), zap.Error(err))
		render.Error(w, r, render.ErrAPIParsingInteger, err)
		return
	}

	var input toggleRuleInput
	err = json.NewDecoder(r.Body).Decode(&input)
	if err != nil {
		zap.L().Warn("Toggle json decode", zap.Error(err))
		render.Error(w, r, render.ErrAPIDecodeJSONBody, err)
		return
	}

	_, found, err := rule.R().Get(idRule)
	if err != nil {
		zap.L().Error("Get rule from repository", zap.Int64("id", idRule), zap.Error(err))
		render.Error(w, r, render.ErrAPIDBSelectFailed, err)
		return
	}
	if !found {
		render.Error(w, r, render.ErrAPIDBResourceNotFound, errors.New("rule does not exists"))
		return
	}

	err = rule.R().SetActive(idRule, input.IsActive)
	if err != nil {
		zap.L().Error("Toggle rule", zap.Int64("id", idRule), zap.Error(err))
		render.Error(w, r, render.ErrAPIDBUpdateFailed, err)
		return
	}

	render.OK(w, r)
}

type testRuleInput struct {
	Conditions *rule.Condition        `json:"conditions"`
	Snapshot   map[string]interface{} `json:"snapshot"`
}

type testRuleOutput struct {
	Matched bool `json:"matched"`
}

// TestRule evaluates a condition tree against a synthetic snapshot without
// any side effect, used by the rule editor
func TestRule(w http.ResponseWriter, r *http.Request) {
	var input testRuleInput
	err := json.NewDecoder(r.Body).Decode(&input)
	if err != nil {
		zap.L().Warn("Test rule json decode", zap.Error(err))
		render.Error(w, r, render.ErrAPIDecodeJSONBody, err)
		return
	}

	probe := rule.Rule{Name: "test", TriggerType: "test", Conditions: input.Conditions}
	if ok, err := probe.IsValid(); !ok {
		zap.L().Warn("Test rule conditions are invalid", zap.Error(err))
		render.Error(w, r, render.ErrAPIResourceInvalid, err)
		return
	}

	render.JSON(w, r, testRuleOutput{Matched: evaluator.Evaluate(input.Conditions, input.Snapshot)})
}

type triggerRuleInput struct {
	SubjectID string `json:"subject_id"`
}

// TriggerRule fires a rule for a subject from the administration surface.
// The cooldown window applies exactly as for event-driven triggers.
func TriggerRule(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	idRule, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		zap.L().Warn("Parsing rule id", zap.String("RuleID", id), zap.Error(err))
		render.Error(w, r, render.ErrAPIParsingInteger, err)
		return
	}

	var input triggerRuleInput
	err = json.NewDecoder(r.Body).Decode(&input)
	if err != nil {
		zap.L().Warn("Trigger json decode", zap.Error(err))
		render.Error(w, r, render.ErrAPIDecodeJSONBody, err)
		return
	}
	if input.SubjectID == "" {
		render.Error(w, r, render.ErrAPIMissingParam, errors.New("missing subject_id"))
		return
	}

	record, err := engine.E().ForceTrigger(r.Context(), idRule, input.SubjectID)
	if err != nil {
		switch {
		case errors.Is(err, engine.ErrRuleNotFound):
			render.Error(w, r, render.ErrAPIDBResourceNotFound, err)
		case errors.Is(err, engine.ErrCooldownActive):
			render.Error(w, r, render.ErrAPIResourceConflict, err)
		default:
			zap.L().Error("Force trigger", zap.Int64("id", idRule), zap.Error(err))
			render.Error(w, r, render.ErrAPIProcessError, err)
		}
		return
	}

	render.JSON(w, r, record)
}
