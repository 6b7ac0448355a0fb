package rule

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PaesslerAG/gval"
)

// ConditionTypeComposite is the tag marking a Condition as a boolean composition
// of sub-conditions instead of a single field comparison
const ConditionTypeComposite = "composite"

// Leaf comparison operators
const (
	OperatorEq       = "eq"
	OperatorNeq      = "neq"
	OperatorGt       = "gt"
	OperatorGte      = "gte"
	OperatorLt       = "lt"
	OperatorLte      = "lte"
	OperatorContains = "contains"
	OperatorIn       = "in"
)

// Composite boolean operators
const (
	OperatorAnd = "AND"
	OperatorOr  = "OR"
)

// maxConditionDepth bounds the nesting of composite conditions accepted at save time
const maxConditionDepth = 32

// Condition is a tagged union over leaf comparisons and boolean compositions.
// A leaf carries Field, Operator and Value; a composite (Type == "composite")
// carries a boolean Operator and a list of sub-conditions.
type Condition struct {
	Type     string      `json:"type,omitempty"`
	Field    string      `json:"field,omitempty"`
	Operator string      `json:"operator"`
	Value    interface{} `json:"value,omitempty"`
	Rules    []Condition `json:"rules,omitempty"`
}

// IsComposite returns true if the condition is a boolean composition
func (c *Condition) IsComposite() bool {
	return c.Type == ConditionTypeComposite
}

// Action is a single automation step embedded in a rule. The action list order
// of a rule defines the dispatch order.
type Action struct {
	Type   string                 `json:"type"`
	Params map[string]interface{} `json:"params,omitempty"`
}

// Rule represents an automation rule: a trigger pattern, an optional condition
// tree evaluated against the subject snapshot, and an ordered action list.
// TimesTriggered and LastTriggered are projections computed from execution
// records and the cooldown index, never stored on the rule itself.
type Rule struct {
	ID            int64      `json:"id"`
	Name          string     `json:"name"`
	Description   string     `json:"description"`
	TriggerType   string     `json:"trigger_type"`
	Conditions    *Condition `json:"conditions,omitempty"`
	Actions       []Action   `json:"actions"`
	CooldownHours int        `json:"cooldown_hours"`
	IsActive      bool       `json:"is_active"`

	TimesTriggered int64      `json:"times_triggered"`
	LastTriggered  *time.Time `json:"last_triggered,omitempty"`
}

// Cooldown returns the rule cooldown window as a duration
func (r *Rule) Cooldown() time.Duration {
	return time.Duration(r.CooldownHours) * time.Hour
}

// Matches returns true if the rule trigger pattern applies to the input event type.
// A pattern ending with a dot is a hierarchical prefix ("proposal." matches
// "proposal.approved"), any other pattern requires an exact match.
func (r *Rule) Matches(eventType string) bool {
	if r.TriggerType == eventType {
		return true
	}
	if strings.HasSuffix(r.TriggerType, ".") && strings.HasPrefix(eventType, r.TriggerType) {
		return true
	}
	return false
}

// IsValid checks if a rule definition is valid and has no missing mandatory fields
func (r *Rule) IsValid() (bool, error) {
	if r.Name == "" {
		return false, errors.New("missing Name")
	}
	if r.TriggerType == "" {
		return false, errors.New("missing TriggerType")
	}
	if r.CooldownHours < 0 {
		return false, errors.New("negative CooldownHours")
	}
	if r.Conditions != nil {
		if err := validateCondition(r.Conditions, 0); err != nil {
			return false, err
		}
	}
	for i, action := range r.Actions {
		if action.Type == "" {
			return false, fmt.Errorf("missing Type on action %d", i)
		}
		// template parameters must at least parse, the evaluation context is
		// only known at dispatch time
		for key, param := range action.Params {
			if !strings.HasSuffix(key, "Template") {
				continue
			}
			str, ok := param.(string)
			if !ok {
				return false, fmt.Errorf("action %d: parameter %s is not a string", i, key)
			}
			if _, err := gval.Full().NewEvaluable(str); err != nil {
				return false, fmt.Errorf("action %d: parameter %s is not a valid expression: %w", i, key, err)
			}
		}
	}
	return true, nil
}

func validateCondition(c *Condition, depth int) error {
	if depth > maxConditionDepth {
		return fmt.Errorf("condition tree exceeds maximum depth %d", maxConditionDepth)
	}
	if c.IsComposite() {
		if c.Operator != OperatorAnd && c.Operator != OperatorOr {
			return fmt.Errorf("unknown composite operator %q", c.Operator)
		}
		for i := range c.Rules {
			if err := validateCondition(&c.Rules[i], depth+1); err != nil {
				return err
			}
		}
		return nil
	}
	if c.Field == "" {
		return errors.New("missing Field on leaf condition")
	}
	switch c.Operator {
	case OperatorEq, OperatorNeq, OperatorGt, OperatorGte, OperatorLt, OperatorLte,
		OperatorContains, OperatorIn:
		return nil
	default:
		return fmt.Errorf("unknown leaf operator %q", c.Operator)
	}
}
