package evaluator

import (
	"encoding/json"
	"testing"

	"github.com/creators-HiveHQ/CREATORSHIVEHQLLC-sub000/internal/rule"
)

func leaf(field string, operator string, value interface{}) rule.Condition {
	return rule.Condition{Field: field, Operator: operator, Value: value}
}

func TestEvaluateNilCondition(t *testing.T) {
	if !Evaluate(nil, map[string]interface{}{}) {
		t.Error("nil condition should always match")
	}
}

func TestEvaluateLeafOperators(t *testing.T) {
	snapshot := map[string]interface{}{
		"tier":           "pro",
		"approval_rate":  40.0,
		"proposals":      7,
		"topics":         []interface{}{"tech", "gaming"},
		"bio":            "long form video creator",
		"subscribed":     true,
		"pending_amount": "120.5",
	}

	tests := []struct {
		name      string
		condition rule.Condition
		expected  bool
	}{
		{"eq string match", leaf("tier", "eq", "pro"), true},
		{"eq string mismatch", leaf("tier", "eq", "free"), false},
		{"eq cross numeric types", leaf("proposals", "eq", 7.0), true},
		{"neq", leaf("tier", "neq", "free"), true},
		{"neq equal values", leaf("tier", "neq", "pro"), false},
		{"gt true", leaf("approval_rate", "gt", 30), true},
		{"gt false", leaf("approval_rate", "gt", 40), false},
		{"gte boundary", leaf("approval_rate", "gte", 40), true},
		{"lt true", leaf("approval_rate", "lt", 50), true},
		{"lte boundary", leaf("approval_rate", "lte", 40), true},
		{"numeric coercion from string", leaf("pending_amount", "gt", 100), true},
		{"numeric coercion failure", leaf("tier", "gt", 10), false},
		{"contains slice", leaf("topics", "contains", "tech"), true},
		{"contains slice miss", leaf("topics", "contains", "music"), false},
		{"contains substring", leaf("bio", "contains", "video"), true},
		{"in list", rule.Condition{Field: "tier", Operator: "in", Value: []interface{}{"pro", "enterprise"}}, true},
		{"in list miss", rule.Condition{Field: "tier", Operator: "in", Value: []interface{}{"free"}}, false},
		{"unknown operator", leaf("tier", "matches", "pro"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Evaluate(&tt.condition, snapshot); got != tt.expected {
				t.Errorf("Evaluate() = %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestEvaluateUncomparableValues(t *testing.T) {
	snapshot := map[string]interface{}{
		"topics":   []interface{}{"tech", "gaming"},
		"metadata": map[string]interface{}{"lang": "en"},
	}

	tests := []struct {
		name      string
		condition rule.Condition
		expected  bool
	}{
		{"eq equal slices", leaf("topics", "eq", []interface{}{"tech", "gaming"}), true},
		{"eq different slices", leaf("topics", "eq", []interface{}{"music"}), false},
		{"eq slice against string", leaf("topics", "eq", "tech"), false},
		{"neq different slices", leaf("topics", "neq", []interface{}{"music"}), true},
		{"eq equal maps", leaf("metadata", "eq", map[string]interface{}{"lang": "en"}), true},
		{"eq different maps", leaf("metadata", "eq", map[string]interface{}{"lang": "fr"}), false},
		{"in with slice elements", rule.Condition{Field: "topics", Operator: "in",
			Value: []interface{}{[]interface{}{"tech", "gaming"}, []interface{}{"music"}}}, true},
		{"in with slice elements miss", rule.Condition{Field: "topics", Operator: "in",
			Value: []interface{}{[]interface{}{"music"}}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if r := recover(); r != nil {
					t.Fatalf("Evaluate panicked on valid input: %v", r)
				}
			}()
			if got := Evaluate(&tt.condition, snapshot); got != tt.expected {
				t.Errorf("Evaluate() = %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestEvaluateMissingField(t *testing.T) {
	snapshot := map[string]interface{}{}
	operators := []string{"eq", "neq", "gt", "gte", "lt", "lte", "contains", "in"}
	for _, op := range operators {
		c := leaf("missing", op, "anything")
		if Evaluate(&c, snapshot) {
			t.Errorf("operator %s on missing field should evaluate to false", op)
		}
	}
}

func TestEvaluateEmptyComposites(t *testing.T) {
	and := rule.Condition{Type: rule.ConditionTypeComposite, Operator: "AND"}
	if !Evaluate(&and, nil) {
		t.Error("empty AND should evaluate to true")
	}
	or := rule.Condition{Type: rule.ConditionTypeComposite, Operator: "OR"}
	if Evaluate(&or, nil) {
		t.Error("empty OR should evaluate to false")
	}
}

func TestEvaluateCompositeScenario(t *testing.T) {
	data := `{
		"type": "composite",
		"operator": "AND",
		"rules": [
			{"field": "approval_rate", "operator": "lt", "value": 50},
			{"field": "proposals_count", "operator": "gte", "value": 5}
		]
	}`
	var condition rule.Condition
	if err := json.Unmarshal([]byte(data), &condition); err != nil {
		t.Fatal(err)
	}

	if !Evaluate(&condition, map[string]interface{}{"approval_rate": 40.0, "proposals_count": 7.0}) {
		t.Error("composite should match approval_rate 40 / proposals_count 7")
	}
	if Evaluate(&condition, map[string]interface{}{"approval_rate": 60.0, "proposals_count": 7.0}) {
		t.Error("composite should not match approval_rate 60")
	}
}

func TestEvaluateNestedComposite(t *testing.T) {
	condition := rule.Condition{
		Type:     rule.ConditionTypeComposite,
		Operator: "OR",
		Rules: []rule.Condition{
			{
				Type:     rule.ConditionTypeComposite,
				Operator: "AND",
				Rules: []rule.Condition{
					leaf("tier", "eq", "pro"),
					leaf("days_inactive", "gt", 30),
				},
			},
			leaf("churn_risk", "eq", "high"),
		},
	}

	if !Evaluate(&condition, map[string]interface{}{"churn_risk": "high"}) {
		t.Error("OR branch should match on churn_risk alone")
	}
	if !Evaluate(&condition, map[string]interface{}{"tier": "pro", "days_inactive": 45}) {
		t.Error("AND branch should match on tier + inactivity")
	}
	if Evaluate(&condition, map[string]interface{}{"tier": "pro", "days_inactive": 10}) {
		t.Error("neither branch should match")
	}
}
