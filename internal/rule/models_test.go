package rule

import (
	"encoding/json"
	"testing"
)

func TestMatches(t *testing.T) {
	tests := []struct {
		trigger   string
		eventType string
		expected  bool
	}{
		{"proposal.approved", "proposal.approved", true},
		{"proposal.approved", "proposal.rejected", false},
		{"proposal.", "proposal.approved", true},
		{"proposal.", "proposal.rejected", true},
		{"proposal.", "subscription.created", false},
		{"proposal", "proposal.approved", false},
		{"proposal.", "proposal.", true},
		{"subscription.cancelled", "subscription.cancelled.grace", false},
	}
	for _, test := range tests {
		r := Rule{TriggerType: test.trigger}
		if got := r.Matches(test.eventType); got != test.expected {
			t.Errorf("Matches(%q, %q) = %v, expected %v", test.trigger, test.eventType, got, test.expected)
		}
	}
}

func TestIsValid(t *testing.T) {
	valid := Rule{
		Name:        "valid",
		TriggerType: "proposal.",
		Conditions: &Condition{
			Type:     ConditionTypeComposite,
			Operator: OperatorAnd,
			Rules: []Condition{
				{Field: "tier", Operator: OperatorEq, Value: "pro"},
				{Field: "approval_rate", Operator: OperatorLt, Value: 50},
			},
		},
		Actions:       []Action{{Type: "notify_admin"}},
		CooldownHours: 24,
	}
	if ok, err := valid.IsValid(); !ok {
		t.Errorf("expected valid rule, got %v", err)
	}

	tests := []struct {
		name string
		rule Rule
	}{
		{"missing name", Rule{TriggerType: "proposal."}},
		{"missing trigger", Rule{Name: "r"}},
		{"negative cooldown", Rule{Name: "r", TriggerType: "proposal.", CooldownHours: -1}},
		{"unknown leaf operator", Rule{Name: "r", TriggerType: "proposal.",
			Conditions: &Condition{Field: "tier", Operator: "matches", Value: "pro"}}},
		{"missing leaf field", Rule{Name: "r", TriggerType: "proposal.",
			Conditions: &Condition{Operator: OperatorEq, Value: "pro"}}},
		{"unknown composite operator", Rule{Name: "r", TriggerType: "proposal.",
			Conditions: &Condition{Type: ConditionTypeComposite, Operator: "XOR"}}},
		{"invalid nested condition", Rule{Name: "r", TriggerType: "proposal.",
			Conditions: &Condition{Type: ConditionTypeComposite, Operator: OperatorOr,
				Rules: []Condition{{Field: "x", Operator: "between", Value: 1}}}}},
		{"action without type", Rule{Name: "r", TriggerType: "proposal.",
			Actions: []Action{{Params: map[string]interface{}{"to": "a@b.c"}}}}},
		{"invalid template expression", Rule{Name: "r", TriggerType: "proposal.",
			Actions: []Action{{Type: "send_email", Params: map[string]interface{}{"bodyTemplate": "unclosed("}}}}},
		{"template not a string", Rule{Name: "r", TriggerType: "proposal.",
			Actions: []Action{{Type: "send_email", Params: map[string]interface{}{"bodyTemplate": 42}}}}},
	}
	for _, test := range tests {
		if ok, _ := test.rule.IsValid(); ok {
			t.Errorf("%s: expected invalid rule", test.name)
		}
	}
}

func TestIsValidTemplateExpression(t *testing.T) {
	r := Rule{
		Name:        "templated",
		TriggerType: "proposal.rejected",
		Actions: []Action{{
			Type: "send_email",
			Params: map[string]interface{}{
				"to":              "ops@example.com",
				"subjectTemplate": `"Approval rate dropped to " + approval_rate`,
			},
		}},
	}
	if ok, err := r.IsValid(); !ok {
		t.Errorf("expected valid rule, got %v", err)
	}
}

func TestConditionJSONRoundTrip(t *testing.T) {
	raw := `{
		"type": "composite",
		"operator": "OR",
		"rules": [
			{"field": "tier", "operator": "eq", "value": "pro"},
			{"type": "composite", "operator": "AND", "rules": [
				{"field": "approval_rate", "operator": "lt", "value": 50},
				{"field": "proposals_sent", "operator": "gte", "value": 10}
			]}
		]
	}`
	var c Condition
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		t.Fatal(err)
	}
	if !c.IsComposite() || c.Operator != OperatorOr || len(c.Rules) != 2 {
		t.Fatalf("condition = %+v", c)
	}
	if c.Rules[1].Rules[0].Field != "approval_rate" {
		t.Errorf("nested condition = %+v", c.Rules[1])
	}
}

func TestCooldown(t *testing.T) {
	r := Rule{CooldownHours: 24}
	if r.Cooldown().Hours() != 24 {
		t.Errorf("cooldown = %v", r.Cooldown())
	}
	zero := Rule{}
	if zero.Cooldown() != 0 {
		t.Errorf("cooldown = %v", zero.Cooldown())
	}
}
