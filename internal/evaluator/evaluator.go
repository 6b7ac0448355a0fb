package evaluator

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/creators-HiveHQ/CREATORSHIVEHQLLC-sub000/internal/rule"
)

// Evaluate applies a condition tree to a subject attribute snapshot.
// It is a pure function: a nil condition matches everything, a missing field
// or a type mismatch evaluates the enclosing leaf to false, never to an error.
func Evaluate(c *rule.Condition, snapshot map[string]interface{}) bool {
	if c == nil {
		return true
	}
	if c.IsComposite() {
		return evaluateComposite(c, snapshot)
	}
	return evaluateLeaf(c, snapshot)
}

func evaluateComposite(c *rule.Condition, snapshot map[string]interface{}) bool {
	switch c.Operator {
	case rule.OperatorAnd:
		for i := range c.Rules {
			if !Evaluate(&c.Rules[i], snapshot) {
				return false
			}
		}
		return true
	case rule.OperatorOr:
		for i := range c.Rules {
			if Evaluate(&c.Rules[i], snapshot) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func evaluateLeaf(c *rule.Condition, snapshot map[string]interface{}) bool {
	value, found := snapshot[c.Field]

	switch c.Operator {
	case rule.OperatorEq:
		if !found {
			return false
		}
		return looseEquals(value, c.Value)
	case rule.OperatorNeq:
		if !found {
			return false
		}
		return !looseEquals(value, c.Value)
	case rule.OperatorGt, rule.OperatorGte, rule.OperatorLt, rule.OperatorLte:
		if !found {
			return false
		}
		left, ok := toFloat(value)
		if !ok {
			return false
		}
		right, ok := toFloat(c.Value)
		if !ok {
			return false
		}
		switch c.Operator {
		case rule.OperatorGt:
			return left > right
		case rule.OperatorGte:
			return left >= right
		case rule.OperatorLt:
			return left < right
		default:
			return left <= right
		}
	case rule.OperatorContains:
		// a missing field behaves as an empty collection
		if !found {
			return false
		}
		return contains(value, c.Value)
	case rule.OperatorIn:
		if !found {
			return false
		}
		return contains(c.Value, value)
	default:
		return false
	}
}

// looseEquals compares two values, equating numerics across Go types
// (a JSON-decoded 5 is a float64, a snapshot built in Go may carry an int)
func looseEquals(a, b interface{}) bool {
	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			return fa == fb
		}
		return false
	}
	// JSONB attributes can decode to slices or maps, on which == panics
	if !isComparable(a) || !isComparable(b) {
		return reflect.DeepEqual(a, b)
	}
	return a == b
}

func isComparable(value interface{}) bool {
	t := reflect.TypeOf(value)
	return t == nil || t.Comparable()
}

func toFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

// contains reports whether collection holds element: substring match on
// strings, member match on slices, key match on maps
func contains(collection interface{}, element interface{}) bool {
	switch col := collection.(type) {
	case string:
		str, ok := element.(string)
		if !ok {
			return false
		}
		return strings.Contains(col, str)
	case []interface{}:
		for _, item := range col {
			if looseEquals(item, element) {
				return true
			}
		}
		return false
	case []string:
		str, ok := element.(string)
		if !ok {
			return false
		}
		for _, item := range col {
			if item == str {
				return true
			}
		}
		return false
	case map[string]interface{}:
		str, ok := element.(string)
		if !ok {
			return false
		}
		_, exists := col[str]
		return exists
	default:
		return false
	}
}
