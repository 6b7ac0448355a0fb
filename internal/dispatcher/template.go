package dispatcher

import (
	"fmt"
	"strings"

	"github.com/PaesslerAG/gval"
)

// RenderParams resolves template parameters against the dispatch context.
// A parameter whose key ends in "Template" holds a gval expression evaluated
// with the subject snapshot, the event payload and the subject id in scope;
// the result is exposed under the key without the suffix ("bodyTemplate"
// renders into "body"). Plain parameters pass through untouched.
func RenderParams(params map[string]interface{}, dctx Context) (map[string]interface{}, error) {
	rendered := make(map[string]interface{}, len(params))
	scope := templateScope(dctx)

	for key, value := range params {
		if !strings.HasSuffix(key, "Template") {
			rendered[key] = value
			continue
		}
		expr, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("template parameter %s is not a string", key)
		}
		result, err := gval.Evaluate(expr, scope)
		if err != nil {
			return nil, fmt.Errorf("template parameter %s: %w", key, err)
		}
		rendered[strings.TrimSuffix(key, "Template")] = result
	}
	return rendered, nil
}

func templateScope(dctx Context) map[string]interface{} {
	scope := make(map[string]interface{}, len(dctx.Snapshot)+3)
	for k, v := range dctx.Snapshot {
		scope[k] = v
	}
	scope["subject_id"] = dctx.SubjectID
	scope["event_type"] = dctx.Event.EventType
	scope["payload"] = dctx.Event.Payload
	return scope
}

// StringParam reads a string parameter, preferring the rendered template value
func StringParam(params map[string]interface{}, key string) (string, bool) {
	value, ok := params[key]
	if !ok {
		return "", false
	}
	switch v := value.(type) {
	case string:
		return v, true
	default:
		return fmt.Sprintf("%v", v), true
	}
}
