package dispatcher

import (
	"context"
	"errors"
	"fmt"

	"github.com/creators-HiveHQ/CREATORSHIVEHQLLC-sub000/pkg/email"
)

// SendEmailExecutor sends an email to the recipients listed in the action
// parameters, with gval-templated subject and body
type SendEmailExecutor struct{}

// NewSendEmailExecutor returns a new SendEmailExecutor
func NewSendEmailExecutor() *SendEmailExecutor {
	return &SendEmailExecutor{}
}

// Execute sends the email built from the action parameters
func (e *SendEmailExecutor) Execute(ctx context.Context, params map[string]interface{}, dctx Context) error {
	sender := email.S()
	if sender == nil {
		return errors.New("email sender not initialized")
	}

	rendered, err := RenderParams(params, dctx)
	if err != nil {
		return err
	}

	to, err := recipients(rendered)
	if err != nil {
		return err
	}
	subject, ok := StringParam(rendered, "subject")
	if !ok {
		subject = fmt.Sprintf("Automation: %s", dctx.RuleName)
	}
	body, ok := StringParam(rendered, "body")
	if !ok {
		return errors.New("missing body parameter")
	}

	message := email.NewMessage(subject, body)
	message.To = to
	if isHTML, ok := rendered["html"].(bool); ok {
		message.IsHTML = isHTML
	}
	return sender.Send(message)
}

func recipients(params map[string]interface{}) ([]string, error) {
	switch to := params["to"].(type) {
	case string:
		return []string{to}, nil
	case []string:
		return to, nil
	case []interface{}:
		out := make([]string, 0, len(to))
		for _, item := range to {
			str, ok := item.(string)
			if !ok {
				return nil, errors.New("invalid to parameter")
			}
			out = append(out, str)
		}
		return out, nil
	default:
		return nil, errors.New("missing to parameter")
	}
}
