// Package mail implements the email side channel: a rendered document can
// be sent as an attachment to a list of recipients. Email is best-effort
// by contract; failures are logged by the caller and never fail a render.
package mail

import (
	"encoding/json"
	"fmt"
)

// Directive is a structurally validated email instruction from a render
// request.
type Directive struct {
	To      []string
	Subject string
	Body    string
}

// wireDirective mirrors the JSON shape. The body historically traveled
// under "text"; "body" is accepted as an alias.
type wireDirective struct {
	To      json.RawMessage `json:"to"`
	Subject *string         `json:"subject"`
	Text    *string         `json:"text"`
	Body    *string         `json:"body"`
}

// ParseDirective decodes and structurally validates the email payload:
// "to" must be a list of strings (empty means "send nothing"), "subject"
// and the body must be present strings. Any violation is an error; the
// caller decides that the error never surfaces to the requester.
func ParseDirective(raw []byte) (*Directive, error) {
	var wire wireDirective
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, fmt.Errorf("parse email directive: %w", err)
	}

	if len(wire.To) == 0 {
		return nil, fmt.Errorf("email.to is missing")
	}
	var entries []any
	if err := json.Unmarshal(wire.To, &entries); err != nil {
		return nil, fmt.Errorf("email.to is not an array")
	}
	to := make([]string, 0, len(entries))
	for _, entry := range entries {
		s, ok := entry.(string)
		if !ok {
			return nil, fmt.Errorf("email.to contains non-string entries")
		}
		to = append(to, s)
	}

	if wire.Subject == nil {
		return nil, fmt.Errorf("email.subject is missing or not a string")
	}

	body := wire.Text
	if body == nil {
		body = wire.Body
	}
	if body == nil {
		return nil, fmt.Errorf("email.text is missing or not a string")
	}

	return &Directive{To: to, Subject: *wire.Subject, Body: *body}, nil
}
