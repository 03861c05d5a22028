package service

import (
	"strings"

	"go-carwash-pullout/pkg/validator"
)

// Actor is the signed-in user behind a call, used for audit columns and
// event payloads.
type Actor struct {
	ID    uint
	Name  string
	Email string
}

// Label is what gets written to created_by / decided_by style columns.
func (a Actor) Label() string {
	if name := strings.TrimSpace(a.Name); name != "" {
		return name
	}
	if a.Email != "" {
		return a.Email
	}
	return "system"
}

func (a Actor) payload() map[string]interface{} {
	return map[string]interface{}{
		"id":    a.ID,
		"name":  a.Label(),
		"email": a.Email,
	}
}

// ValidationError carries every failing field of an input.
type ValidationError struct {
	Fields []*validator.ErrorResponse
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	return "validation failed: " + e.Fields[0].Message()
}

func newValidationError(fields []*validator.ErrorResponse) error {
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}

// Notifier fans workflow events out to connected screens. *ws.Hub satisfies it.
type Notifier interface {
	Publish(event string, payload map[string]interface{})
}
