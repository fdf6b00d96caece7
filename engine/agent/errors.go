package agent

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/plexify/plexify/engine/schema"
)

var (
	// ErrUnknownAgent is returned for ids missing from the registry.
	ErrUnknownAgent = errors.New("unknown agent")
	// ErrStructuredOutput is returned when no JSON object can be parsed from a reply.
	ErrStructuredOutput = errors.New("failed to parse structured JSON from model response")
)

// SchemaError reports a parsed output that does not match the agent's schema.
type SchemaError struct {
	AgentID string
	Err     *schema.ValidationError
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s output does not match schema: %v", e.AgentID, e.Err)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

func (e *SchemaError) StatusCode() int {
	return http.StatusInternalServerError
}
