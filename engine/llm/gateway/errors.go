package gateway

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/plexify/plexify/engine/core"
	"github.com/tidwall/gjson"
)

// ErrNoModelAvailable is returned when no candidate model could serve a request.
var ErrNoModelAvailable = errors.New("no model available")

// AuthError reports a credential the vendor rejected. It is never retried.
type AuthError struct {
	Provider core.ProviderName
	Key      KeyDiagnostic
	Message  string
	// Status overrides the 401 answered to clients when set.
	Status int
}

func (e *AuthError) Error() string {
	msg := fmt.Sprintf("%s authentication failed (401): %s", e.Provider, e.Key)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// StatusCode maps the error onto an HTTP status.
func (e *AuthError) StatusCode() int {
	if e.Status != 0 {
		return e.Status
	}
	return http.StatusUnauthorized
}

// ConfigError reports a missing or malformed local setting, such as an
// absent API key for a provider that has no offline mode.
type ConfigError struct {
	Provider core.ProviderName
	Detail   string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s is not configured: %s", e.Provider, e.Detail)
}

func (e *ConfigError) StatusCode() int {
	return http.StatusInternalServerError
}

// VendorError wraps a non-success vendor reply.
type VendorError struct {
	Provider core.ProviderName
	Model    string
	Status   int
	Body     string
	// Message is the vendor's own error message when the body carries one.
	Message string
	// Exhausted marks a model-not-found reply on the last candidate.
	Exhausted bool
}

// NewVendorError builds a VendorError with a redacted body.
func NewVendorError(provider core.ProviderName, model string, status int, body []byte) *VendorError {
	return &VendorError{
		Provider: provider,
		Model:    model,
		Status:   status,
		Body:     core.RedactString(string(body)),
		Message:  VendorMessage(body),
	}
}

func (e *VendorError) Error() string {
	detail := e.Message
	if detail == "" {
		detail = e.Body
	}
	if e.Exhausted {
		return fmt.Sprintf("%s: %s rejected every candidate model (last %q, status %d): %s",
			ErrNoModelAvailable, e.Provider, e.Model, e.Status, detail)
	}
	return fmt.Sprintf("%s API error (status %d, model %q): %s", e.Provider, e.Status, e.Model, detail)
}

// Is lets errors.Is match ErrNoModelAvailable once the candidate list ran out.
func (e *VendorError) Is(target error) bool {
	return e.Exhausted && target == ErrNoModelAvailable
}

func (e *VendorError) StatusCode() int {
	return http.StatusInternalServerError
}

// Transient reports whether a retry could succeed.
func (e *VendorError) Transient() bool {
	return isTransientStatus(e.Status)
}

func isTransientStatus(status int) bool {
	return status == http.StatusTooManyRequests || status == http.StatusRequestTimeout || status >= 500
}

// VendorMessage pulls the human readable message out of a vendor error body.
// Anthropic nests it under error.message, OpenAI too, ElevenLabs under
// detail.message or detail.
func VendorMessage(body []byte) string {
	if !gjson.ValidBytes(body) {
		return ""
	}
	for _, path := range []string{"error.message", "detail.message", "message", "error", "detail"} {
		r := gjson.GetBytes(body, path)
		if r.Exists() && r.Type == gjson.String {
			if s := strings.TrimSpace(r.String()); s != "" {
				return s
			}
		}
	}
	return ""
}

// isModelNotFound matches the vendor reply that means "this model name is
// unavailable to this account".
func isModelNotFound(status int, body []byte) bool {
	return status == http.StatusNotFound && strings.Contains(strings.ToLower(string(body)), "model")
}
