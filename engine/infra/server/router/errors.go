package router

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/plexify/plexify/engine/agent"
	"github.com/plexify/plexify/engine/export"
	"github.com/plexify/plexify/engine/source"
	"github.com/plexify/plexify/engine/tts"
)

// Error messages shown to clients verbatim.
const (
	ErrMsgNoDocuments            = "Please select at least one document"
	ErrMsgUnknownAgent           = "Unknown agent"
	ErrMsgAppStateNotInitialized = "application state not initialized"
)

// RequestError carries an explicit status and client-facing reason.
type RequestError struct {
	Reason     string
	StatusCode int
	Err        error
}

func (e *RequestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	return e.Reason
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

func NewRequestError(statusCode int, reason string, err error) *RequestError {
	return &RequestError{
		StatusCode: statusCode,
		Reason:     reason,
		Err:        err,
	}
}

type statusCoder interface {
	StatusCode() int
}

var inputErrors = []struct {
	err     error
	status  int
	message string
}{
	{source.ErrNoDocuments, http.StatusBadRequest, ErrMsgNoDocuments},
	{source.ErrInvalidProject, http.StatusBadRequest, ""},
	{agent.ErrUnknownAgent, http.StatusNotFound, ErrMsgUnknownAgent},
	{tts.ErrEmptyContent, http.StatusBadRequest, ""},
	{export.ErrNoContent, http.StatusBadRequest, ""},
	{export.ErrInvalidBrief, http.StatusBadRequest, ""},
}

// Classify maps err onto an HTTP status and the message clients see.
func Classify(err error) (int, string) {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.StatusCode, reqErr.Reason
	}
	for _, known := range inputErrors {
		if errors.Is(err, known.err) {
			if known.message == "" {
				return known.status, err.Error()
			}
			return known.status, known.message
		}
	}
	var coder statusCoder
	if errors.As(err, &coder) {
		return coder.StatusCode(), err.Error()
	}
	return http.StatusInternalServerError, err.Error()
}
