package router

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/plexify/plexify/engine/agent"
	"github.com/plexify/plexify/engine/llm/gateway"
	"github.com/plexify/plexify/engine/source"
	"github.com/plexify/plexify/engine/tts"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"no documents", fmt.Errorf("load: %w", source.ErrNoDocuments), http.StatusBadRequest, ErrMsgNoDocuments},
		{"unknown agent", agent.ErrUnknownAgent, http.StatusNotFound, ErrMsgUnknownAgent},
		{"empty content", tts.ErrEmptyContent, http.StatusBadRequest, "content is required"},
		{"auth", &gateway.AuthError{Provider: "anthropic"}, http.StatusUnauthorized, ""},
		{"speech auth", &gateway.AuthError{Provider: "elevenlabs", Status: http.StatusInternalServerError}, http.StatusInternalServerError, ""},
		{"request error", NewRequestError(http.StatusConflict, "busy", nil), http.StatusConflict, "busy"},
		{"unclassified", errors.New("boom"), http.StatusInternalServerError, "boom"},
	}
	for _, tc := range cases {
		t.Run("Should map "+tc.name, func(t *testing.T) {
			status, message := Classify(tc.err)
			assert.Equal(t, tc.status, status)
			if tc.message != "" {
				assert.Equal(t, tc.message, message)
			}
		})
	}
}

func TestRespondWithError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("Should add missing and available documents for load errors", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/api/agents/board-brief", http.NoBody)
		err := &source.LoadError{
			ProjectID: "acme",
			Dir:       "data/acme",
			Missing:   []source.Missing{{ID: "ghost", Reason: "file not found"}},
			Available: []string{"rfp.pdf"},
		}
		RespondWithError(c, err, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{
			"error": `+quote(err.Error())+`,
			"missing": [{"id":"ghost","reason":"file not found"}],
			"available": ["rfp.pdf"]
		}`, w.Body.String())
		assert.True(t, c.IsAborted())
	})

	t.Run("Should merge extras into the body", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/api/podcast/generate", http.NoBody)
		RespondWithError(c, source.ErrNoDocuments, map[string]any{"success": false})
		assert.JSONEq(t, `{"error":"Please select at least one document","success":false}`, w.Body.String())
	})
}

func quote(s string) string {
	return fmt.Sprintf("%q", s)
}
