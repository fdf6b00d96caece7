package routes

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoutes(t *testing.T) {
	t.Run("Should build paths under the API base", func(t *testing.T) {
		assert.Equal(t, "/api", Base())
		assert.Equal(t, "/api/agents", Agents())
		assert.Equal(t, "/api/tts", TTS())
		assert.Equal(t, "/api/podcast", Podcast())
		assert.Equal(t, "/api/export", Export())
		assert.Equal(t, "/api/llm", LLM())
		assert.Equal(t, "/api/health", Health())
	})
}
