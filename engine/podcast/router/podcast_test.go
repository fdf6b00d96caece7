package podcastrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plexify/plexify/engine/core"
	"github.com/plexify/plexify/engine/infra/server/appstate"
	"github.com/plexify/plexify/engine/podcast"
	"github.com/plexify/plexify/engine/source"
	"github.com/plexify/plexify/engine/storage"
	"github.com/plexify/plexify/engine/tts"
	"github.com/plexify/plexify/pkg/config"
)

type stubLoader struct{}

func (stubLoader) Load(_ context.Context, projectID string, ids []string) (*source.Result, error) {
	if len(ids) == 0 {
		return nil, source.ErrNoDocuments
	}
	out := &source.Result{ProjectID: projectID}
	for _, id := range ids {
		out.Sources = append(out.Sources, source.Source{ID: id, Label: id, Text: "text"})
	}
	return out, nil
}

type stubSynth struct{}

func (stubSynth) Name() string { return "stub" }

func (stubSynth) Synthesize(_ context.Context, _ string, role tts.Role) ([]byte, error) {
	return []byte(role), nil
}

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := config.Default()
	store := storage.NewStore(afero.NewMemMapFs(), cfg.Storage.OutputDir)
	svc, err := podcast.NewService(nil, stubSynth{}, store, stubLoader{}, cfg,
		podcast.WithIDGenerator(func() core.ID { return "ep" }))
	require.NoError(t, err)
	state, err := appstate.NewState(cfg)
	require.NoError(t, err)
	state.Podcast = svc
	r := gin.New()
	r.Use(appstate.StateMiddleware(state))
	Register(r.Group("/api"))
	return r
}

func post(r *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/podcast/generate", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGeneratePodcast(t *testing.T) {
	t.Run("Should return the stored demo episode", func(t *testing.T) {
		w := post(setupRouter(t), `{"projectId":"acme","documentIds":["rfp"]}`)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var body struct {
			Success bool `json:"success"`
			Podcast struct {
				PodcastURL string  `json:"podcastUrl"`
				Title      string  `json:"title"`
				Duration   float64 `json:"duration"`
				Script     struct {
					Segments []podcast.Segment `json:"segments"`
				} `json:"script"`
			} `json:"podcast"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.True(t, body.Success)
		assert.Equal(t, "/podcasts/ep.mp3", body.Podcast.PodcastURL)
		assert.NotEmpty(t, body.Podcast.Title)
		assert.Positive(t, body.Podcast.Duration)
		assert.NotEmpty(t, body.Podcast.Script.Segments)
	})

	t.Run("Should report failures with success false", func(t *testing.T) {
		w := post(setupRouter(t), `{"documentIds":[]}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, false, body["success"])
		assert.Contains(t, body["error"], "select at least one document")
	})

	t.Run("Should reject malformed bodies with success false", func(t *testing.T) {
		w := post(setupRouter(t), `{`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), `"success":false`)
	})
}
