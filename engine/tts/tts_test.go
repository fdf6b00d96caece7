package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/polly"
	pollytypes "github.com/aws/aws-sdk-go-v2/service/polly/types"
	"github.com/aws/smithy-go"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plexify/plexify/engine/llm/gateway"
	"github.com/plexify/plexify/engine/storage"
	"github.com/plexify/plexify/pkg/config"
)

func TestSplitChapters(t *testing.T) {
	t.Run("Should split on top-level headings and keep an introduction", func(t *testing.T) {
		content := "Opening remarks.\n\n# Budget\nThe **budget** is on track.\n\n### Detail\nMinor note.\n\n" +
			"## Schedule\n- Phase one\n- Phase two\n\n# Empty\n"
		got := SplitChapters(content)
		assert.Equal(t, []Chapter{
			{Title: "Introduction", Text: "Opening remarks."},
			{Title: "Budget", Text: "The budget is on track.\n\nDetail\n\nMinor note."},
			{Title: "Schedule", Text: "Phase one\n\nPhase two"},
		}, got)
	})

	t.Run("Should treat content without headings as one chapter", func(t *testing.T) {
		got := SplitChapters("Just a paragraph.")
		assert.Equal(t, []Chapter{{Title: "Briefing", Text: "Just a paragraph."}}, got)
	})

	t.Run("Should return nothing for blank content", func(t *testing.T) {
		assert.Empty(t, SplitChapters("   "))
	})
}

func TestEstimateDuration(t *testing.T) {
	t.Run("Should scale with words per minute", func(t *testing.T) {
		text := strings.Repeat("word ", 150)
		assert.InDelta(t, 60.0, EstimateDuration(text, 150), 1e-9)
		assert.InDelta(t, 30.0, EstimateDuration(text, 300), 1e-9)
		assert.InDelta(t, 0.4, EstimateDuration("one", 150), 1e-9)
	})
}

func TestJoinMP3(t *testing.T) {
	t.Run("Should drop ID3 tags after the first part", func(t *testing.T) {
		tag := append([]byte("ID3\x04\x00\x00\x00\x00\x00\x02"), 'x', 'x')
		first := append(append([]byte{}, tag...), []byte("AAA")...)
		second := append(append([]byte{}, tag...), []byte("BBB")...)
		got := JoinMP3(first, second, []byte("CCC"))
		assert.Equal(t, append(append([]byte{}, first...), []byte("BBBCCC")...), got)
	})
}

func newElevenLabsConfig(url, key string) *config.ElevenLabsConfig {
	cfg := config.Default().ElevenLabs
	cfg.BaseURL = url
	cfg.APIKey = config.SensitiveString(key)
	return &cfg
}

func TestElevenLabs_Synthesize(t *testing.T) {
	t.Run("Should post text to the role voice and return audio", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1/text-to-speech/guest-voice", r.URL.Path)
			assert.Equal(t, "xi-test", r.Header.Get("xi-api-key"))
			assert.Equal(t, "audio/mpeg", r.Header.Get("Accept"))
			var body map[string]string
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "hello", body["text"])
			assert.Equal(t, "eleven_multilingual_v2", body["model_id"])
			w.Header().Set("Content-Type", "audio/mpeg")
			_, _ = w.Write([]byte("mp3-bytes"))
		}))
		defer server.Close()
		cfg := newElevenLabsConfig(server.URL, "xi-test")
		cfg.GuestVoiceID = "guest-voice"
		audio, err := NewElevenLabs(cfg).Synthesize(t.Context(), "hello", RoleGuest)
		require.NoError(t, err)
		assert.Equal(t, []byte("mp3-bytes"), audio)
	})

	t.Run("Should fail with a configuration error when the key is missing", func(t *testing.T) {
		_, err := NewElevenLabs(newElevenLabsConfig("http://127.0.0.1:1", "")).Synthesize(t.Context(), "x", RoleNarrator)
		var cfgErr *gateway.ConfigError
		require.ErrorAs(t, err, &cfgErr)
		assert.Contains(t, err.Error(), "ELEVENLABS_API_KEY")
	})

	t.Run("Should map vendor failures", func(t *testing.T) {
		status := http.StatusUnauthorized
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"detail":{"message":"quota exceeded"}}`))
		}))
		defer server.Close()
		synth := NewElevenLabs(newElevenLabsConfig(server.URL, "xi-test"))
		_, err := synth.Synthesize(t.Context(), "x", RoleNarrator)
		var authErr *gateway.AuthError
		require.ErrorAs(t, err, &authErr)
		assert.Equal(t, http.StatusInternalServerError, authErr.StatusCode())

		status = http.StatusTooManyRequests
		_, err = synth.Synthesize(t.Context(), "x", RoleNarrator)
		var vendorErr *gateway.VendorError
		require.ErrorAs(t, err, &vendorErr)
		assert.Equal(t, "quota exceeded", vendorErr.Message)
		assert.Equal(t, http.StatusTooManyRequests, vendorErr.Status)
	})
}

type fakePollyClient struct {
	input *polly.SynthesizeSpeechInput
	err   error
}

func (f *fakePollyClient) SynthesizeSpeech(
	_ context.Context,
	params *polly.SynthesizeSpeechInput,
	_ ...func(*polly.Options),
) (*polly.SynthesizeSpeechOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &polly.SynthesizeSpeechOutput{AudioStream: io.NopCloser(bytes.NewReader([]byte("polly-mp3")))}, nil
}

type fakeAPIError struct {
	code string
}

func (e fakeAPIError) Error() string { return e.code }
func (e fakeAPIError) ErrorCode() string { return e.code }
func (e fakeAPIError) ErrorMessage() string { return "rejected" }
func (e fakeAPIError) ErrorFault() smithy.ErrorFault { return smithy.FaultClient }

var _ smithy.APIError = fakeAPIError{}

func TestPolly_Synthesize(t *testing.T) {
	t.Run("Should request neural mp3 with the role voice", func(t *testing.T) {
		cfg := config.Default().Polly
		client := &fakePollyClient{}
		audio, err := NewPolly(&cfg, client).Synthesize(t.Context(), "hello", RoleGuest)
		require.NoError(t, err)
		assert.Equal(t, []byte("polly-mp3"), audio)
		assert.Equal(t, pollytypes.VoiceId("Matthew"), client.input.VoiceId)
		assert.Equal(t, pollytypes.EngineNeural, client.input.Engine)
		assert.Equal(t, pollytypes.OutputFormatMp3, client.input.OutputFormat)
	})

	t.Run("Should keep the API error in the chain", func(t *testing.T) {
		cfg := config.Default().Polly
		_, err := NewPolly(&cfg, &fakePollyClient{err: fakeAPIError{code: "TextLengthExceededException"}}).
			Synthesize(t.Context(), "x", RoleNarrator)
		var apiErr smithy.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Contains(t, err.Error(), "TextLengthExceededException")
	})
}

type recordingSynth struct {
	mu    sync.Mutex
	texts []string
	err   error
}

func (r *recordingSynth) Name() string { return "fake" }

func (r *recordingSynth) Synthesize(_ context.Context, text string, _ Role) ([]byte, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.mu.Lock()
	r.texts = append(r.texts, text)
	r.mu.Unlock()
	title, _, _ := strings.Cut(text, ".")
	return []byte("[" + title + "]"), nil
}

func TestService_Generate(t *testing.T) {
	t.Run("Should store joined audio in chapter order with timings", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		cfg := config.Default()
		synth := &recordingSynth{}
		svc := NewService(synth, storage.NewStore(fs, "public"), cfg, nil)
		content := "# One\n" + strings.Repeat("word ", 150) + "\n\n# Two\n" + strings.Repeat("word ", 75)
		res, err := svc.Generate(t.Context(), content, "Board Brief Q3")
		require.NoError(t, err)
		assert.Equal(t, "/audio/board-brief-q3.mp3", res.AudioURL)
		assert.Equal(t, []ChapterTiming{
			{Title: "One", StartTime: 0, Duration: 60.4},
			{Title: "Two", StartTime: 60.4, Duration: 30.4},
		}, res.Chapters)
		assert.InDelta(t, 90.8, res.TotalDuration, 1e-9)
		data, err := afero.ReadFile(fs, "public/audio/board-brief-q3.mp3")
		require.NoError(t, err)
		assert.Equal(t, "[One][Two]", string(data))
		assert.Len(t, synth.texts, 2)
	})

	t.Run("Should reject empty content", func(t *testing.T) {
		svc := NewService(&recordingSynth{}, storage.NewStore(afero.NewMemMapFs(), "public"), config.Default(), nil)
		_, err := svc.Generate(t.Context(), " \n ", "x")
		assert.ErrorIs(t, err, ErrEmptyContent)
	})

	t.Run("Should surface synthesizer errors", func(t *testing.T) {
		boom := errors.New("boom")
		svc := NewService(&recordingSynth{err: boom}, storage.NewStore(afero.NewMemMapFs(), "public"), config.Default(), nil)
		_, err := svc.Generate(t.Context(), "# A\ntext", "x")
		assert.ErrorIs(t, err, boom)
	})
}
