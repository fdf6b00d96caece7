package tts

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-resty/resty/v2"

	"github.com/plexify/plexify/engine/core"
	"github.com/plexify/plexify/engine/llm/gateway"
	"github.com/plexify/plexify/pkg/config"
	"github.com/plexify/plexify/pkg/logger"
)

const elevenLabsSpeechPath = "/v1/text-to-speech/"

type elevenLabsRequest struct {
	ModelID string `json:"model_id"`
	Text    string `json:"text"`
}

// ElevenLabs synthesizes speech through the ElevenLabs REST API.
type ElevenLabs struct {
	client *resty.Client
	cfg    *config.ElevenLabsConfig
}

func NewElevenLabs(cfg *config.ElevenLabsConfig) *ElevenLabs {
	return &ElevenLabs{
		client: resty.New().
			SetBaseURL(cfg.BaseURL).
			SetTimeout(cfg.Timeout).
			SetHeader("Content-Type", "application/json").
			SetHeader("Accept", "audio/mpeg"),
		cfg: cfg,
	}
}

func (e *ElevenLabs) Name() string {
	return core.ProviderElevenLabs.String()
}

func (e *ElevenLabs) voice(role Role) string {
	switch role {
	case RoleHost:
		return e.cfg.HostVoiceID
	case RoleGuest:
		return e.cfg.GuestVoiceID
	default:
		return e.cfg.NarratorVoiceID
	}
}

// Synthesize returns MP3 bytes. A missing key is a configuration error.
func (e *ElevenLabs) Synthesize(ctx context.Context, text string, role Role) ([]byte, error) {
	key := e.cfg.APIKey.Value()
	if !gateway.UsableKey(key, "") {
		return nil, &gateway.ConfigError{
			Provider: core.ProviderElevenLabs,
			Detail:   config.GetEnvVarForConfigPath("elevenlabs.api_key") + " is not set",
		}
	}
	voice := e.voice(role)
	resp, err := e.client.R().
		SetContext(ctx).
		SetHeader("xi-api-key", key).
		SetBody(elevenLabsRequest{ModelID: e.cfg.ModelID, Text: text}).
		Post(elevenLabsSpeechPath + url.PathEscape(voice))
	if err != nil {
		return nil, fmt.Errorf("elevenlabs request failed: %w", err)
	}
	status := resp.StatusCode()
	if status == http.StatusUnauthorized {
		// A rejected speech key is a failed vendor call for the caller, not a
		// credential problem of theirs.
		return nil, &gateway.AuthError{
			Provider: core.ProviderElevenLabs,
			Key:      gateway.DescribeKey(config.GetEnvVarForConfigPath("elevenlabs.api_key"), key, ""),
			Message:  gateway.VendorMessage(resp.Body()),
			Status:   http.StatusInternalServerError,
		}
	}
	if status < 200 || status >= 300 {
		return nil, gateway.NewVendorError(core.ProviderElevenLabs, e.cfg.ModelID, status, resp.Body())
	}
	logger.FromContext(ctx).Debug("ElevenLabs synthesis completed",
		"voice", voice, "chars", len(text), "bytes", len(resp.Body()))
	return resp.Body(), nil
}
