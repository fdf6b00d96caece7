package tts

import (
	"context"
	"fmt"

	"github.com/plexify/plexify/pkg/config"
)

// Role selects which configured voice reads a passage.
type Role string

const (
	RoleNarrator Role = "narrator"
	RoleHost     Role = "host"
	RoleGuest    Role = "guest"
)

// Synthesizer turns plain text into MP3 audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string, role Role) ([]byte, error)
	Name() string
}

// NewSynthesizer builds the backend selected by cfg.TTS.Provider.
func NewSynthesizer(cfg *config.Config) (Synthesizer, error) {
	switch cfg.TTS.Provider {
	case "elevenlabs", "":
		return NewElevenLabs(&cfg.ElevenLabs), nil
	case "polly":
		return NewPolly(&cfg.Polly, nil), nil
	default:
		return nil, fmt.Errorf("unknown tts provider %q", cfg.TTS.Provider)
	}
}
