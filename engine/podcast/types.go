package podcast

import (
	"errors"
	"strings"

	"github.com/plexify/plexify/engine/tts"
)

const (
	SpeakerHost  = "host"
	SpeakerGuest = "guest"
)

var (
	ErrEmptyScript = errors.New("podcast script has no spoken segments")
	// ErrScriptFormat means the model reply held no parseable script object.
	ErrScriptFormat = errors.New("podcast script reply is not valid JSON")
)

type Segment struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

// Role maps the speaker to a voice. Anything that is not the guest is read by the host.
func (s Segment) Role() tts.Role {
	if strings.EqualFold(strings.TrimSpace(s.Speaker), SpeakerGuest) {
		return tts.RoleGuest
	}
	return tts.RoleHost
}

type Script struct {
	Title    string    `json:"title"`
	Segments []Segment `json:"segments" jsonschema:"minItems=1"`
}

// spoken drops segments without text.
func (s *Script) spoken() []Segment {
	out := make([]Segment, 0, len(s.Segments))
	for _, seg := range s.Segments {
		if strings.TrimSpace(seg.Text) != "" {
			out = append(out, seg)
		}
	}
	return out
}

// Result is the generated episode.
type Result struct {
	PodcastURL string  `json:"podcastUrl"`
	Title      string  `json:"title"`
	Duration   float64 `json:"duration"`
	Script     *Script `json:"script"`
	Demo       bool    `json:"demo,omitempty"`
}
