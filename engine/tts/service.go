package tts

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/plexify/plexify/engine/llm/usage"
	"github.com/plexify/plexify/engine/storage"
	"github.com/plexify/plexify/pkg/config"
	"github.com/plexify/plexify/pkg/logger"
)

// ErrEmptyContent is returned when there is nothing to narrate.
var ErrEmptyContent = errors.New("content is required")

const audioExt = ".mp3"

// Store persists generated media and returns its public URL.
type Store interface {
	Save(ctx context.Context, dir, name string, data []byte) (string, error)
}

type ChapterTiming struct {
	Title     string  `json:"title"`
	StartTime float64 `json:"startTime"`
	Duration  float64 `json:"duration"`
}

type Result struct {
	AudioURL      string          `json:"audioUrl"`
	Chapters      []ChapterTiming `json:"chapters"`
	TotalDuration float64         `json:"totalDuration"`
}

// Service narrates documents chapter by chapter into a single MP3.
type Service struct {
	synth       Synthesizer
	store       Store
	audioDir    string
	wpm         int
	concurrency int
	metrics     usage.Metrics
}

func NewService(synth Synthesizer, store Store, cfg *config.Config, metrics usage.Metrics) *Service {
	if metrics == nil {
		metrics = usage.Nop()
	}
	return &Service{
		synth:       synth,
		store:       store,
		audioDir:    strings.Trim(cfg.Storage.AudioPath, "/"),
		wpm:         cfg.TTS.WordsPerMinute,
		concurrency: max(1, cfg.TTS.Concurrency),
		metrics:     metrics,
	}
}

func (s *Service) Synthesizer() Synthesizer {
	return s.synth
}

// Generate narrates content and stores it as <audio dir>/<outputID>.mp3.
func (s *Service) Generate(ctx context.Context, content, outputID string) (*Result, error) {
	chapters := SplitChapters(content)
	if len(chapters) == 0 {
		return nil, ErrEmptyContent
	}
	log := logger.FromContext(ctx).With("output_id", outputID, "tts_provider", s.synth.Name())
	start := time.Now()
	audio, err := s.synthesizeAll(ctx, chapters)
	usage.Record(ctx, s.metrics, usage.ComponentTTS, usage.Snapshot{Provider: s.synth.Name()}, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	url, err := s.store.Save(ctx, s.audioDir, storage.SafeName(outputID, "audio")+audioExt, JoinMP3(audio...))
	if err != nil {
		return nil, fmt.Errorf("store audio: %w", err)
	}
	res := &Result{AudioURL: url, Chapters: make([]ChapterTiming, 0, len(chapters))}
	var offset float64
	for _, ch := range chapters {
		d := EstimateDuration(narration(ch), s.wpm)
		res.Chapters = append(res.Chapters, ChapterTiming{Title: ch.Title, StartTime: offset, Duration: d})
		offset = math.Round((offset+d)*10) / 10
	}
	res.TotalDuration = offset
	log.Info("Audio generated", "chapters", len(chapters), "url", url, "duration_s", res.TotalDuration)
	return res, nil
}

func (s *Service) synthesizeAll(ctx context.Context, chapters []Chapter) ([][]byte, error) {
	parts := make([]Part, 0, len(chapters))
	for _, ch := range chapters {
		parts = append(parts, Part{
			Label: fmt.Sprintf("chapter %q", ch.Title),
			Text:  narration(ch),
			Role:  RoleNarrator,
		})
	}
	return SynthesizeParts(ctx, s.synth, parts, s.concurrency)
}

// narration is the text spoken for a chapter: its title, then its body.
func narration(ch Chapter) string {
	return ch.Title + ".\n\n" + ch.Text
}
