package tts

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Part is one piece of text spoken in a single voice.
type Part struct {
	Label string
	Text  string
	Role  Role
}

// SynthesizeParts runs synth over parts with at most limit calls in flight.
// Audio is returned in part order.
func SynthesizeParts(ctx context.Context, synth Synthesizer, parts []Part, limit int) ([][]byte, error) {
	out := make([][]byte, len(parts))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, limit))
	for i := range parts {
		g.Go(func() error {
			audio, err := synth.Synthesize(ctx, parts[i].Text, parts[i].Role)
			if err != nil {
				return fmt.Errorf("%s: %w", parts[i].Label, err)
			}
			out[i] = audio
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
