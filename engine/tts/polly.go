package tts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/polly"
	pollytypes "github.com/aws/aws-sdk-go-v2/service/polly/types"
	"github.com/aws/smithy-go"

	"github.com/plexify/plexify/engine/core"
	"github.com/plexify/plexify/pkg/config"
)

type synthClient interface {
	SynthesizeSpeech(
		ctx context.Context,
		params *polly.SynthesizeSpeechInput,
		optFns ...func(*polly.Options),
	) (*polly.SynthesizeSpeechOutput, error)
}

// Polly synthesizes speech with Amazon Polly. Credentials come from the
// default AWS chain.
type Polly struct {
	mu     sync.Mutex
	client synthClient
	cfg    *config.PollyConfig
}

// NewPolly uses client when given, otherwise builds one lazily on first use.
func NewPolly(cfg *config.PollyConfig, client synthClient) *Polly {
	return &Polly{cfg: cfg, client: client}
}

func (p *Polly) Name() string {
	return core.ProviderPolly.String()
}

func (p *Polly) voice(role Role) string {
	if role == RoleGuest && p.cfg.GuestVoiceID != "" {
		return p.cfg.GuestVoiceID
	}
	if p.cfg.VoiceID == "" {
		return "Joanna"
	}
	return p.cfg.VoiceID
}

func (p *Polly) Synthesize(ctx context.Context, text string, role Role) ([]byte, error) {
	client, err := p.resolveClient(ctx)
	if err != nil {
		return nil, err
	}
	engine := pollytypes.EngineStandard
	if strings.EqualFold(p.cfg.Engine, "neural") {
		engine = pollytypes.EngineNeural
	}
	out, err := client.SynthesizeSpeech(ctx, &polly.SynthesizeSpeechInput{
		Engine:       engine,
		OutputFormat: pollytypes.OutputFormatMp3,
		Text:         &text,
		TextType:     pollytypes.TextTypeText,
		VoiceId:      pollytypes.VoiceId(p.voice(role)),
	})
	if err != nil {
		return nil, pollyError(err)
	}
	if out == nil || out.AudioStream == nil {
		return nil, fmt.Errorf("polly returned no audio")
	}
	defer out.AudioStream.Close()
	data, err := io.ReadAll(out.AudioStream)
	if err != nil {
		return nil, fmt.Errorf("read polly audio: %w", err)
	}
	return data, nil
}

func pollyError(err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("polly %s: %w", apiErr.ErrorCode(), err)
	}
	return fmt.Errorf("polly request failed: %w", err)
}

func (p *Polly) resolveClient(ctx context.Context) (synthClient, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.client != nil {
		return p.client, nil
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(p.cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	p.client = polly.NewFromConfig(awsCfg)
	return p.client, nil
}
