package appstate

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	agentuc "github.com/plexify/plexify/engine/agent/uc"
	"github.com/plexify/plexify/engine/llm/gateway"
	"github.com/plexify/plexify/engine/podcast"
	"github.com/plexify/plexify/engine/tts"
	"github.com/plexify/plexify/pkg/config"
)

type contextKey string

const (
	stateKey contextKey = "app_state"
)

// State holds the request-independent services handlers run against.
type State struct {
	Config   *config.Config
	Generate *agentuc.GenerateAgentOutput
	Catalog  *agentuc.ListAgents
	TTS      *tts.Service
	Podcast  *podcast.Service
	Gateway  *gateway.Gateway
}

func NewState(cfg *config.Config) (*State, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	return &State{Config: cfg}, nil
}

func WithState(ctx context.Context, state *State) context.Context {
	return context.WithValue(ctx, stateKey, state)
}

func GetState(ctx context.Context) (*State, error) {
	state, ok := ctx.Value(stateKey).(*State)
	if !ok || state == nil {
		return nil, fmt.Errorf("app state not found in context")
	}
	return state, nil
}

func StateMiddleware(state *State) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := WithState(c.Request.Context(), state)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
