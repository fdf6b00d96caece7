package llmrouter

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/plexify/plexify/engine/core"
	"github.com/plexify/plexify/engine/infra/server/router"
	"github.com/plexify/plexify/engine/llm/gateway"
)

// GenerateRequest selects a provider on top of the gateway request.
// Provider defaults to anthropic.
type GenerateRequest struct {
	Provider string `json:"provider"`
	gateway.GenerateRequest
}

// generate handles POST /llm/generate.
func generate(c *gin.Context) {
	state := router.GetAppState(c)
	if state == nil {
		return
	}
	req := router.GetRequestBody[GenerateRequest](c)
	if req == nil {
		return
	}
	provider := core.ProviderAnthropic
	if req.Provider != "" {
		provider = core.ParseProvider(req.Provider)
	}
	resp, err := state.Gateway.Generate(c.Request.Context(), provider, &req.GenerateRequest)
	if err != nil {
		router.RespondWithError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, resp)
}
