package ttsrouter

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/plexify/plexify/engine/infra/server/router"
)

type GenerateRequest struct {
	Content  string `json:"content"  binding:"required"`
	OutputID string `json:"outputId" binding:"required"`
}

// generateAudio handles POST /tts/generate.
func generateAudio(c *gin.Context) {
	state := router.GetAppState(c)
	if state == nil {
		return
	}
	req := router.GetRequestBody[GenerateRequest](c)
	if req == nil {
		return
	}
	res, err := state.TTS.Generate(c.Request.Context(), req.Content, req.OutputID)
	if err != nil {
		router.RespondWithError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, res)
}
