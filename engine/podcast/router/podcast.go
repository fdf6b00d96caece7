package podcastrouter

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/plexify/plexify/engine/infra/server/router"
	"github.com/plexify/plexify/engine/podcast"
)

type GenerateRequest struct {
	ProjectID   string   `json:"projectId"`
	DocumentIDs []string `json:"documentIds"`
	Model       string   `json:"model"`
}

type GenerateResponse struct {
	Success bool            `json:"success"`
	Podcast *podcast.Result `json:"podcast"`
}

var failure = map[string]any{"success": false}

// generatePodcast handles POST /podcast/generate.
func generatePodcast(c *gin.Context) {
	state := router.GetAppState(c)
	if state == nil {
		return
	}
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		reqErr := router.NewRequestError(http.StatusBadRequest, "invalid request body: "+err.Error(), err)
		router.RespondWithError(c, reqErr, failure)
		return
	}
	res, err := state.Podcast.Generate(c.Request.Context(), &podcast.GenerateInput{
		ProjectID:   req.ProjectID,
		DocumentIDs: req.DocumentIDs,
		Model:       req.Model,
	})
	if err != nil {
		router.RespondWithError(c, err, failure)
		return
	}
	c.JSON(http.StatusOK, GenerateResponse{Success: true, Podcast: res})
}
