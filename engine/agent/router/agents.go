package agentrouter

import (
	"net/http"

	"github.com/gin-gonic/gin"

	agentuc "github.com/plexify/plexify/engine/agent/uc"
	"github.com/plexify/plexify/engine/infra/server/router"
)

// listAgents handles GET /agents.
func listAgents(c *gin.Context) {
	state := router.GetAppState(c)
	if state == nil {
		return
	}
	defs := state.Catalog.Execute(c.Request.Context())
	resp := AgentsListResponse{Agents: make([]AgentDTO, 0, len(defs))}
	for _, def := range defs {
		resp.Agents = append(resp.Agents, AgentDTO{ID: def.ID, Title: def.Title, Description: def.Description})
	}
	c.JSON(http.StatusOK, resp)
}

// generateAgentOutput handles POST /agents/:agent_id.
func generateAgentOutput(c *gin.Context) {
	state := router.GetAppState(c)
	if state == nil {
		return
	}
	req := &GenerateRequest{}
	if c.Request.ContentLength != 0 {
		req = router.GetRequestBody[GenerateRequest](c)
		if req == nil {
			return
		}
	}
	out, err := state.Generate.Execute(c.Request.Context(), &agentuc.GenerateInput{
		AgentID:      c.Param("agent_id"),
		ProjectID:    req.ProjectID,
		DocumentIDs:  req.documentIDs(),
		Instructions: req.Instructions,
		Model:        req.Model,
	})
	if err != nil {
		router.RespondWithError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, GenerateResponse{Envelope: out.Envelope, Missing: out.Missing})
}
