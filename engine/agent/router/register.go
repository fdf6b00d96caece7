package agentrouter

import "github.com/gin-gonic/gin"

func Register(apiBase *gin.RouterGroup) {
	agentsGroup := apiBase.Group("/agents")
	{
		// GET /api/agents
		// List the structured-output agents
		agentsGroup.GET("", listAgents)

		// POST /api/agents/:agent_id
		// Generate a versioned envelope from the selected documents
		agentsGroup.POST("/:agent_id", generateAgentOutput)
	}
}
