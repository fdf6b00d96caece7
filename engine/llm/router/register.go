package llmrouter

import "github.com/gin-gonic/gin"

func Register(apiBase *gin.RouterGroup) {
	llmGroup := apiBase.Group("/llm")
	{
		// POST /api/llm/generate
		// Free-form completion normalized across providers
		llmGroup.POST("/generate", generate)
	}
}
