package podcastrouter

import "github.com/gin-gonic/gin"

func Register(apiBase *gin.RouterGroup) {
	podcastGroup := apiBase.Group("/podcast")
	{
		// POST /api/podcast/generate
		// Script and voice a two-speaker episode over the selected documents
		podcastGroup.POST("/generate", generatePodcast)
	}
}
