package ttsrouter

import "github.com/gin-gonic/gin"

func Register(apiBase *gin.RouterGroup) {
	ttsGroup := apiBase.Group("/tts")
	{
		// POST /api/tts/generate
		// Narrate markdown content into a stored MP3
		ttsGroup.POST("/generate", generateAudio)
	}
}
