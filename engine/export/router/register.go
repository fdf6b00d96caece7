package exportrouter

import (
	"github.com/gin-gonic/gin"

	"github.com/plexify/plexify/engine/export"
)

func Register(apiBase *gin.RouterGroup) {
	exportGroup := apiBase.Group("/export")
	{
		// POST /api/export/docx
		exportGroup.POST("/docx", exportHandler(export.FormatDOCX))

		// POST /api/export/pdf
		exportGroup.POST("/pdf", exportHandler(export.FormatPDF))
	}
}
