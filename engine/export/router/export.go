package exportrouter

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/plexify/plexify/engine/export"
	"github.com/plexify/plexify/engine/infra/server/router"
)

// exportHandler renders the body as a downloadable document in format.
func exportHandler(format export.Format) gin.HandlerFunc {
	return func(c *gin.Context) {
		req := router.GetRequestBody[export.Request](c)
		if req == nil {
			return
		}
		file, err := export.Render(c.Request.Context(), format, req)
		if err != nil {
			router.RespondWithError(c, err, nil)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))
		c.Data(http.StatusOK, file.ContentType, file.Data)
	}
}
