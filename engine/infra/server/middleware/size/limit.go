package size

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrMsgTooLarge is the client message for oversized request bodies.
const ErrMsgTooLarge = "Request body too large"

// BodySizeLimiter caps request bodies at limit bytes. Requests that declare a
// larger Content-Length are answered with 413 before any handler runs; bodies
// without a declared length are cut off by http.MaxBytesReader.
func BodySizeLimiter(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limit <= 0 {
			c.Next()
			return
		}
		if c.Request.ContentLength > limit {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{"error": ErrMsgTooLarge})
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}
