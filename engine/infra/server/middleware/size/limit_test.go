package size

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newEngine(limit int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/echo", BodySizeLimiter(limit), func(c *gin.Context) {
		data, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.Status(http.StatusBadRequest)
			return
		}
		c.String(http.StatusOK, "%d", len(data))
	})
	return r
}

func TestBodySizeLimiter(t *testing.T) {
	t.Run("Should pass bodies within the limit", func(t *testing.T) {
		w := httptest.NewRecorder()
		newEngine(16).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader("small")))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "5", w.Body.String())
	})

	t.Run("Should answer 413 when the declared length is too large", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(strings.Repeat("a", 64)))
		newEngine(16).ServeHTTP(w, req)
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		assert.JSONEq(t, `{"error":"Request body too large"}`, w.Body.String())
	})

	t.Run("Should cut off bodies without a declared length", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(strings.Repeat("a", 64)))
		req.ContentLength = -1
		newEngine(16).ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Should not limit when the limit is zero", func(t *testing.T) {
		w := httptest.NewRecorder()
		newEngine(0).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(strings.Repeat("a", 64))))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
