package exportrouter

import (
	"archive/zip"
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	Register(r.Group("/api"))
	return r
}

func post(r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestExport(t *testing.T) {
	brief := `{"boardBrief":{"output":{"title":"Q3","executiveSummary":"On track.","keyPoints":["a"]}},` +
		`"filename":"Q3 Brief.docx"}`

	t.Run("Should stream a docx attachment", func(t *testing.T) {
		w := post(setupRouter(), "/api/export/docx", brief)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, `attachment; filename="q3-brief.docx"`, w.Header().Get("Content-Disposition"))
		assert.Contains(t, w.Header().Get("Content-Type"), "wordprocessingml")
		zr, err := zip.NewReader(bytes.NewReader(w.Body.Bytes()), int64(w.Body.Len()))
		require.NoError(t, err)
		names := make([]string, 0, len(zr.File))
		for _, f := range zr.File {
			names = append(names, f.Name)
		}
		assert.Contains(t, names, "word/document.xml")
	})

	t.Run("Should stream a pdf from editor content", func(t *testing.T) {
		w := post(setupRouter(), "/api/export/pdf", `{"editorContent":"# Notes\n\nHello"}`)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
		assert.Equal(t, `attachment; filename="board-brief.pdf"`, w.Header().Get("Content-Disposition"))
		assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF-")))
	})

	t.Run("Should answer 400 without content", func(t *testing.T) {
		w := post(setupRouter(), "/api/export/pdf", `{}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "editorContent is required")
	})

	t.Run("Should answer 400 for an undecodable brief", func(t *testing.T) {
		w := post(setupRouter(), "/api/export/docx", `{"boardBrief":[1,2]}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "invalid board brief")
	})
}
