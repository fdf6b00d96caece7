package router

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/plexify/plexify/engine/core"
	"github.com/plexify/plexify/engine/source"
	"github.com/plexify/plexify/pkg/logger"
)

// RespondProblem writes the JSON error envelope and aborts the chain.
func RespondProblem(c *gin.Context, problem *core.Problem) {
	prepared := core.NormalizeProblem(problem)
	body := core.BuildProblemBody(prepared)
	writeProblemResponse(c, prepared, body)
}

// RespondWithError classifies err and writes it as {"error": message}.
// extras are merged into the body, e.g. {"success": false}.
func RespondWithError(c *gin.Context, err error, extras map[string]any) {
	status, message := Classify(err)
	problem := &core.Problem{Status: status, Title: message, Extras: map[string]any{}}
	for k, v := range extras {
		problem.Extras[k] = v
	}
	var loadErr *source.LoadError
	if errors.As(err, &loadErr) {
		problem.Extras["missing"] = loadErr.Missing
		problem.Extras["available"] = loadErr.Available
	}
	if status >= http.StatusInternalServerError {
		problem.Detail = core.RedactString(err.Error())
		if problem.Detail == message {
			problem.Detail = ""
		}
	}
	RespondProblem(c, problem)
}

func writeProblemResponse(c *gin.Context, problem *core.Problem, body map[string]any) {
	logProblem(c, problem)
	payload, err := json.Marshal(body)
	if err != nil {
		logger.FromContext(c.Request.Context()).Error("failed to marshal problem", "err", err)
		fallback := []byte(`{"error":"Internal Server Error"}`)
		c.Data(http.StatusInternalServerError, "application/json; charset=utf-8", fallback)
		c.Abort()
		return
	}
	c.Data(problem.Status, "application/json; charset=utf-8", payload)
	c.Abort()
}

func logProblem(c *gin.Context, problem *core.Problem) {
	log := logger.FromContext(c.Request.Context())
	route := c.FullPath()
	if route == "" {
		route = c.Request.URL.Path
	}
	fields := []any{
		"status", problem.Status,
		"title", problem.Title,
		"detail", problem.Detail,
		"route", route,
		"path", c.Request.URL.Path,
	}
	if requestID := c.Writer.Header().Get("X-Request-ID"); requestID != "" {
		fields = append(fields, "request_id", requestID)
	}
	if problem.Status >= http.StatusInternalServerError {
		log.Error("request failed", fields...)
		return
	}
	log.Warn("request failed", fields...)
}
