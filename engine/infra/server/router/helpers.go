package router

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/plexify/plexify/engine/infra/server/appstate"
	"github.com/plexify/plexify/engine/infra/server/middleware/size"
)

// GetAppState returns the state attached by the state middleware, answering
// 500 when it is missing.
func GetAppState(c *gin.Context) *appstate.State {
	state, err := appstate.GetState(c.Request.Context())
	if err != nil {
		RespondWithError(c, NewRequestError(http.StatusInternalServerError, ErrMsgAppStateNotInitialized, err), nil)
		return nil
	}
	return state
}

// GetRequestBody binds the JSON body into T, answering 400 when it does not
// bind and 413 when the body limit cut it off.
func GetRequestBody[T any](c *gin.Context) *T {
	var body T
	if err := c.ShouldBindJSON(&body); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			RespondWithError(c, NewRequestError(http.StatusRequestEntityTooLarge, size.ErrMsgTooLarge, err), nil)
			return nil
		}
		RespondWithError(c, NewRequestError(http.StatusBadRequest, "invalid request body: "+err.Error(), err), nil)
		return nil
	}
	return &body
}
