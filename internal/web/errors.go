package web

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/Joseda-hg/taskmaster/internal/app"
)

const (
	codeNotFound      = "NOT_FOUND"
	codeInvalidInput  = "INVALID_INPUT"
	codeInternalError = "INTERNAL_ERROR"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func invalidInput(err error) error {
	return fmt.Errorf("%w: %v", app.ErrInvalidTask, err)
}

// writeError maps application errors to a status and a JSON body. Anything
// unrecognised is reported as an internal error without its message.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, app.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, errorResponse{Code: codeNotFound, Message: err.Error()})
	case errors.Is(err, app.ErrInvalidTask):
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Code: codeInvalidInput, Message: err.Error()})
	default:
		log.WithError(err).WithField("path", c.Request.URL.Path).Error("web request failed")
		c.AbortWithStatusJSON(http.StatusInternalServerError, errorResponse{Code: codeInternalError, Message: "internal error"})
	}
}
