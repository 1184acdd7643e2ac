package response

import (
	"net/http"

	apperrors "venuehub/internal/errors"
	"venuehub/internal/logger"

	"github.com/gin-gonic/gin"
)

// Envelope is the body of every API response
type Envelope struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func OK(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, Envelope{Message: message, Data: data})
}

func Created(c *gin.Context, message string, data any) {
	c.JSON(http.StatusCreated, Envelope{Message: message, Data: data})
}

// Error maps err onto its HTTP status and error kind. Unclassified errors are
// logged and reported as internal without leaking their text.
func Error(c *gin.Context, err error) {
	status := apperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError && status != http.StatusBadGateway {
		logger.WithContext(c.Request.Context()).Error("Request failed", "path", c.FullPath(), "error", err)
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, Envelope{
		Message: apperrors.Message(err),
		Error:   apperrors.Code(err),
	})
}

// BadRequest reports a malformed request body or query.
func BadRequest(c *gin.Context, err error) {
	Error(c, apperrors.Wrap(apperrors.ErrInvalidInput, err, "invalid request: %s", err.Error()))
}
