// Package respond renders categorised errors as JSON responses.
package respond

import (
	"errors"
	"net/http"

	apperr "threadcraft-api/internal/errors"
	"threadcraft-api/internal/logging"

	"github.com/gin-gonic/gin"
)

// Error writes {"error": msg} with the status of err's kind. Client errors carry
// the underlying message; server errors are logged and answered generically.
func Error(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	_ = c.Error(err)

	if status >= http.StatusInternalServerError {
		logging.FromContext(c.Request.Context()).Error().Err(err).Str("kind", string(apperr.KindOf(err))).Msg("Request failed")
		c.JSON(status, gin.H{"error": "Internal server error"})
		return
	}

	body := gin.H{"error": clientMessage(err)}
	if apperr.KindOf(err) == apperr.KindInsufficientPoints {
		body["code"] = string(apperr.KindInsufficientPoints)
	}
	c.JSON(status, body)
}

func clientMessage(err error) string {
	var e *apperr.Error
	if errors.As(err, &e) && e.Err != nil {
		return e.Err.Error()
	}
	return err.Error()
}
