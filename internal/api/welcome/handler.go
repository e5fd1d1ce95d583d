package welcome

import (
	"context"
	"net/http"
	"strings"

	"threadcraft-api/internal/logging"

	"github.com/gin-gonic/gin"
)

type Welcomer interface {
	SendWelcome(ctx context.Context, to, name string) error
}

type Handler struct {
	welcomer Welcomer
}

func NewHandler(w Welcomer) *Handler {
	return &Handler{welcomer: w}
}

func (h *Handler) SendWelcomeEmail(c *gin.Context) {
	var body struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	_ = c.ShouldBindJSON(&body)
	email, name := strings.TrimSpace(body.Email), strings.TrimSpace(body.Name)
	if email == "" || name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and name are required"})
		return
	}

	if err := h.welcomer.SendWelcome(c.Request.Context(), email, name); err != nil {
		logging.FromContext(c.Request.Context()).Error().Err(err).Str("to", email).Msg("Error sending welcome email")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send welcome email"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Welcome email sent successfully"})
}
