package users

import (
	"context"
	"errors"
	"net/http"

	"threadcraft-api/internal/api/respond"
	"threadcraft-api/internal/app/http/middleware"
	"threadcraft-api/internal/domain/billing"
	"threadcraft-api/internal/domain/users"
	apperr "threadcraft-api/internal/errors"

	"github.com/gin-gonic/gin"
)

type Store interface {
	UserByExternalID(ctx context.Context, externalID string) (*users.User, error)
	Balance(ctx context.Context, externalID string) (int, error)
	SubscriptionsForUser(ctx context.Context, userID uint) ([]billing.Subscription, error)
}

type Handler struct {
	store          Store
	generationCost int
}

func NewHandler(st Store, generationCost int) *Handler {
	return &Handler{store: st, generationCost: generationCost}
}

func (h *Handler) GetCurrentUser(c *gin.Context) {
	ctx := c.Request.Context()
	externalID := c.GetString(middleware.KeyExternalID)

	user, err := h.store.UserByExternalID(ctx, externalID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		respond.Error(c, err)
		return
	}

	subs, err := h.store.SubscriptionsForUser(ctx, user.ID)
	if err != nil {
		respond.Error(c, err)
		return
	}

	gen := GenerationDTO{Cost: h.generationCost}
	if h.generationCost > 0 {
		gen.Remaining = user.Points / h.generationCost
	}

	c.JSON(http.StatusOK, MeResponse{
		User:       BuildUserDTO(*user),
		Billing:    BuildBillingDTO(user.Points, subs),
		Generation: gen,
	})
}

// GetPoints answers {points} and reads zero for callers without a row yet.
func (h *Handler) GetPoints(c *gin.Context) {
	points, err := h.store.Balance(c.Request.Context(), c.GetString(middleware.KeyExternalID))
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"points": points})
}
