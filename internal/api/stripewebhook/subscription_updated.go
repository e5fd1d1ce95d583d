package stripewebhooks

import (
	"net/http"
	"time"

	"threadcraft-api/internal/logging"
	"threadcraft-api/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v75"
)

// handleSubscriptionChanged mirrors status, period and cancel flag of an existing
// subscription. Points are never moved here.
func (h *Handler) handleSubscriptionChanged(c *gin.Context, sub *stripe.Subscription) {
	ctx := c.Request.Context()
	found, err := h.store.SyncSubscription(ctx, store.SubscriptionState{
		StripeSubscriptionID: sub.ID,
		Status:               string(sub.Status),
		CurrentPeriodStart:   time.Unix(sub.CurrentPeriodStart, 0).UTC(),
		CurrentPeriodEnd:     time.Unix(sub.CurrentPeriodEnd, 0).UTC(),
		CancelAtPeriodEnd:    sub.CancelAtPeriodEnd,
	})
	if err != nil {
		logging.FromContext(ctx).Error().Err(err).Str("subscription_id", sub.ID).Msg("Error syncing subscription")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error processing subscription", "details": err.Error()})
		return
	}
	if !found {
		logging.FromContext(ctx).Info().Str("subscription_id", sub.ID).Msg("Subscription event for unknown subscription ignored")
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
