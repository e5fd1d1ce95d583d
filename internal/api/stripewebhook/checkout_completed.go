package stripewebhooks

import (
	"net/http"

	"threadcraft-api/internal/domain/billing"
	"threadcraft-api/internal/logging"
	"threadcraft-api/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v75"
)

// handleCheckoutSessionCompleted turns a paid checkout into a subscription row and
// a points credit. Validation failures answer 400 before anything is written.
func (h *Handler) handleCheckoutSessionCompleted(c *gin.Context, eventID, eventType string, session *stripe.CheckoutSession) {
	ctx := c.Request.Context()
	logger := logging.FromContext(ctx)

	externalID := session.ClientReferenceID
	subscriptionID := ""
	if session.Subscription != nil {
		subscriptionID = session.Subscription.ID
	}
	if externalID == "" || subscriptionID == "" {
		logger.Warn().Str("session_id", session.ID).Msg("Missing client_reference_id or subscription in session")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid session data"})
		return
	}

	sub, err := h.fetcher.FetchSubscription(ctx, subscriptionID)
	if err != nil {
		logger.Error().Err(err).Str("subscription_id", subscriptionID).Msg("Error retrieving subscription")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error processing subscription", "details": err.Error()})
		return
	}
	if sub.PriceID == "" {
		logger.Warn().Str("subscription_id", subscriptionID).Msg("No items found in subscription")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid subscription data"})
		return
	}

	plan, ok := h.catalog.Lookup(sub.PriceID)
	if !ok {
		logger.Warn().Str("price_id", sub.PriceID).Msg("Unknown price ID")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown price ID"})
		return
	}

	out, err := h.store.ApplySubscriptionCredit(ctx, store.SubscriptionCredit{
		Provider:   billing.ProviderStripe,
		EventID:    eventID,
		EventType:  eventType,
		ExternalID: externalID,
		Points:     plan.Points,
		Subscription: billing.Subscription{
			StripeSubscriptionID: subscriptionID,
			Plan:                 plan.Name,
			Status:               sub.Status,
			CurrentPeriodStart:   sub.CurrentPeriodStart,
			CurrentPeriodEnd:     sub.CurrentPeriodEnd,
			CancelAtPeriodEnd:    sub.CancelAtPeriodEnd,
		},
	})
	if err != nil {
		logger.Error().Err(err).Str("external_id", externalID).Msg("Error processing subscription")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error processing subscription", "details": err.Error()})
		return
	}

	if !out.Applied {
		logger.Info().Str("event_id", eventID).Msg("Stripe event already applied")
	} else {
		logger.Info().
			Str("external_id", externalID).
			Str("plan", plan.Name).
			Int("points_added", plan.Points).
			Int("balance", out.Balance).
			Msg("Subscription processed")
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
