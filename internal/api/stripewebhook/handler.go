package stripewebhooks

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"threadcraft-api/internal/domain/plans"
	"threadcraft-api/internal/infra/metrics"
	stripeinfra "threadcraft-api/internal/infra/stripe"
	"threadcraft-api/internal/logging"
	"threadcraft-api/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v75"
	"github.com/stripe/stripe-go/v75/webhook"
)

const maxBodyBytes = 65536

type SubscriptionFetcher interface {
	FetchSubscription(ctx context.Context, id string) (*stripeinfra.SubscriptionDetails, error)
}

type Handler struct {
	endpointSecret string
	fetcher        SubscriptionFetcher
	catalog        *plans.Catalog
	store          *store.Store
}

func NewHandler(endpointSecret string, fetcher SubscriptionFetcher, catalog *plans.Catalog, st *store.Store) *Handler {
	return &Handler{endpointSecret: endpointSecret, fetcher: fetcher, catalog: catalog, store: st}
}

func (h *Handler) Handle(c *gin.Context) {
	start := time.Now()
	eventType := "unknown"
	defer func() {
		metrics.WebhookRequestsTotal.WithLabelValues("stripe", eventType, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.WebhookDuration.WithLabelValues("stripe").Observe(time.Since(start).Seconds())
	}()
	logger := logging.FromContext(c.Request.Context())

	signature := c.GetHeader("Stripe-Signature")
	if signature == "" {
		logger.Warn().Msg("No Stripe signature found")
		c.JSON(http.StatusBadRequest, gin.H{"error": "No Stripe signature"})
		return
	}

	payload, err := readStripeBody(c, maxBodyBytes)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			logger.Warn().Int64("limit", tooLarge.Limit).Msg("Stripe payload too large")
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Payload too large"})
			return
		}
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Error reading request body"})
		return
	}

	event, err := webhook.ConstructEventWithOptions(
		payload,
		signature,
		h.endpointSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true},
	)
	if err != nil {
		logger.Warn().Err(err).Msg("Stripe signature verification failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Webhook Error: " + err.Error()})
		return
	}
	eventType = string(event.Type)
	logger.Info().Str("event_id", event.ID).Str("type", eventType).Msg("Received Stripe event")

	switch event.Type {
	case "checkout.session.completed":
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid session data"})
			return
		}
		h.handleCheckoutSessionCompleted(c, event.ID, eventType, &session)
		return

	case "customer.subscription.updated", "customer.subscription.deleted":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid subscription data"})
			return
		}
		h.handleSubscriptionChanged(c, &sub)
		return

	default:
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}
}

func readStripeBody(c *gin.Context, maxBytes int64) ([]byte, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
	return io.ReadAll(c.Request.Body)
}
