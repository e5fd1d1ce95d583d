package billing

import (
	"context"
	"net/http"
	"strings"

	"threadcraft-api/internal/api/respond"
	"threadcraft-api/internal/app/http/middleware"
	"threadcraft-api/internal/domain/plans"
	stripeinfra "threadcraft-api/internal/infra/stripe"
	"threadcraft-api/internal/logging"

	"github.com/gin-gonic/gin"
)

type CheckoutCreator interface {
	CreateCheckoutSession(ctx context.Context, p stripeinfra.CheckoutParams) (string, error)
}

type Handler struct {
	checkout CheckoutCreator
	catalog  *plans.Catalog
	appURL   string
}

func NewHandler(checkout CheckoutCreator, catalog *plans.Catalog, appURL string) *Handler {
	return &Handler{checkout: checkout, catalog: catalog, appURL: strings.TrimRight(appURL, "/")}
}

// CreateCheckoutSession starts a subscription checkout for a catalog price. The
// session carries the caller's external id so the payment webhook can credit them.
func (h *Handler) CreateCheckoutSession(c *gin.Context) {
	var body struct {
		PriceID string `json:"price_id"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || strings.TrimSpace(body.PriceID) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing or invalid price_id"})
		return
	}

	// allow-list price id
	plan, ok := h.catalog.Lookup(strings.TrimSpace(body.PriceID))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown plan/price_id"})
		return
	}

	externalID := c.GetString(middleware.KeyExternalID)
	url, err := h.checkout.CreateCheckoutSession(c.Request.Context(), stripeinfra.CheckoutParams{
		PriceID:    plan.PriceID,
		ExternalID: externalID,
		Email:      c.GetString(middleware.KeyEmail),
		SuccessURL: h.appURL + "/generate?checkout=success",
		CancelURL:  h.appURL + "/?checkout=canceled",
	})
	if err != nil {
		respond.Error(c, err)
		return
	}

	logging.FromContext(c.Request.Context()).Info().
		Str("external_id", externalID).
		Str("plan", plan.Name).
		Msg("Checkout session created")
	c.JSON(http.StatusOK, gin.H{"url": url})
}
