package stripe

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperr "threadcraft-api/internal/errors"

	"github.com/rs/zerolog/log"
	"github.com/stripe/stripe-go/v75"
	"github.com/stripe/stripe-go/v75/client"
)

const (
	defaultFetchAttempts = 3
	defaultFetchBackoff  = 500 * time.Millisecond
)

// SubscriptionDetails is the subset of a Stripe subscription the app stores.
type SubscriptionDetails struct {
	ID                 string
	Status             string
	PriceID            string
	CurrentPeriodStart time.Time
	CurrentPeriodEnd   time.Time
	CancelAtPeriodEnd  bool
}

type CheckoutParams struct {
	PriceID    string
	ExternalID string
	Email      string
	SuccessURL string
	CancelURL  string
}

// Client wraps the Stripe API calls the app makes. Only reads are retried.
type Client struct {
	getSubscription func(id string, params *stripe.SubscriptionParams) (*stripe.Subscription, error)
	newCheckout     func(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
	attempts        int
	backoff         time.Duration
}

func NewClient(secretKey string) *Client {
	api := client.New(secretKey, nil)
	return &Client{
		getSubscription: api.Subscriptions.Get,
		newCheckout:     api.CheckoutSessions.New,
		attempts:        defaultFetchAttempts,
		backoff:         defaultFetchBackoff,
	}
}

// FetchSubscription retrieves a subscription, retrying rate limits, server errors
// and network failures with exponential backoff.
func (c *Client) FetchSubscription(ctx context.Context, id string) (*SubscriptionDetails, error) {
	const op = "stripe.fetch_subscription"
	var lastErr error
	for attempt := 0; attempt < c.attempts; attempt++ {
		if attempt > 0 {
			wait := c.backoff * time.Duration(1<<(attempt-1))
			log.Warn().
				Str("subscription_id", id).
				Int("attempt", attempt).
				Dur("backoff", wait).
				Err(lastErr).
				Msg("Retrying Stripe subscription fetch")
			select {
			case <-ctx.Done():
				return nil, apperr.Upstream(op, ctx.Err(), true)
			case <-time.After(wait):
			}
		}

		sub, err := c.getSubscription(id, &stripe.SubscriptionParams{Params: stripe.Params{Context: ctx}})
		if err == nil {
			return detailsFrom(sub), nil
		}
		lastErr = err
		if !transient(err) {
			return nil, apperr.Upstream(op, err, false)
		}
	}
	return nil, apperr.Upstream(op, fmt.Errorf("failed after %d attempts: %w", c.attempts, lastErr), true)
}

func (c *Client) CreateCheckoutSession(ctx context.Context, p CheckoutParams) (string, error) {
	params := &stripe.CheckoutSessionParams{
		Params:     stripe.Params{Context: ctx},
		SuccessURL: stripe.String(p.SuccessURL),
		CancelURL:  stripe.String(p.CancelURL),
		Mode:       stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(p.PriceID), Quantity: stripe.Int64(1)},
		},
		ClientReferenceID: stripe.String(p.ExternalID),
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: map[string]string{"external_id": p.ExternalID},
		},
	}
	if p.Email != "" {
		params.CustomerEmail = stripe.String(p.Email)
	}

	s, err := c.newCheckout(params)
	if err != nil {
		return "", apperr.Upstream("stripe.create_checkout", err, false)
	}
	return s.URL, nil
}

func detailsFrom(sub *stripe.Subscription) *SubscriptionDetails {
	d := &SubscriptionDetails{
		ID:                 sub.ID,
		Status:             string(sub.Status),
		CurrentPeriodStart: time.Unix(sub.CurrentPeriodStart, 0).UTC(),
		CurrentPeriodEnd:   time.Unix(sub.CurrentPeriodEnd, 0).UTC(),
		CancelAtPeriodEnd:  sub.CancelAtPeriodEnd,
	}
	if sub.Items != nil && len(sub.Items.Data) > 0 && sub.Items.Data[0].Price != nil {
		d.PriceID = sub.Items.Data[0].Price.ID
	}
	return d
}

func transient(err error) bool {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		return stripeErr.HTTPStatusCode == 429 || stripeErr.HTTPStatusCode >= 500
	}
	// Anything that is not an API error is a transport failure.
	return true
}
