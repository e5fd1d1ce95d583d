package stripewebhooks

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"threadcraft-api/internal/dbtest"
	"threadcraft-api/internal/domain/plans"
	apperr "threadcraft-api/internal/errors"
	stripeinfra "threadcraft-api/internal/infra/stripe"
	"threadcraft-api/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v75/webhook"
)

const (
	testSecret = "whsec_test_secret"
	proPrice   = "price_1PyFN0Bibz3ZDixDqm9eYL8W"
)

type fakeFetcher struct {
	sub   *stripeinfra.SubscriptionDetails
	err   error
	calls int
}

func (f *fakeFetcher) FetchSubscription(_ context.Context, id string) (*stripeinfra.SubscriptionDetails, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := *f.sub
	out.ID = id
	return &out, nil
}

type fixture struct {
	router  *gin.Engine
	store   *store.Store
	fetcher *fakeFetcher
}

func setup(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	st := store.New(dbtest.New(t))
	_, err := st.UpsertUser(context.Background(), "user_1", "ada@example.com", "Ada")
	require.NoError(t, err)

	catalog, err := plans.ParseCatalog("price_1PyFKGBibz3ZDixDAaJ3HO74:Basic:100," + proPrice + ":Pro:500")
	require.NoError(t, err)

	start := time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)
	fetcher := &fakeFetcher{sub: &stripeinfra.SubscriptionDetails{
		Status:             "active",
		PriceID:            proPrice,
		CurrentPeriodStart: start,
		CurrentPeriodEnd:   start.AddDate(0, 1, 0),
	}}

	r := gin.New()
	r.POST("/api/webhooks/stripe", NewHandler(testSecret, fetcher, catalog, st).Handle)
	return &fixture{router: r, store: st, fetcher: fetcher}
}

func eventJSON(t *testing.T, id, eventType string, object map[string]any) string {
	t.Helper()
	b, err := json.Marshal(map[string]any{
		"id":          id,
		"object":      "event",
		"type":        eventType,
		"api_version": "2024-06-20",
		"created":     time.Now().Unix(),
		"data":        map[string]any{"object": object},
	})
	require.NoError(t, err)
	return string(b)
}

func checkoutEvent(t *testing.T, id string) string {
	return eventJSON(t, id, "checkout.session.completed", map[string]any{
		"id":                  "cs_test_1",
		"object":              "checkout.session",
		"client_reference_id": "user_1",
		"subscription":        "sub_123",
	})
}

func signedWebhookRequest(t *testing.T, secret, payload string) *http.Request {
	t.Helper()
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   []byte(payload),
		Secret:    secret,
		Timestamp: time.Now(),
		Scheme:    "v1",
	})

	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/stripe", bytes.NewReader(signed.Payload))
	req.Header.Set("Stripe-Signature", signed.Header)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func (f *fixture) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *fixture) balance(t *testing.T) int {
	t.Helper()
	b, err := f.store.Balance(context.Background(), "user_1")
	require.NoError(t, err)
	return b
}

func TestCheckoutCompletedCreditsProPlan(t *testing.T) {
	f := setup(t)

	w := f.do(signedWebhookRequest(t, testSecret, checkoutEvent(t, "evt_1")))
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"received":true}`, w.Body.String())
	require.Equal(t, 550, f.balance(t))

	sub, err := f.store.SubscriptionByStripeID(context.Background(), "sub_123")
	require.NoError(t, err)
	require.Equal(t, "Pro", sub.Plan)
	require.Equal(t, "active", sub.Status)
	require.Equal(t, time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC), sub.CurrentPeriodEnd.UTC())
}

func TestRedeliveredEventCreditsOnce(t *testing.T) {
	f := setup(t)

	require.Equal(t, http.StatusOK, f.do(signedWebhookRequest(t, testSecret, checkoutEvent(t, "evt_1"))).Code)
	require.Equal(t, http.StatusOK, f.do(signedWebhookRequest(t, testSecret, checkoutEvent(t, "evt_1"))).Code)
	require.Equal(t, 550, f.balance(t))

	// A different event for the same subscription is a new payment.
	require.Equal(t, http.StatusOK, f.do(signedWebhookRequest(t, testSecret, checkoutEvent(t, "evt_2"))).Code)
	require.Equal(t, 1050, f.balance(t))
}

func TestMissingSignature(t *testing.T) {
	f := setup(t)
	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/stripe", bytes.NewBufferString(checkoutEvent(t, "evt_1")))

	w := f.do(req)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.JSONEq(t, `{"error":"No Stripe signature"}`, w.Body.String())
}

func TestTamperedPayloadRejectedWithoutMutation(t *testing.T) {
	f := setup(t)
	req := signedWebhookRequest(t, "whsec_other_secret", checkoutEvent(t, "evt_1"))

	w := f.do(req)
	require.Equal(t, http.StatusBadRequest, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Contains(t, body["error"], "Webhook Error: ")
	require.Equal(t, 50, f.balance(t))
	require.Zero(t, f.fetcher.calls)
}

func TestInvalidSessionData(t *testing.T) {
	f := setup(t)
	payload := eventJSON(t, "evt_1", "checkout.session.completed", map[string]any{
		"id": "cs_1", "object": "checkout.session", "client_reference_id": "user_1",
	})

	w := f.do(signedWebhookRequest(t, testSecret, payload))
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.JSONEq(t, `{"error":"Invalid session data"}`, w.Body.String())
	require.Zero(t, f.fetcher.calls)
}

func TestUnknownPriceRejectedBeforeMutation(t *testing.T) {
	f := setup(t)
	f.fetcher.sub.PriceID = "price_unknown"

	w := f.do(signedWebhookRequest(t, testSecret, checkoutEvent(t, "evt_1")))
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.JSONEq(t, `{"error":"Unknown price ID"}`, w.Body.String())
	require.Equal(t, 50, f.balance(t))
	_, err := f.store.SubscriptionByStripeID(context.Background(), "sub_123")
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestSubscriptionWithoutItems(t *testing.T) {
	f := setup(t)
	f.fetcher.sub.PriceID = ""

	w := f.do(signedWebhookRequest(t, testSecret, checkoutEvent(t, "evt_1")))
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.JSONEq(t, `{"error":"Invalid subscription data"}`, w.Body.String())
}

func TestFetchFailureIs500AndRetrySafe(t *testing.T) {
	f := setup(t)
	f.fetcher.err = apperr.Upstream("stripe.fetch_subscription", errors.New("stripe down"), true)

	w := f.do(signedWebhookRequest(t, testSecret, checkoutEvent(t, "evt_1")))
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Contains(t, w.Body.String(), "Error processing subscription")

	f.fetcher.err = nil
	w = f.do(signedWebhookRequest(t, testSecret, checkoutEvent(t, "evt_1")))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 550, f.balance(t))
}

func TestUnknownUserIs500(t *testing.T) {
	f := setup(t)
	payload := eventJSON(t, "evt_1", "checkout.session.completed", map[string]any{
		"id": "cs_1", "object": "checkout.session", "client_reference_id": "user_ghost", "subscription": "sub_9",
	})

	w := f.do(signedWebhookRequest(t, testSecret, payload))
	require.Equal(t, http.StatusInternalServerError, w.Code)
	seen, err := f.store.WebhookEventSeen(context.Background(), "stripe", "evt_1")
	require.NoError(t, err)
	require.False(t, seen)
}

func TestOtherEventsAcknowledged(t *testing.T) {
	f := setup(t)
	payload := eventJSON(t, "evt_1", "invoice.paid", map[string]any{"id": "in_1", "object": "invoice"})

	w := f.do(signedWebhookRequest(t, testSecret, payload))
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"received":true}`, w.Body.String())
}

func TestSubscriptionDeletedSyncsStatus(t *testing.T) {
	f := setup(t)
	require.Equal(t, http.StatusOK, f.do(signedWebhookRequest(t, testSecret, checkoutEvent(t, "evt_1"))).Code)

	payload := eventJSON(t, "evt_2", "customer.subscription.deleted", map[string]any{
		"id": "sub_123", "object": "subscription", "status": "canceled",
		"current_period_start": 1725148800, "current_period_end": 1727740800,
	})
	w := f.do(signedWebhookRequest(t, testSecret, payload))
	require.Equal(t, http.StatusOK, w.Code)

	sub, err := f.store.SubscriptionByStripeID(context.Background(), "sub_123")
	require.NoError(t, err)
	require.Equal(t, "canceled", sub.Status)
	require.Equal(t, 550, f.balance(t), fmt.Sprintf("points must not move on %s", "deletion"))
}

func TestOversizedPayloadIsRejectedNotRetried(t *testing.T) {
	f := setup(t)
	payload := eventJSON(t, "evt_big", "invoice.paid", map[string]any{
		"id": "in_1", "object": "invoice", "description": strings.Repeat("x", maxBodyBytes),
	})

	w := f.do(signedWebhookRequest(t, testSecret, payload))
	require.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	require.JSONEq(t, `{"error":"Payload too large"}`, w.Body.String())
}
