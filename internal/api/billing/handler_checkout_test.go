package billing

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"threadcraft-api/internal/app/http/middleware"
	"threadcraft-api/internal/domain/plans"
	apperr "threadcraft-api/internal/errors"
	stripeinfra "threadcraft-api/internal/infra/stripe"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

type fakeCheckout struct {
	got []stripeinfra.CheckoutParams
	err error
}

func (f *fakeCheckout) CreateCheckoutSession(_ context.Context, p stripeinfra.CheckoutParams) (string, error) {
	f.got = append(f.got, p)
	if f.err != nil {
		return "", f.err
	}
	return "https://checkout.stripe.test/" + p.PriceID, nil
}

func checkout(t *testing.T, f *fakeCheckout, body string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	catalog, err := plans.ParseCatalog("price_basic:Basic:100,price_pro:Pro:500")
	require.NoError(t, err)

	r := gin.New()
	r.POST("/api/billing/checkout", func(c *gin.Context) {
		c.Set(middleware.KeyExternalID, "user_1")
		c.Set(middleware.KeyEmail, "ada@example.com")
		c.Next()
	}, NewHandler(f, catalog, "https://app.test/").CreateCheckoutSession)

	req := httptest.NewRequest(http.MethodPost, "/api/billing/checkout", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateCheckoutSession(t *testing.T) {
	f := &fakeCheckout{}
	w := checkout(t, f, `{"price_id":"price_pro"}`)

	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"url":"https://checkout.stripe.test/price_pro"}`, w.Body.String())
	require.Len(t, f.got, 1)
	require.Equal(t, "user_1", f.got[0].ExternalID)
	require.Equal(t, "ada@example.com", f.got[0].Email)
	require.Equal(t, "https://app.test/generate?checkout=success", f.got[0].SuccessURL)
}

func TestCreateCheckoutSessionRejectsUnknownPrice(t *testing.T) {
	f := &fakeCheckout{}
	w := checkout(t, f, `{"price_id":"price_free_lunch"}`)

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Empty(t, f.got)

	w = checkout(t, f, `{}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateCheckoutSessionStripeFailure(t *testing.T) {
	f := &fakeCheckout{err: apperr.Upstream("stripe.create_checkout", errors.New("card_declined"), false)}
	w := checkout(t, f, `{"price_id":"price_basic"}`)
	require.Equal(t, http.StatusInternalServerError, w.Code)
}
