package users

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"threadcraft-api/internal/app/http/middleware"
	"threadcraft-api/internal/dbtest"
	"threadcraft-api/internal/domain/billing"
	"threadcraft-api/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*gin.Engine, *store.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	st := store.New(dbtest.New(t))
	h := NewHandler(st, 5)

	r := gin.New()
	withCaller := func(c *gin.Context) {
		c.Set(middleware.KeyExternalID, c.GetHeader("X-Test-Caller"))
		c.Next()
	}
	r.GET("/api/me", withCaller, h.GetCurrentUser)
	r.GET("/api/points", withCaller, h.GetPoints)
	return r, st
}

func get(r *gin.Engine, path, caller string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("X-Test-Caller", caller)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGetCurrentUser(t *testing.T) {
	r, st := setup(t)
	ctx := context.Background()
	res, err := st.UpsertUser(ctx, "user_1", "ada@example.com", "Ada")
	require.NoError(t, err)

	start := time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, st.UpsertSubscription(ctx, &billing.Subscription{
		UserID:               res.User.ID,
		StripeSubscriptionID: "sub_123",
		Plan:                 "Pro",
		Status:               "unpaid",
		CurrentPeriodStart:   start,
		CurrentPeriodEnd:     start.AddDate(0, 1, 0),
	}))

	w := get(r, "/api/me", "user_1")
	require.Equal(t, http.StatusOK, w.Code)

	var body MeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, "user_1", body.User.ExternalID)
	require.Equal(t, "ada@example.com", body.User.Email)
	require.Equal(t, 50, body.Billing.Points)
	require.False(t, body.Billing.Active)
	require.Len(t, body.Billing.Subscriptions, 1)
	require.Equal(t, "past_due", body.Billing.Subscriptions[0].Status)
	require.Equal(t, GenerationDTO{Cost: 5, Remaining: 10}, body.Generation)
}

func TestGetCurrentUserUnknown(t *testing.T) {
	r, _ := setup(t)

	w := get(r, "/api/me", "user_ghost")
	require.Equal(t, http.StatusNotFound, w.Code)
	require.JSONEq(t, `{"error":"User not found"}`, w.Body.String())
}

func TestGetPoints(t *testing.T) {
	r, st := setup(t)
	_, err := st.UpsertUser(context.Background(), "user_1", "ada@example.com", "Ada")
	require.NoError(t, err)
	_, err = st.Debit(context.Background(), "user_1", 5)
	require.NoError(t, err)

	w := get(r, "/api/points", "user_1")
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"points":45}`, w.Body.String())

	w = get(r, "/api/points", "user_ghost")
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"points":0}`, w.Body.String())
}
