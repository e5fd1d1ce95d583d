package welcome

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

type recordingWelcomer struct {
	err  error
	sent []string
}

func (w *recordingWelcomer) SendWelcome(_ context.Context, to, name string) error {
	w.sent = append(w.sent, to+"|"+name)
	return w.err
}

func send(t *testing.T, w *recordingWelcomer, body string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/send-welcome-email", NewHandler(w).SendWelcomeEmail)

	req := httptest.NewRequest(http.MethodPost, "/api/send-welcome-email", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestSendWelcomeEmail(t *testing.T) {
	w := &recordingWelcomer{}
	rec := send(t, w, `{"email":"ada@example.com","name":"Ada"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"message":"Welcome email sent successfully"}`, rec.Body.String())
	require.Equal(t, []string{"ada@example.com|Ada"}, w.sent)
}

func TestSendWelcomeEmailRequiresFields(t *testing.T) {
	for _, body := range []string{`{"email":"ada@example.com"}`, `{"name":"Ada"}`, `not json`} {
		w := &recordingWelcomer{}
		rec := send(t, w, body)
		require.Equal(t, http.StatusBadRequest, rec.Code, body)
		require.JSONEq(t, `{"error":"Email and name are required"}`, rec.Body.String())
		require.Empty(t, w.sent)
	}
}

func TestSendWelcomeEmailSenderFailure(t *testing.T) {
	rec := send(t, &recordingWelcomer{err: errors.New("mailtrap 401")}, `{"email":"ada@example.com","name":"Ada"}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.JSONEq(t, `{"error":"Failed to send welcome email"}`, rec.Body.String())
}
