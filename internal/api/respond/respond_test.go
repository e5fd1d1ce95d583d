package respond

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	apperr "threadcraft-api/internal/errors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func render(err error) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	Error(c, err)
	return w
}

func TestErrorRendersClientMessage(t *testing.T) {
	w := render(apperr.Validation("generation.validate", "prompt is required"))
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.JSONEq(t, `{"error":"prompt is required"}`, w.Body.String())

	w = render(apperr.InsufficientPoints("generation.generate", 3, 5))
	require.Equal(t, http.StatusPaymentRequired, w.Code)
	require.JSONEq(t, `{"error":"balance 3 is below required 5","code":"insufficient_points"}`, w.Body.String())
}

func TestErrorHidesServerDetails(t *testing.T) {
	w := render(apperr.Persistence("ledger.debit", errors.New("pq: connection refused")))
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.JSONEq(t, `{"error":"Internal server error"}`, w.Body.String())
}
