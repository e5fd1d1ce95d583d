package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorIsMatchesKind(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", InsufficientPoints("ledger.debit", 3, 5))

	require.True(t, stderrors.Is(err, ErrInsufficientPoints))
	require.False(t, stderrors.Is(err, ErrNotFound))
	require.Equal(t, KindInsufficientPoints, KindOf(err))
	require.Contains(t, err.Error(), "balance 3 is below required 5")
}

func TestErrorUnwrapsCause(t *testing.T) {
	err := Upstream("genai.generate", context.DeadlineExceeded, true)

	require.True(t, stderrors.Is(err, context.DeadlineExceeded))
	require.True(t, stderrors.Is(err, ErrUpstream))
	require.True(t, IsRetryable(err))
}

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", Validation("op", "missing %s", "prompt"), http.StatusBadRequest},
		{"authentication", Authentication("op", stderrors.New("bad signature")), http.StatusBadRequest},
		{"not found", NotFound("op", "user %s", "u1"), http.StatusNotFound},
		{"conflict", Conflict("op", "email bound"), http.StatusConflict},
		{"insufficient", InsufficientPoints("op", 0, 5), http.StatusPaymentRequired},
		{"upstream", Upstream("op", stderrors.New("503"), true), http.StatusInternalServerError},
		{"persistence", Persistence("op", stderrors.New("disk")), http.StatusInternalServerError},
		{"plain", stderrors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, HTTPStatus(tc.err))
		})
	}
}

func TestPlainErrorsAreNotRetryable(t *testing.T) {
	require.False(t, IsRetryable(stderrors.New("boom")))
	require.Equal(t, Kind(""), KindOf(stderrors.New("boom")))
}
