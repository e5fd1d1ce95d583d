package genai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	apperr "threadcraft-api/internal/errors"

	"github.com/stretchr/testify/require"
)

func newTestClient(url string) *GeminiClient {
	c := NewGeminiClient("key", "gemini-1.5-pro", url)
	c.backoff = time.Millisecond
	return c
}

func textResponse(text string) string {
	b, _ := json.Marshal(geminiResponse{Candidates: []geminiCandidate{{
		Content:      geminiContent{Role: "model", Parts: []geminiPart{{Text: text}}},
		FinishReason: "STOP",
	}}})
	return string(b)
}

func TestGenerateSendsPromptAndImage(t *testing.T) {
	var got geminiRequest
	var path, key string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		key = r.URL.Query().Get("key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(textResponse("a caption")))
	}))
	defer srv.Close()

	out, err := newTestClient(srv.URL).Generate(context.Background(), Request{
		Prompt: "describe",
		Image:  &Image{MimeType: "image/png", Data: []byte{1, 2, 3}},
	})
	require.NoError(t, err)
	require.Equal(t, "a caption", out)
	require.Equal(t, "/models/gemini-1.5-pro:generateContent", path)
	require.Equal(t, "key", key)
	require.Len(t, got.Contents, 1)
	require.Len(t, got.Contents[0].Parts, 2)
	require.Equal(t, "describe", got.Contents[0].Parts[0].Text)
	require.Equal(t, "image/png", got.Contents[0].Parts[1].InlineData.MimeType)
	require.Equal(t, "AQID", got.Contents[0].Parts[1].InlineData.Data)
}

func TestGenerateRetriesTransientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"error":{"code":503,"message":"overloaded"}}`))
			return
		}
		_, _ = w.Write([]byte(textResponse("ok")))
	}))
	defer srv.Close()

	out, err := newTestClient(srv.URL).Generate(context.Background(), Request{Prompt: "p"})
	require.NoError(t, err)
	require.Equal(t, "ok", out)
	require.EqualValues(t, 3, calls.Load())
}

func TestGenerateGivesUpAfterRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Generate(context.Background(), Request{Prompt: "p"})
	require.ErrorIs(t, err, apperr.ErrUpstream)
	require.True(t, apperr.IsRetryable(err))
}

func TestGenerateDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":400,"message":"API key not valid"}}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Generate(context.Background(), Request{Prompt: "p"})
	require.ErrorIs(t, err, apperr.ErrUpstream)
	require.ErrorContains(t, err, "API key not valid")
	require.False(t, apperr.IsRetryable(err))
	require.EqualValues(t, 1, calls.Load())
}

func TestGenerateRejectsEmptyAndBlockedResponses(t *testing.T) {
	cases := map[string]string{
		"empty text":    textResponse("   "),
		"no candidates": `{"candidates":[]}`,
		"blocked":       `{"promptFeedback":{"blockReason":"SAFETY"}}`,
		"safety finish": `{"candidates":[{"content":{"parts":[{"text":"x"}]},"finishReason":"SAFETY"}]}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			}))
			defer srv.Close()

			_, err := newTestClient(srv.URL).Generate(context.Background(), Request{Prompt: "p"})
			require.ErrorIs(t, err, apperr.ErrUpstream)
		})
	}
}

func TestGenerateHonoursDeadline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := newTestClient(srv.URL).Generate(ctx, Request{Prompt: "p"})
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.True(t, apperr.IsRetryable(err))
}
