package genai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	apperr "threadcraft-api/internal/errors"

	"github.com/rs/zerolog/log"
)

const (
	geminiAPIURL         = "https://generativelanguage.googleapis.com/v1beta"
	geminiMaxRetries     = 2
	geminiInitialBackoff = time.Second
	maxResponseBytes     = 1 << 20
)

// Image is inline image input for multimodal prompts.
type Image struct {
	MimeType string
	Data     []byte
}

type Request struct {
	Prompt string
	Image  *Image
}

// GeminiClient calls the generateContent endpoint of the Gemini REST API.
type GeminiClient struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
	backoff time.Duration
}

// NewGeminiClient builds a client. The per-call deadline comes from the caller's context.
func NewGeminiClient(apiKey, model, baseURL string) *GeminiClient {
	if baseURL == "" {
		baseURL = geminiAPIURL
	}
	return &GeminiClient{
		apiKey:  apiKey,
		model:   strings.TrimPrefix(model, "models/"),
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{},
		backoff: geminiInitialBackoff,
	}
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type geminiResponse struct {
	Candidates     []geminiCandidate     `json:"candidates"`
	PromptFeedback *geminiPromptFeedback `json:"promptFeedback,omitempty"`
}

type geminiCandidate struct {
	Content      geminiContent `json:"content"`
	FinishReason string        `json:"finishReason"`
}

type geminiPromptFeedback struct {
	BlockReason string `json:"blockReason,omitempty"`
}

type geminiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Generate returns the model's text. An empty answer is an error.
func (c *GeminiClient) Generate(ctx context.Context, req Request) (string, error) {
	const op = "genai.generate"

	parts := []geminiPart{{Text: req.Prompt}}
	if req.Image != nil {
		parts = append(parts, geminiPart{InlineData: &geminiInlineData{
			MimeType: req.Image.MimeType,
			Data:     base64.StdEncoding.EncodeToString(req.Image.Data),
		}})
	}
	body, err := json.Marshal(geminiRequest{Contents: []geminiContent{{Role: "user", Parts: parts}}})
	if err != nil {
		return "", apperr.Upstream(op, fmt.Errorf("marshal request: %w", err), false)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)

	var respBody []byte
	var lastErr error
	for attempt := 0; attempt <= geminiMaxRetries; attempt++ {
		if attempt > 0 {
			wait := c.backoff * time.Duration(1<<(attempt-1))
			log.Warn().
				Int("attempt", attempt).
				Dur("backoff", wait).
				Str("last_error", lastErr.Error()).
				Msg("Retrying Gemini request after transient error")
			select {
			case <-ctx.Done():
				return "", apperr.Upstream(op, ctx.Err(), true)
			case <-time.After(wait):
			}
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return "", apperr.Upstream(op, fmt.Errorf("create request: %w", err), false)
		}
		httpReq.Header.Set("Content-Type", "application/json")

		resp, err := c.client.Do(httpReq)
		if err != nil {
			if ctx.Err() != nil {
				return "", apperr.Upstream(op, ctx.Err(), true)
			}
			lastErr = fmt.Errorf("connection error: %w", err)
			continue
		}
		respBody, err = io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("read response: %w", err)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("API error (%d): %s", resp.StatusCode, errorMessage(respBody))
			continue
		}
		if resp.StatusCode != http.StatusOK {
			return "", apperr.Upstream(op, fmt.Errorf("API error (%d): %s", resp.StatusCode, errorMessage(respBody)), false)
		}

		lastErr = nil
		break
	}
	if lastErr != nil {
		return "", apperr.Upstream(op, fmt.Errorf("failed after %d retries: %w", geminiMaxRetries, lastErr), true)
	}

	var geminiResp geminiResponse
	if err := json.Unmarshal(respBody, &geminiResp); err != nil {
		return "", apperr.Upstream(op, fmt.Errorf("parse response: %w", err), false)
	}
	if geminiResp.PromptFeedback != nil && geminiResp.PromptFeedback.BlockReason != "" {
		log.Warn().Str("block_reason", geminiResp.PromptFeedback.BlockReason).Msg("Gemini blocked the prompt")
		return "", apperr.Upstream(op, fmt.Errorf("prompt blocked: %s", geminiResp.PromptFeedback.BlockReason), false)
	}
	if len(geminiResp.Candidates) == 0 {
		return "", apperr.Upstream(op, errors.New("no response candidates returned"), false)
	}

	candidate := geminiResp.Candidates[0]
	if candidate.FinishReason == "SAFETY" {
		return "", apperr.Upstream(op, errors.New("response blocked by safety filters"), false)
	}

	var text strings.Builder
	for _, part := range candidate.Content.Parts {
		text.WriteString(part.Text)
	}
	if strings.TrimSpace(text.String()) == "" {
		return "", apperr.Upstream(op, errors.New("empty response from model"), false)
	}
	return text.String(), nil
}

func errorMessage(body []byte) string {
	var errResp geminiError
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
		return errResp.Error.Message
	}
	return strings.TrimSpace(string(body))
}
