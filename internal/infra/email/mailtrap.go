package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const mailtrapSendURL = "https://send.api.mailtrap.io/api/send"

// MailtrapSender delivers through the Mailtrap sending API.
type MailtrapSender struct {
	token      string
	endpoint   string
	httpClient *http.Client
}

func NewMailtrapSender(token string) *MailtrapSender {
	return &MailtrapSender{
		token:    token,
		endpoint: mailtrapSendURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// WithEndpoint points the sender at another URL, e.g. a test server.
func (m *MailtrapSender) WithEndpoint(url string) *MailtrapSender {
	m.endpoint = url
	return m
}

type mailtrapAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type mailtrapRequest struct {
	From     mailtrapAddress   `json:"from"`
	To       []mailtrapAddress `json:"to"`
	Subject  string            `json:"subject"`
	HTML     string            `json:"html,omitempty"`
	Text     string            `json:"text,omitempty"`
	Category string            `json:"category,omitempty"`
}

type mailtrapResponse struct {
	Success bool     `json:"success"`
	Errors  []string `json:"errors"`
}

func (m *MailtrapSender) Send(ctx context.Context, msg Message) error {
	payload := mailtrapRequest{
		From:     mailtrapAddress{Email: msg.From, Name: msg.FromName},
		To:       []mailtrapAddress{{Email: msg.To}},
		Subject:  msg.Subject,
		HTML:     msg.HTML,
		Text:     msg.Text,
		Category: msg.Category,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal mailtrap request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create mailtrap request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.token)

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("mailtrap request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	if resp.StatusCode != http.StatusOK {
		var mtResp mailtrapResponse
		_ = json.Unmarshal(respBody, &mtResp)
		return fmt.Errorf("mailtrap error (HTTP %d): %s", resp.StatusCode, strings.Join(mtResp.Errors, "; "))
	}

	return nil
}
