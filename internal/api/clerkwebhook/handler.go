package clerkwebhook

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	apperr "threadcraft-api/internal/errors"
	"threadcraft-api/internal/infra/metrics"
	"threadcraft-api/internal/logging"
	"threadcraft-api/internal/store"

	"github.com/gin-gonic/gin"
	svix "github.com/svix/svix-webhooks/go"
)

const maxBodyBytes = 1 << 20

type Accounts interface {
	Upsert(ctx context.Context, externalID, email, name string) (store.UpsertResult, error)
}

type Handler struct {
	wh       *svix.Webhook
	accounts Accounts
}

// NewHandler builds the handler for the Clerk signing secret ("whsec_...").
func NewHandler(signingSecret string, accounts Accounts) (*Handler, error) {
	wh, err := svix.NewWebhook(signingSecret)
	if err != nil {
		return nil, err
	}
	return &Handler{wh: wh, accounts: accounts}, nil
}

type clerkEvent struct {
	Type string        `json:"type"`
	Data clerkUserData `json:"data"`
}

type clerkUserData struct {
	ID             string `json:"id"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	EmailAddresses []struct {
		EmailAddress string `json:"email_address"`
	} `json:"email_addresses"`
}

func (d clerkUserData) primaryEmail() string {
	if len(d.EmailAddresses) == 0 {
		return ""
	}
	return strings.TrimSpace(d.EmailAddresses[0].EmailAddress)
}

func (d clerkUserData) fullName() string {
	return strings.TrimSpace(strings.TrimSpace(d.FirstName) + " " + strings.TrimSpace(d.LastName))
}

func (h *Handler) Handle(c *gin.Context) {
	start := time.Now()
	eventType := "unknown"
	defer func() {
		metrics.WebhookRequestsTotal.WithLabelValues("clerk", eventType, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.WebhookDuration.WithLabelValues("clerk").Observe(time.Since(start).Seconds())
	}()
	ctx := c.Request.Context()
	logger := logging.FromContext(ctx)

	if c.GetHeader("svix-id") == "" || c.GetHeader("svix-timestamp") == "" || c.GetHeader("svix-signature") == "" {
		c.String(http.StatusBadRequest, "Error occurred -- no svix headers")
		return
	}

	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
	if err != nil {
		c.String(http.StatusBadRequest, "Error occurred")
		return
	}

	if err := h.wh.Verify(payload, c.Request.Header); err != nil {
		logger.Warn().Err(err).Msg("Error verifying webhook")
		c.String(http.StatusBadRequest, "Error occurred")
		return
	}

	var evt clerkEvent
	if err := json.Unmarshal(payload, &evt); err != nil {
		c.String(http.StatusBadRequest, "Error occurred")
		return
	}
	eventType = evt.Type

	if evt.Type == "user.created" || evt.Type == "user.updated" {
		email := evt.Data.primaryEmail()
		if email == "" {
			logger.Info().Str("external_id", evt.Data.ID).Str("type", evt.Type).Msg("User event without email; nothing to do")
		} else if _, err := h.accounts.Upsert(ctx, evt.Data.ID, email, evt.Data.fullName()); err != nil {
			if errors.Is(err, apperr.ErrConflict) {
				logger.Warn().Err(err).Str("external_id", evt.Data.ID).Msg("Identity conflict needs manual resolution")
				c.String(http.StatusConflict, "Email is linked to another account")
				return
			}
			// Only failures a redelivery could fix answer 5xx.
			status := apperr.HTTPStatus(err)
			if status >= http.StatusInternalServerError {
				logger.Error().Err(err).Str("external_id", evt.Data.ID).Msg("Error creating/updating user")
			} else {
				logger.Warn().Err(err).Str("external_id", evt.Data.ID).Msg("Rejected user event")
			}
			c.String(status, "Error processing user data")
			return
		}
	}

	logger.Info().Str("svix_id", c.GetHeader("svix-id")).Str("type", evt.Type).Msg("Clerk webhook processed")
	c.JSON(http.StatusOK, gin.H{"message": "Webhook processed successfully"})
}
