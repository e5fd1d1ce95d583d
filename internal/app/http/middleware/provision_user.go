package middleware

import (
	"context"
	"errors"
	"net/http"

	"threadcraft-api/internal/domain/users"
	apperr "threadcraft-api/internal/errors"
	"threadcraft-api/internal/logging"
	"threadcraft-api/internal/store"

	"github.com/gin-gonic/gin"
)

type Provisioner interface {
	Upsert(ctx context.Context, externalID, email, name string) (store.UpsertResult, error)
}

type UserLookup interface {
	UserByExternalID(ctx context.Context, externalID string) (*users.User, error)
}

// ProvisionUser creates the caller's row on first sight when the identity
// webhook has not arrived yet. Tokens without an email claim pass through.
func ProvisionUser(lookup UserLookup, accounts Provisioner) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		externalID := c.GetString(KeyExternalID)

		_, err := lookup.UserByExternalID(ctx, externalID)
		if err == nil || !errors.Is(err, apperr.ErrNotFound) {
			c.Next()
			return
		}

		email := c.GetString(KeyEmail)
		if email == "" {
			c.Next()
			return
		}
		if _, err := accounts.Upsert(ctx, externalID, email, c.GetString(KeyName)); err != nil {
			if errors.Is(err, apperr.ErrConflict) {
				c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "Email is linked to another account"})
				return
			}
			logging.FromContext(ctx).Error().Err(err).Str("external_id", externalID).Msg("Lazy user provisioning failed")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Error processing user data"})
			return
		}
		c.Next()
	}
}
