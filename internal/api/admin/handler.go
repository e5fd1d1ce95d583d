package admin

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"threadcraft-api/internal/api/respond"
	"threadcraft-api/internal/app/http/middleware"
	"threadcraft-api/internal/domain/users"
	"threadcraft-api/internal/logging"
	"threadcraft-api/internal/store"

	"github.com/gin-gonic/gin"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

type Store interface {
	ListUsers(ctx context.Context, limit, offset int) ([]users.User, error)
	Credit(ctx context.Context, externalID string, delta int) (int, error)
	Debit(ctx context.Context, externalID string, amount int) (int, error)
	Stats(ctx context.Context) (*store.Stats, error)
}

type Handler struct {
	store Store
}

func NewHandler(st Store) *Handler {
	return &Handler{store: st}
}

type AdminUser struct {
	ID         uint      `json:"id"`
	ExternalID *string   `json:"external_id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	Points     int       `json:"points"`
	CreatedAt  time.Time `json:"created_at"`
}

func (h *Handler) GetAdminStats(c *gin.Context) {
	stats, err := h.store.Stats(c.Request.Context())
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *Handler) ListAllUsers(c *gin.Context) {
	limit := queryInt(c, "limit", defaultPageSize)
	if limit <= 0 || limit > maxPageSize {
		limit = defaultPageSize
	}
	offset := queryInt(c, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	list, err := h.store.ListUsers(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load users"})
		return
	}

	adminUsers := make([]AdminUser, 0, len(list))
	for _, u := range list {
		adminUsers = append(adminUsers, AdminUser{
			ID:         u.ID,
			ExternalID: u.ExternalID,
			Email:      u.Email,
			Name:       u.Name,
			Points:     u.Points,
			CreatedAt:  u.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, adminUsers)
}

// AdjustPoints moves a user's balance by delta through the ledger. A negative
// delta is a debit and fails rather than go below zero.
func (h *Handler) AdjustPoints(c *gin.Context) {
	var body struct {
		Delta int `json:"delta"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.Delta == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "delta must be a non-zero integer"})
		return
	}

	ctx := c.Request.Context()
	externalID := c.Param("externalId")

	var (
		balance int
		err     error
	)
	if body.Delta > 0 {
		balance, err = h.store.Credit(ctx, externalID, body.Delta)
	} else {
		balance, err = h.store.Debit(ctx, externalID, -body.Delta)
	}
	if err != nil {
		respond.Error(c, err)
		return
	}

	logging.FromContext(ctx).Info().
		Str("admin", c.GetString(middleware.KeyExternalID)).
		Str("external_id", externalID).
		Int("delta", body.Delta).
		Int("balance", balance).
		Msg("Points adjusted")
	c.JSON(http.StatusOK, gin.H{"external_id": externalID, "points": balance})
}

func queryInt(c *gin.Context, key string, def int) int {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
