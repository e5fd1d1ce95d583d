package plans

import (
	"net/http"

	"threadcraft-api/internal/domain/plans"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	catalog *plans.Catalog
}

func NewHandler(catalog *plans.Catalog) *Handler {
	return &Handler{catalog: catalog}
}

// ListPlans answers the purchasable plans, cheapest first.
func (h *Handler) ListPlans(c *gin.Context) {
	c.JSON(http.StatusOK, h.catalog.List())
}
