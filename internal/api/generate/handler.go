package generate

import (
	"context"
	"encoding/base64"
	"net/http"
	"strconv"
	"time"

	"threadcraft-api/internal/api/respond"
	"threadcraft-api/internal/app/http/middleware"
	"threadcraft-api/internal/domain/content"
	"threadcraft-api/internal/generation"
	"threadcraft-api/internal/infra/genai"
	"threadcraft-api/internal/store"

	"github.com/gin-gonic/gin"
)

type Service interface {
	Generate(ctx context.Context, in generation.Input) (*generation.Result, error)
	History(ctx context.Context, externalID string, limit int) ([]content.GeneratedContent, error)
}

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

type imageBody struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"` // base64
}

type generateBody struct {
	ContentType string     `json:"contentType"`
	Prompt      string     `json:"prompt"`
	Image       *imageBody `json:"image"`
}

type ContentDTO struct {
	ID          uint      `json:"id"`
	ContentType string    `json:"contentType"`
	Prompt      string    `json:"prompt"`
	Content     string    `json:"content"`
	Segments    []string  `json:"segments"`
	CreatedAt   time.Time `json:"createdAt"`
}

type GenerateResponse struct {
	ContentDTO
	Points int `json:"points"`
}

func (h *Handler) Generate(c *gin.Context) {
	var body generateBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	in := generation.Input{
		ExternalID:  c.GetString(middleware.KeyExternalID),
		ContentType: body.ContentType,
		Prompt:      body.Prompt,
	}
	if body.Image != nil && body.Image.Data != "" {
		data, err := base64.StdEncoding.DecodeString(body.Image.Data)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Image data must be base64"})
			return
		}
		in.Image = &genai.Image{MimeType: body.Image.MimeType, Data: data}
	}

	res, err := h.svc.Generate(c.Request.Context(), in)
	if err != nil {
		respond.Error(c, err)
		return
	}

	dto := toDTO(res.Content)
	dto.Segments = res.Segments
	c.JSON(http.StatusOK, GenerateResponse{ContentDTO: dto, Points: res.Balance})
}

// History answers the caller's recent generations; ?limit defaults to 10 and is capped at 50.
func (h *Handler) History(c *gin.Context) {
	limit := store.DefaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a number"})
			return
		}
		limit = n
	}

	rows, err := h.svc.History(c.Request.Context(), c.GetString(middleware.KeyExternalID), limit)
	if err != nil {
		respond.Error(c, err)
		return
	}

	items := make([]ContentDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, toDTO(row))
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func toDTO(row content.GeneratedContent) ContentDTO {
	return ContentDTO{
		ID:          row.ID,
		ContentType: string(row.ContentType),
		Prompt:      row.Prompt,
		Content:     row.Content,
		Segments:    content.Segments(row.ContentType, row.Content),
		CreatedAt:   row.CreatedAt,
	}
}
