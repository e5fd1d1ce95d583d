package store

import (
	"context"

	"threadcraft-api/internal/domain/content"
	apperr "threadcraft-api/internal/errors"
)

const (
	DefaultHistoryLimit = 10
	MaxHistoryLimit     = 50
)

// SaveContent appends a generated content row. There is no update or delete.
func (s *Store) SaveContent(ctx context.Context, row *content.GeneratedContent) error {
	if row.UserID == 0 {
		return apperr.Validation("content.save", "user id is required")
	}
	if err := s.conn(ctx).Omit("User").Create(row).Error; err != nil {
		return apperr.Persistence("content.save", err)
	}
	return nil
}

// History lists the user's generations newest first. limit is clamped to
// [1, MaxHistoryLimit]; zero or negative means DefaultHistoryLimit.
func (s *Store) History(ctx context.Context, externalID string, limit int) ([]content.GeneratedContent, error) {
	limit = ClampHistoryLimit(limit)
	rows := []content.GeneratedContent{}
	err := s.conn(ctx).
		Joins("JOIN users ON users.id = generated_content.user_id").
		Where("users.external_id = ?", externalID).
		Order("generated_content.created_at DESC, generated_content.id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, apperr.Persistence("content.history", err)
	}
	return rows, nil
}

func ClampHistoryLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultHistoryLimit
	case limit > MaxHistoryLimit:
		return MaxHistoryLimit
	}
	return limit
}
