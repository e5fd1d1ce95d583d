package store

import (
	"context"

	"threadcraft-api/internal/domain/billing"
	apperr "threadcraft-api/internal/errors"

	"gorm.io/gorm/clause"
)

// RecordWebhookEvent stores the event id. It returns false when the event was
// recorded before, which means its effects are already committed.
func (s *Store) RecordWebhookEvent(ctx context.Context, provider, eventID, eventType string) (bool, error) {
	if eventID == "" {
		return false, apperr.Validation("webhook_events.record", "event id is required")
	}
	ev := billing.WebhookEvent{Provider: provider, EventID: eventID, EventType: eventType}
	res := s.conn(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&ev)
	if res.Error != nil {
		return false, apperr.Persistence("webhook_events.record", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *Store) WebhookEventSeen(ctx context.Context, provider, eventID string) (bool, error) {
	var n int64
	err := s.conn(ctx).Model(&billing.WebhookEvent{}).
		Where("provider = ? AND event_id = ?", provider, eventID).
		Count(&n).Error
	if err != nil {
		return false, apperr.Persistence("webhook_events.seen", err)
	}
	return n > 0, nil
}
