package billing

import "time"

const ProviderStripe = "stripe"

// WebhookEvent records a provider event whose effects have been committed.
// The (provider, event_id) pair is unique, so inserting it twice fails.
type WebhookEvent struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Provider  string    `gorm:"type:varchar(20);not null;uniqueIndex:idx_webhook_events_provider_event,priority:1" json:"provider"`
	EventID   string    `gorm:"type:varchar(191);not null;uniqueIndex:idx_webhook_events_provider_event,priority:2" json:"event_id"`
	EventType string    `gorm:"type:varchar(100);not null" json:"event_type"`
	CreatedAt time.Time `json:"created_at"`
}
