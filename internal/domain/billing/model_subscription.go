package billing

import (
	"time"

	"threadcraft-api/internal/domain/users"
)

type Subscription struct {
	ID                   uint        `gorm:"primaryKey" json:"id"`
	UserID               uint        `gorm:"not null;index" json:"user_id"`
	User                 *users.User `gorm:"constraint:OnDelete:RESTRICT" json:"-"`
	StripeSubscriptionID string      `gorm:"column:stripe_subscription_id;not null;uniqueIndex:idx_subscriptions_stripe_subscription_id" json:"stripe_subscription_id"`
	Plan                 string      `gorm:"type:varchar(50)" json:"plan"`
	Status               string      `gorm:"type:varchar(50)" json:"status"`
	CurrentPeriodStart   time.Time   `json:"current_period_start"`
	CurrentPeriodEnd     time.Time   `json:"current_period_end"`
	CancelAtPeriodEnd    bool        `gorm:"not null;default:false" json:"cancel_at_period_end"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
