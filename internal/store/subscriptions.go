package store

import (
	"context"
	"time"

	"threadcraft-api/internal/domain/billing"
	apperr "threadcraft-api/internal/errors"

	"gorm.io/gorm/clause"
)

// UpsertSubscription inserts or overwrites the row keyed on the Stripe subscription id.
func (s *Store) UpsertSubscription(ctx context.Context, sub *billing.Subscription) error {
	if sub.StripeSubscriptionID == "" {
		return apperr.Validation("subscriptions.upsert", "stripe subscription id is required")
	}
	sub.UpdatedAt = time.Now()
	err := s.conn(ctx).Omit("User").Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "stripe_subscription_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"user_id",
			"plan",
			"status",
			"current_period_start",
			"current_period_end",
			"cancel_at_period_end",
			"updated_at",
		}),
	}).Create(sub).Error
	if err != nil {
		return apperr.Persistence("subscriptions.upsert", err)
	}
	return nil
}

func (s *Store) SubscriptionsForUser(ctx context.Context, userID uint) ([]billing.Subscription, error) {
	subs := []billing.Subscription{}
	if err := s.conn(ctx).Where("user_id = ?", userID).Order("current_period_end DESC").Find(&subs).Error; err != nil {
		return nil, apperr.Persistence("subscriptions.list", err)
	}
	return subs, nil
}

func (s *Store) SubscriptionByStripeID(ctx context.Context, stripeID string) (*billing.Subscription, error) {
	var sub billing.Subscription
	err := s.conn(ctx).Where("stripe_subscription_id = ?", stripeID).Take(&sub).Error
	if err != nil {
		return nil, wrapNotFound("subscriptions.get", err, "subscription %s", stripeID)
	}
	return &sub, nil
}

// SubscriptionState is the lifecycle data Stripe reports on subscription events.
type SubscriptionState struct {
	StripeSubscriptionID string
	Status               string
	CurrentPeriodStart   time.Time
	CurrentPeriodEnd     time.Time
	CancelAtPeriodEnd    bool
}

// SyncSubscription refreshes status and period of a known subscription. It reports
// false when no row exists; lifecycle events never create subscriptions.
func (s *Store) SyncSubscription(ctx context.Context, st SubscriptionState) (bool, error) {
	res := s.conn(ctx).Model(&billing.Subscription{}).
		Where("stripe_subscription_id = ?", st.StripeSubscriptionID).
		Updates(map[string]any{
			"status":               st.Status,
			"current_period_start": st.CurrentPeriodStart,
			"current_period_end":   st.CurrentPeriodEnd,
			"cancel_at_period_end": st.CancelAtPeriodEnd,
		})
	if res.Error != nil {
		return false, apperr.Persistence("subscriptions.sync", res.Error)
	}
	return res.RowsAffected > 0, nil
}
