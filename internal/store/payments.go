package store

import (
	"context"

	"threadcraft-api/internal/domain/billing"
)

// SubscriptionCredit is a paid checkout ready to be applied.
type SubscriptionCredit struct {
	Provider     string
	EventID      string
	EventType    string
	ExternalID   string
	Subscription billing.Subscription
	Points       int
}

type CreditOutcome struct {
	// Applied is false when the event had already been applied; nothing changed.
	Applied bool
	Balance int
}

// ApplySubscriptionCredit records the event, upserts the subscription and credits
// the plan's points in one transaction. A missing user rolls everything back so the
// provider can redeliver later.
func (s *Store) ApplySubscriptionCredit(ctx context.Context, in SubscriptionCredit) (CreditOutcome, error) {
	const op = "payments.apply"
	var out CreditOutcome
	err := s.Transaction(ctx, func(tx *Store) error {
		u, err := tx.UserByExternalID(ctx, in.ExternalID)
		if err != nil {
			return err
		}
		fresh, err := tx.RecordWebhookEvent(ctx, in.Provider, in.EventID, in.EventType)
		if err != nil {
			return err
		}
		if !fresh {
			out.Balance = u.Points
			return nil
		}

		sub := in.Subscription
		sub.UserID = u.ID
		if err := tx.UpsertSubscription(ctx, &sub); err != nil {
			return err
		}
		balance, err := tx.Credit(ctx, in.ExternalID, in.Points)
		if err != nil {
			return err
		}
		out = CreditOutcome{Applied: true, Balance: balance}
		return nil
	})
	if err != nil {
		return CreditOutcome{}, wrap(op, err)
	}
	return out, nil
}
