package users

import (
	"threadcraft-api/internal/domain/billing"
	"threadcraft-api/internal/domain/users"
	"threadcraft-api/internal/infra/stripe"
)

func BuildUserDTO(u users.User) UserDTO {
	dto := UserDTO{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		CreatedAt: u.CreatedAt,
	}
	if u.HasExternalID() {
		dto.ExternalID = *u.ExternalID
	}
	return dto
}

// BuildBillingDTO reports the balance and every subscription the user has held.
// Active is true when any of them currently grants access.
func BuildBillingDTO(points int, subs []billing.Subscription) BillingDTO {
	out := BillingDTO{Points: points, Subscriptions: make([]SubscriptionDTO, 0, len(subs))}
	for _, s := range subs {
		status := stripe.NormalizeStatus(s.Status)
		if stripe.GrantsAccess(status) {
			out.Active = true
		}
		out.Subscriptions = append(out.Subscriptions, SubscriptionDTO{
			StripeSubscriptionID: s.StripeSubscriptionID,
			Plan:                 s.Plan,
			Status:               status,
			CurrentPeriodStart:   s.CurrentPeriodStart,
			CurrentPeriodEnd:     s.CurrentPeriodEnd,
			CancelAtPeriodEnd:    s.CancelAtPeriodEnd,
		})
	}
	return out
}
