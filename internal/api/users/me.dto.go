package users

import "time"

type MeResponse struct {
	User       UserDTO       `json:"user"`
	Billing    BillingDTO    `json:"billing"`
	Generation GenerationDTO `json:"generation"`
}

/* ---------- USER ---------- */

type UserDTO struct {
	ID         uint      `json:"id"`
	ExternalID string    `json:"external_id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	CreatedAt  time.Time `json:"created_at"`
}

/* ---------- BILLING ---------- */

type BillingDTO struct {
	Points        int               `json:"points"`
	Active        bool              `json:"active"`
	Subscriptions []SubscriptionDTO `json:"subscriptions"`
}

type SubscriptionDTO struct {
	StripeSubscriptionID string    `json:"stripe_subscription_id"`
	Plan                 string    `json:"plan"`
	Status               string    `json:"status"` // active|trialing|past_due|canceled|...
	CurrentPeriodStart   time.Time `json:"current_period_start"`
	CurrentPeriodEnd     time.Time `json:"current_period_end"`
	CancelAtPeriodEnd    bool      `json:"cancel_at_period_end"`
}

/* ---------- GENERATION ---------- */

type GenerationDTO struct {
	Cost      int `json:"cost"`
	Remaining int `json:"remaining"`
}
