package users

import "time"

// DefaultPoints is the balance every new user starts with.
const DefaultPoints = 50

type User struct {
	ID         uint    `gorm:"primaryKey" json:"id"`
	ExternalID *string `gorm:"column:external_id;uniqueIndex:idx_users_external_id" json:"external_id"`
	Email      string  `gorm:"not null;uniqueIndex:idx_users_email" json:"email"`
	Name       string  `json:"name"`
	Points     int     `gorm:"not null;default:50" json:"points"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasExternalID reports whether the row is bound to an identity-provider account.
func (u *User) HasExternalID() bool {
	return u.ExternalID != nil && *u.ExternalID != ""
}
