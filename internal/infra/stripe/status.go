package stripe

import "strings"

// NormalizeStatus folds Stripe subscription statuses into the states the UI shows.
func NormalizeStatus(s string) string {
	switch s = strings.TrimSpace(s); s {
	case "":
		return "none"
	case "past_due", "unpaid":
		return "past_due"
	case "canceled", "incomplete_expired":
		return "canceled"
	default:
		return s
	}
}

// GrantsAccess reports whether a subscription in this status is paid up.
func GrantsAccess(status string) bool {
	switch NormalizeStatus(status) {
	case "active", "trialing":
		return true
	}
	return false
}
