package stripe

import "strings"

// ClaimSettled reports whether a checkout session's payment_status lets the
// claim go through. Async methods complete the session as "unpaid" first and
// settle later with checkout.session.async_payment_succeeded.
func ClaimSettled(paymentStatus string) bool {
	switch strings.TrimSpace(paymentStatus) {
	case "paid", "no_payment_required":
		return true
	default:
		return false
	}
}
