package enums

type SubscriptionStatus string

const (
	// SubscriptionStatusNone is reported when no entitlement row exists yet.
	SubscriptionStatusNone           SubscriptionStatus = "none"
	SubscriptionStatusInactive       SubscriptionStatus = "inactive"
	SubscriptionStatusActive         SubscriptionStatus = "active"
	SubscriptionStatusPendingPayment SubscriptionStatus = "pending_payment"
	SubscriptionStatusExpired        SubscriptionStatus = "expired"
	SubscriptionStatusBlocked        SubscriptionStatus = "blocked"

	// SubscriptionStatusTrial is never stored; clients see it in place of
	// inactive.
	SubscriptionStatusTrial SubscriptionStatus = "trial"
)

// Reported is the status as clients see it.
func (s SubscriptionStatus) Reported() SubscriptionStatus {
	if s == SubscriptionStatusInactive {
		return SubscriptionStatusTrial
	}
	return s
}

func (s SubscriptionStatus) Valid() bool {
	switch s {
	case SubscriptionStatusNone,
		SubscriptionStatusInactive,
		SubscriptionStatusActive,
		SubscriptionStatusPendingPayment,
		SubscriptionStatusExpired,
		SubscriptionStatusBlocked:
		return true
	default:
		return false
	}
}
