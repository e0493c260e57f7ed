package rules

import (
	"time"

	"github.com/ivankudzin/paquera/internal/domain/model"
)

// EvaluateAccess derives the access answer from a ledger state. Callers are
// expected to persist the active->expired transition themselves; an active
// state past its expiry is still reported as expired here.
func EvaluateAccess(state model.EntitlementState, now time.Time) model.Access {
	access := model.Access{Status: state.Status()}

	switch s := state.(type) {
	case model.Active:
		if s.ExpiresAt.Before(now) {
			access.Status = model.Expired{}.Status()
			access.NeedsPayment = true
			return access
		}
		expiresAt := s.ExpiresAt
		access.CanInteract = true
		access.InteractionsRemaining = UnlimitedInteractions
		access.ExpiresAt = &expiresAt
	case model.Expired:
		access.NeedsPayment = true
	case model.Trial:
		quotaAccess(&access, s.Count, s.Limit)
	case model.Blocked:
		quotaAccess(&access, s.Count, s.Limit)
	case model.PendingPayment:
		quotaAccess(&access, s.Count, s.Limit)
	}

	return access
}

func quotaAccess(access *model.Access, count, limit int) {
	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}
	access.CanInteract = count < limit
	access.InteractionsRemaining = remaining
	access.NeedsPayment = !access.CanInteract
}

// ReconcilePending lines the stored state up with the receipt queue. A
// pending_payment row whose receipt was rejected is blocked again, and an
// exhausted trial with a receipt under review is reported as pending.
func ReconcilePending(state model.EntitlementState, receiptPending bool) model.EntitlementState {
	switch s := state.(type) {
	case model.PendingPayment:
		if !receiptPending {
			return model.Blocked{Count: s.Count, Limit: s.Limit}
		}
	case model.Blocked:
		if receiptPending {
			return model.PendingPayment{Count: s.Count, Limit: s.Limit}
		}
	}
	return state
}
