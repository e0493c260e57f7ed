package model

import (
	"time"

	"github.com/ivankudzin/paquera/internal/domain/enums"
)

// Entitlement mirrors one row of the entitlements table. A profile without a
// row is represented by DefaultEntitlement.
type Entitlement struct {
	ProfileID         int64                    `json:"profile_id"`
	Status            enums.SubscriptionStatus `json:"status"`
	InteractionsCount int                      `json:"interactions_count"`
	InteractionsLimit int                      `json:"interactions_limit"`
	ExpiresAt         *time.Time               `json:"expires_at"`
	UpdatedAt         time.Time                `json:"updated_at"`
}

func DefaultEntitlement(profileID int64, limit int) Entitlement {
	return Entitlement{
		ProfileID:         profileID,
		Status:            enums.SubscriptionStatusNone,
		InteractionsLimit: limit,
	}
}

// ExpiredAt reports whether an active entitlement has passed its expiry.
func (e Entitlement) ExpiredAt(now time.Time) bool {
	if e.Status != enums.SubscriptionStatusActive {
		return false
	}
	return e.ExpiresAt == nil || e.ExpiresAt.Before(now)
}

// EntitlementState is the closed set of ledger states.
type EntitlementState interface {
	Status() enums.SubscriptionStatus
	isEntitlementState()
}

type Trial struct {
	Count int
	Limit int
	// Stored is false for the implicit trial of a profile without a row.
	Stored bool
}

type Active struct {
	ExpiresAt time.Time
}

type PendingPayment struct {
	Count int
	Limit int
}

type Expired struct{}

type Blocked struct {
	Count int
	Limit int
}

func (s Trial) Status() enums.SubscriptionStatus {
	if !s.Stored {
		return enums.SubscriptionStatusNone
	}
	return enums.SubscriptionStatusInactive
}
func (Active) Status() enums.SubscriptionStatus         { return enums.SubscriptionStatusActive }
func (PendingPayment) Status() enums.SubscriptionStatus { return enums.SubscriptionStatusPendingPayment }
func (Expired) Status() enums.SubscriptionStatus        { return enums.SubscriptionStatusExpired }
func (Blocked) Status() enums.SubscriptionStatus        { return enums.SubscriptionStatusBlocked }

func (Trial) isEntitlementState()          {}
func (Active) isEntitlementState()         {}
func (PendingPayment) isEntitlementState() {}
func (Expired) isEntitlementState()        {}
func (Blocked) isEntitlementState()        {}

// State converts the row into its ledger state. An active row without an
// expiry is treated as expired so access is never granted open-ended.
func (e Entitlement) State() EntitlementState {
	switch e.Status {
	case enums.SubscriptionStatusActive:
		if e.ExpiresAt == nil {
			return Expired{}
		}
		return Active{ExpiresAt: e.ExpiresAt.UTC()}
	case enums.SubscriptionStatusExpired:
		return Expired{}
	case enums.SubscriptionStatusPendingPayment:
		return PendingPayment{Count: e.InteractionsCount, Limit: e.InteractionsLimit}
	case enums.SubscriptionStatusBlocked:
		return Blocked{Count: e.InteractionsCount, Limit: e.InteractionsLimit}
	case enums.SubscriptionStatusInactive:
		return Trial{Count: e.InteractionsCount, Limit: e.InteractionsLimit, Stored: true}
	default:
		return Trial{Count: e.InteractionsCount, Limit: e.InteractionsLimit}
	}
}

// Access is the answer to an access check.
type Access struct {
	CanInteract           bool                     `json:"can_interact"`
	InteractionsRemaining int                      `json:"interactions_remaining"`
	NeedsPayment          bool                     `json:"needs_payment"`
	Status                enums.SubscriptionStatus `json:"status"`
	ExpiresAt             *time.Time               `json:"expires_at,omitempty"`
	PaymentPending        bool                     `json:"payment_pending"`
}
