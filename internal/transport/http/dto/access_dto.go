package dto

import "time"

type AccessResponse struct {
	CanInteract           bool       `json:"can_interact"`
	InteractionsRemaining int        `json:"interactions_remaining"`
	NeedsPayment          bool       `json:"needs_payment"`
	Status                string     `json:"status"`
	ExpiresAt             *time.Time `json:"expires_at"`
	PaymentPending        bool       `json:"payment_pending"`
}

type EntitlementResponse struct {
	Status            string     `json:"status"`
	InteractionsCount int        `json:"interactions_count"`
	InteractionsLimit int        `json:"interactions_limit"`
	ExpiresAt         *time.Time `json:"expires_at"`
}
