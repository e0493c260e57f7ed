package model

import (
	"time"

	"github.com/ivankudzin/paquera/internal/domain/enums"
)

type PaymentReceipt struct {
	ID                string              `json:"id"`
	ProfileID         int64               `json:"profile_id"`
	AmountMinor       int64               `json:"amount_minor"`
	Currency          string              `json:"currency"`
	ReceiptRef        string              `json:"receipt_ref"`
	PaymentIdentifier string              `json:"payment_identifier"`
	Status            enums.ReceiptStatus `json:"status"`
	RejectionReason   string              `json:"rejection_reason,omitempty"`
	GrantedDays       int                 `json:"granted_days,omitempty"`
	ReviewedBy        *int64              `json:"reviewed_by,omitempty"`
	ReviewedAt        *time.Time          `json:"reviewed_at,omitempty"`
	CreatedAt         time.Time           `json:"created_at"`
}
