package dto

import "time"

type SubmitReceiptRequest struct {
	AmountMinor       int64  `json:"amount_minor"`
	Currency          string `json:"currency"`
	ReceiptRef        string `json:"receipt_ref"`
	PaymentIdentifier string `json:"payment_identifier"`
}

type ReceiptResponse struct {
	ID                string     `json:"id"`
	ProfileID         int64      `json:"profile_id"`
	AmountMinor       int64      `json:"amount_minor"`
	Currency          string     `json:"currency"`
	ReceiptRef        string     `json:"receipt_ref"`
	PaymentIdentifier string     `json:"payment_identifier"`
	Status            string     `json:"status"`
	RejectionReason   string     `json:"rejection_reason,omitempty"`
	GrantedDays       int        `json:"granted_days,omitempty"`
	ReviewedAt        *time.Time `json:"reviewed_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	ImageURL          string     `json:"image_url,omitempty"`
}

type ReceiptsResponse struct {
	Items []ReceiptResponse `json:"items"`
}

type UploadURLResponse struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

type ApproveReceiptRequest struct {
	GrantedDays int `json:"granted_days"`
}

type RejectReceiptRequest struct {
	Reason string `json:"reason"`
}

type ReviewResponse struct {
	Receipt     ReceiptResponse      `json:"receipt"`
	Entitlement *EntitlementResponse `json:"entitlement,omitempty"`
}
