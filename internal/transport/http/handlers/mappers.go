package handlers

import (
	"github.com/ivankudzin/paquera/internal/domain/model"
	"github.com/ivankudzin/paquera/internal/transport/http/dto"
)

func mapOwnProfile(p model.Profile) dto.ProfileResponse {
	return dto.ProfileResponse{
		ID:                p.ID,
		Gender:            p.Gender,
		LookingFor:        p.LookingFor,
		SexualOrientation: p.SexualOrientation,
		City:              p.City,
		Neighborhood:      p.Neighborhood,
		Bio:               p.Bio,
		Hobbies:           nonNilStrings(p.Hobbies),
		Active:            p.Active,
		AgeMin:            p.AgeMin,
		AgeMax:            p.AgeMax,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}

func mapPublicProfile(p model.Profile) dto.PublicProfileResponse {
	return dto.PublicProfileResponse{
		ID:           p.ID,
		Gender:       p.Gender,
		LookingFor:   p.LookingFor,
		City:         p.City,
		Neighborhood: p.Neighborhood,
		Bio:          p.Bio,
		Hobbies:      nonNilStrings(p.Hobbies),
		CreatedAt:    p.CreatedAt,
	}
}

func mapAccess(a model.Access) dto.AccessResponse {
	return dto.AccessResponse{
		CanInteract:           a.CanInteract,
		InteractionsRemaining: a.InteractionsRemaining,
		NeedsPayment:          a.NeedsPayment,
		Status:                string(a.Status.Reported()),
		ExpiresAt:             a.ExpiresAt,
		PaymentPending:        a.PaymentPending,
	}
}

func mapEntitlement(e model.Entitlement) dto.EntitlementResponse {
	return dto.EntitlementResponse{
		Status:            string(e.Status.Reported()),
		InteractionsCount: e.InteractionsCount,
		InteractionsLimit: e.InteractionsLimit,
		ExpiresAt:         e.ExpiresAt,
	}
}

func mapReceipt(r model.PaymentReceipt) dto.ReceiptResponse {
	return dto.ReceiptResponse{
		ID:                r.ID,
		ProfileID:         r.ProfileID,
		AmountMinor:       r.AmountMinor,
		Currency:          r.Currency,
		ReceiptRef:        r.ReceiptRef,
		PaymentIdentifier: r.PaymentIdentifier,
		Status:            string(r.Status),
		RejectionReason:   r.RejectionReason,
		GrantedDays:       r.GrantedDays,
		ReviewedAt:        r.ReviewedAt,
		CreatedAt:         r.CreatedAt,
	}
}

func nonNilStrings(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
