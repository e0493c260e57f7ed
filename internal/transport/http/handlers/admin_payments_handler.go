package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	paymentsvc "github.com/ivankudzin/paquera/internal/services/payments"
	"github.com/ivankudzin/paquera/internal/transport/http/dto"
	httperrors "github.com/ivankudzin/paquera/internal/transport/http/errors"
)

// AdminPaymentsHandler serves the operator review queue. Role checks happen
// in the router.
type AdminPaymentsHandler struct {
	payments *paymentsvc.Service
	log      *zap.Logger
}

func NewAdminPaymentsHandler(payments *paymentsvc.Service, log *zap.Logger) *AdminPaymentsHandler {
	return &AdminPaymentsHandler{payments: payments, log: log}
}

func (h *AdminPaymentsHandler) Pending(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireIdentity(w, r); !ok {
		return
	}
	if h.payments == nil {
		writeInternal(w, "PAYMENT_SERVICE_UNAVAILABLE", "payment service is unavailable")
		return
	}
	limit, ok := limitFromQuery(r)
	if !ok {
		writeBadRequest(w, httperrors.CodeValidation, "limit must be a non-negative integer")
		return
	}

	items, err := h.payments.ListPending(r.Context(), limit)
	if err != nil {
		failInternal(w, r, h.log, "failed to list pending receipts", err)
		return
	}

	resp := dto.ReceiptsResponse{Items: make([]dto.ReceiptResponse, 0, len(items))}
	for _, item := range items {
		mapped := mapReceipt(item.Receipt)
		mapped.ImageURL = item.ImageURL
		resp.Items = append(resp.Items, mapped)
	}
	httperrors.WriteJSON(w, http.StatusOK, resp)
}

func (h *AdminPaymentsHandler) Approve(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	if h.payments == nil {
		writeInternal(w, "PAYMENT_SERVICE_UNAVAILABLE", "payment service is unavailable")
		return
	}

	// An empty body approves with the default grant.
	var req dto.ApproveReceiptRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeBadRequest(w, httperrors.CodeValidation, "invalid request body")
		return
	}

	review, err := h.payments.Approve(r.Context(), receiptIDFromRequest(r), identity.UserID, req.GrantedDays)
	if err != nil {
		writePaymentError(w, r, h.log, err, "failed to approve receipt")
		return
	}
	httperrors.WriteJSON(w, http.StatusOK, mapReview(review))
}

func (h *AdminPaymentsHandler) Reject(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	if h.payments == nil {
		writeInternal(w, "PAYMENT_SERVICE_UNAVAILABLE", "payment service is unavailable")
		return
	}

	var req dto.RejectReceiptRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, httperrors.CodeValidation, "invalid request body")
		return
	}

	review, err := h.payments.Reject(r.Context(), receiptIDFromRequest(r), identity.UserID, req.Reason)
	if err != nil {
		writePaymentError(w, r, h.log, err, "failed to reject receipt")
		return
	}
	httperrors.WriteJSON(w, http.StatusOK, mapReview(review))
}

func receiptIDFromRequest(r *http.Request) string {
	return strings.TrimSpace(chi.URLParam(r, "id"))
}

func mapReview(review paymentsvc.Review) dto.ReviewResponse {
	resp := dto.ReviewResponse{Receipt: mapReceipt(review.Receipt)}
	if review.Entitlement != nil {
		ent := mapEntitlement(*review.Entitlement)
		resp.Entitlement = &ent
	}
	return resp
}
