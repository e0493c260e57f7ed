package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	paymentsvc "github.com/ivankudzin/paquera/internal/services/payments"
	profilesvc "github.com/ivankudzin/paquera/internal/services/profiles"
	"github.com/ivankudzin/paquera/internal/transport/http/dto"
	httperrors "github.com/ivankudzin/paquera/internal/transport/http/errors"
)

type PaymentsHandler struct {
	profiles *profilesvc.Service
	payments *paymentsvc.Service
	log      *zap.Logger
}

func NewPaymentsHandler(profiles *profilesvc.Service, payments *paymentsvc.Service, log *zap.Logger) *PaymentsHandler {
	return &PaymentsHandler{
		profiles: profiles,
		payments: payments,
		log:      log,
	}
}

func (h *PaymentsHandler) UploadURL(w http.ResponseWriter, r *http.Request) {
	viewer, ok := resolveViewer(w, r, h.profiles, h.log)
	if !ok {
		return
	}
	if h.payments == nil {
		writeInternal(w, "PAYMENT_SERVICE_UNAVAILABLE", "payment service is unavailable")
		return
	}

	upload, err := h.payments.NewUploadURL(r.Context(), viewer.ID)
	if err != nil {
		failInternal(w, r, h.log, "failed to issue upload url", err)
		return
	}
	httperrors.WriteJSON(w, http.StatusOK, dto.UploadURLResponse{
		Key:       upload.Key,
		URL:       upload.URL,
		ExpiresAt: upload.ExpiresAt,
	})
}

func (h *PaymentsHandler) Submit(w http.ResponseWriter, r *http.Request) {
	viewer, ok := resolveViewer(w, r, h.profiles, h.log)
	if !ok {
		return
	}
	if h.payments == nil {
		writeInternal(w, "PAYMENT_SERVICE_UNAVAILABLE", "payment service is unavailable")
		return
	}

	var req dto.SubmitReceiptRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, httperrors.CodeValidation, "invalid request body")
		return
	}

	receipt, err := h.payments.SubmitReceipt(r.Context(), viewer.ID, paymentsvc.SubmitInput{
		AmountMinor:       req.AmountMinor,
		Currency:          req.Currency,
		ReceiptRef:        req.ReceiptRef,
		PaymentIdentifier: req.PaymentIdentifier,
	})
	if err != nil {
		writePaymentError(w, r, h.log, err, "failed to submit receipt")
		return
	}
	httperrors.WriteJSON(w, http.StatusCreated, mapReceipt(receipt))
}

func (h *PaymentsHandler) List(w http.ResponseWriter, r *http.Request) {
	viewer, ok := resolveViewer(w, r, h.profiles, h.log)
	if !ok {
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

	receipts, err := h.payments.ListForProfile(r.Context(), viewer.ID, limit)
	if err != nil {
		failInternal(w, r, h.log, "failed to list receipts", err)
		return
	}

	resp := dto.ReceiptsResponse{Items: make([]dto.ReceiptResponse, 0, len(receipts))}
	for _, receipt := range receipts {
		resp.Items = append(resp.Items, mapReceipt(receipt))
	}
	httperrors.WriteJSON(w, http.StatusOK, resp)
}

func writePaymentError(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error, message string) {
	switch {
	case errors.Is(err, paymentsvc.ErrValidation):
		writeBadRequest(w, httperrors.CodeValidation, validationMessage(err))
	case errors.Is(err, paymentsvc.ErrAlreadyPending):
		writeConflict(w, "PAYMENT_ALREADY_PENDING", "a receipt is already waiting for review")
	case errors.Is(err, paymentsvc.ErrAlreadyReviewed):
		writeConflict(w, "RECEIPT_ALREADY_REVIEWED", "receipt was already reviewed")
	case errors.Is(err, paymentsvc.ErrNotFound):
		writeNotFound(w, "RECEIPT_NOT_FOUND", "receipt not found")
	default:
		failInternal(w, r, log, message, err)
	}
}
