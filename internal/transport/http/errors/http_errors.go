package errors

import (
	"encoding/json"
	"net/http"
	"strconv"
)

// Error codes shared by more than one handler. Route specific codes stay
// next to the handler that emits them.
const (
	CodeValidation      = "VALIDATION_ERROR"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeForbidden       = "FORBIDDEN"
	CodeProfileNotFound = "PROFILE_NOT_FOUND"
	CodeTooFast         = "TOO_FAST"
	CodeInternal        = "INTERNAL_ERROR"
)

// APIError is the body of every non-2xx response. RetryAfterSec is only set
// on 429.
type APIError struct {
	Code          string `json:"code"`
	Message       string `json:"message"`
	RetryAfterSec int64  `json:"retry_after_sec,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func WriteError(w http.ResponseWriter, status int, code, message string) {
	WriteJSON(w, status, APIError{Code: code, Message: message})
}

// WriteTooFast answers 429 with the wait mirrored in the Retry-After header.
// The wait never drops below one second.
func WriteTooFast(w http.ResponseWriter, retryAfterSec int64, message string) {
	if retryAfterSec < 1 {
		retryAfterSec = 1
	}
	w.Header().Set("Retry-After", strconv.FormatInt(retryAfterSec, 10))
	WriteJSON(w, http.StatusTooManyRequests, APIError{
		Code:          CodeTooFast,
		Message:       message,
		RetryAfterSec: retryAfterSec,
	})
}
