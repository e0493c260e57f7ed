package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/ivankudzin/paquera/internal/domain/model"
	authsvc "github.com/ivankudzin/paquera/internal/services/auth"
	profilesvc "github.com/ivankudzin/paquera/internal/services/profiles"
	httperrors "github.com/ivankudzin/paquera/internal/transport/http/errors"
)

const validationSuffix = ": validation error"

func decodeJSON(r *http.Request, target any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(target)
}

func writeBadRequest(w http.ResponseWriter, code, message string) {
	httperrors.WriteError(w, http.StatusBadRequest, code, message)
}

func writeUnauthorized(w http.ResponseWriter, code, message string) {
	httperrors.WriteError(w, http.StatusUnauthorized, code, message)
}

func writeNotFound(w http.ResponseWriter, code, message string) {
	httperrors.WriteError(w, http.StatusNotFound, code, message)
}

func writeConflict(w http.ResponseWriter, code, message string) {
	httperrors.WriteError(w, http.StatusConflict, code, message)
}

func writeInternal(w http.ResponseWriter, code, message string) {
	httperrors.WriteError(w, http.StatusInternalServerError, code, message)
}

// failInternal logs the cause and answers with a generic 500.
func failInternal(w http.ResponseWriter, r *http.Request, log *zap.Logger, message string, err error) {
	if log != nil {
		log.Error(message,
			zap.Error(err),
			zap.String("request_id", chimiddleware.GetReqID(r.Context())),
			zap.String("path", r.URL.Path),
		)
	}
	writeInternal(w, httperrors.CodeInternal, message)
}

// validationMessage returns the client-facing part of a wrapped validation
// error.
func validationMessage(err error) string {
	msg := err.Error()
	if i := strings.LastIndex(msg, validationSuffix); i > 0 {
		return msg[:i]
	}
	return "invalid request"
}

func requireIdentity(w http.ResponseWriter, r *http.Request) (authsvc.Identity, bool) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, httperrors.CodeUnauthorized, "authentication required")
		return authsvc.Identity{}, false
	}
	return identity, true
}

// resolveViewer loads the caller's profile. Most routes act on behalf of a
// profile, so a missing one is a 404 rather than a validation error.
func resolveViewer(w http.ResponseWriter, r *http.Request, profiles *profilesvc.Service, log *zap.Logger) (model.Profile, bool) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return model.Profile{}, false
	}
	if profiles == nil {
		writeInternal(w, "PROFILE_SERVICE_UNAVAILABLE", "profile service is unavailable")
		return model.Profile{}, false
	}

	profile, err := profiles.GetByOwner(r.Context(), identity.UserID)
	if err != nil {
		if errors.Is(err, profilesvc.ErrNotFound) {
			writeNotFound(w, httperrors.CodeProfileNotFound, "create a profile first")
			return model.Profile{}, false
		}
		failInternal(w, r, log, "failed to load profile", err)
		return model.Profile{}, false
	}
	return profile, true
}

func limitFromQuery(r *http.Request) (int, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get("limit"))
	if raw == "" {
		return 0, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0, false
	}
	return limit, true
}
