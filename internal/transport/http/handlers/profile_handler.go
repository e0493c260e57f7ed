package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	profilesvc "github.com/ivankudzin/paquera/internal/services/profiles"
	"github.com/ivankudzin/paquera/internal/transport/http/dto"
	httperrors "github.com/ivankudzin/paquera/internal/transport/http/errors"
)

type ProfileHandler struct {
	service *profilesvc.Service
	log     *zap.Logger
}

func NewProfileHandler(service *profilesvc.Service, log *zap.Logger) *ProfileHandler {
	return &ProfileHandler{service: service, log: log}
}

func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	profile, ok := resolveViewer(w, r, h.service, h.log)
	if !ok {
		return
	}
	httperrors.WriteJSON(w, http.StatusOK, mapOwnProfile(profile))
}

func (h *ProfileHandler) Put(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	if h.service == nil {
		writeInternal(w, "PROFILE_SERVICE_UNAVAILABLE", "profile service is unavailable")
		return
	}

	var req dto.ProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, httperrors.CodeValidation, "invalid request body")
		return
	}

	profile, err := h.service.CreateOrUpdate(r.Context(), identity.UserID, profilesvc.Input{
		Gender:            req.Gender,
		LookingFor:        req.LookingFor,
		SexualOrientation: req.SexualOrientation,
		City:              req.City,
		Neighborhood:      req.Neighborhood,
		Bio:               req.Bio,
		Hobbies:           req.Hobbies,
		AgeMin:            req.AgeMin,
		AgeMax:            req.AgeMax,
	})
	if err != nil {
		if errors.Is(err, profilesvc.ErrValidation) {
			writeBadRequest(w, httperrors.CodeValidation, validationMessage(err))
			return
		}
		failInternal(w, r, h.log, "failed to save profile", err)
		return
	}

	httperrors.WriteJSON(w, http.StatusOK, mapOwnProfile(profile))
}

func (h *ProfileHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, false)
}

func (h *ProfileHandler) Activate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, true)
}

func (h *ProfileHandler) setActive(w http.ResponseWriter, r *http.Request, active bool) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	if h.service == nil {
		writeInternal(w, "PROFILE_SERVICE_UNAVAILABLE", "profile service is unavailable")
		return
	}

	profile, err := h.service.SetActive(r.Context(), identity.UserID, active)
	if err != nil {
		switch {
		case errors.Is(err, profilesvc.ErrNotFound):
			writeNotFound(w, httperrors.CodeProfileNotFound, "create a profile first")
		case errors.Is(err, profilesvc.ErrValidation):
			writeBadRequest(w, httperrors.CodeValidation, validationMessage(err))
		default:
			failInternal(w, r, h.log, "failed to update profile", err)
		}
		return
	}

	httperrors.WriteJSON(w, http.StatusOK, mapOwnProfile(profile))
}
