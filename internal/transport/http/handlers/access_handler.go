package handlers

import (
	"net/http"

	"go.uber.org/zap"

	entitlementsvc "github.com/ivankudzin/paquera/internal/services/entitlements"
	profilesvc "github.com/ivankudzin/paquera/internal/services/profiles"
	httperrors "github.com/ivankudzin/paquera/internal/transport/http/errors"
)

type AccessHandler struct {
	profiles     *profilesvc.Service
	entitlements *entitlementsvc.Service
	log          *zap.Logger
}

func NewAccessHandler(profiles *profilesvc.Service, entitlements *entitlementsvc.Service, log *zap.Logger) *AccessHandler {
	return &AccessHandler{
		profiles:     profiles,
		entitlements: entitlements,
		log:          log,
	}
}

func (h *AccessHandler) Get(w http.ResponseWriter, r *http.Request) {
	viewer, ok := resolveViewer(w, r, h.profiles, h.log)
	if !ok {
		return
	}
	if h.entitlements == nil {
		writeInternal(w, "ENTITLEMENT_SERVICE_UNAVAILABLE", "entitlement service is unavailable")
		return
	}

	access, err := h.entitlements.CheckAccess(r.Context(), viewer.ID)
	if err != nil {
		failInternal(w, r, h.log, "failed to check access", err)
		return
	}
	httperrors.WriteJSON(w, http.StatusOK, mapAccess(access))
}
