package handlers

import (
	"net/http"

	httperrors "github.com/ivankudzin/paquera/internal/transport/http/errors"
)

type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

func (h *HealthHandler) Get(w http.ResponseWriter, _ *http.Request) {
	httperrors.WriteJSON(w, http.StatusOK, map[string]any{"ok": true})
}
