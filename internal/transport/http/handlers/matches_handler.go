package handlers

import (
	"net/http"

	"go.uber.org/zap"

	matchessvc "github.com/ivankudzin/paquera/internal/services/matches"
	profilesvc "github.com/ivankudzin/paquera/internal/services/profiles"
	"github.com/ivankudzin/paquera/internal/transport/http/dto"
	httperrors "github.com/ivankudzin/paquera/internal/transport/http/errors"
)

type MatchesHandler struct {
	profiles *profilesvc.Service
	matches  *matchessvc.Service
	log      *zap.Logger
}

func NewMatchesHandler(profiles *profilesvc.Service, matches *matchessvc.Service, log *zap.Logger) *MatchesHandler {
	return &MatchesHandler{
		profiles: profiles,
		matches:  matches,
		log:      log,
	}
}

func (h *MatchesHandler) List(w http.ResponseWriter, r *http.Request) {
	viewer, ok := resolveViewer(w, r, h.profiles, h.log)
	if !ok {
		return
	}
	if h.matches == nil {
		writeInternal(w, "MATCH_SERVICE_UNAVAILABLE", "match service is unavailable")
		return
	}
	limit, ok := limitFromQuery(r)
	if !ok {
		writeBadRequest(w, httperrors.CodeValidation, "limit must be a non-negative integer")
		return
	}

	items, err := h.matches.List(r.Context(), viewer.ID, limit)
	if err != nil {
		failInternal(w, r, h.log, "failed to list matches", err)
		return
	}

	resp := dto.MatchesResponse{Items: make([]dto.MatchResponse, 0, len(items))}
	for _, item := range items {
		resp.Items = append(resp.Items, dto.MatchResponse{
			ID:        item.ID,
			Profile:   mapPublicProfile(item.Profile),
			CreatedAt: item.CreatedAt,
		})
	}
	httperrors.WriteJSON(w, http.StatusOK, resp)
}
