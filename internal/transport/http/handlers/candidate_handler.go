package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	profilesvc "github.com/ivankudzin/paquera/internal/services/profiles"
	rankingsvc "github.com/ivankudzin/paquera/internal/services/ranking"
	"github.com/ivankudzin/paquera/internal/transport/http/dto"
	httperrors "github.com/ivankudzin/paquera/internal/transport/http/errors"
)

type CandidateHandler struct {
	ranking *rankingsvc.Service
	log     *zap.Logger
}

func NewCandidateHandler(ranking *rankingsvc.Service, log *zap.Logger) *CandidateHandler {
	return &CandidateHandler{ranking: ranking, log: log}
}

func (h *CandidateHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	if h.ranking == nil {
		writeInternal(w, "RANKING_SERVICE_UNAVAILABLE", "ranking service is unavailable")
		return
	}

	mode, err := rankingsvc.ParseMode(r.URL.Query().Get("filter"))
	if err != nil {
		writeBadRequest(w, httperrors.CodeValidation, validationMessage(err))
		return
	}
	limit, ok := limitFromQuery(r)
	if !ok {
		writeBadRequest(w, httperrors.CodeValidation, "limit must be a non-negative integer")
		return
	}

	items, err := h.ranking.CandidatesFor(r.Context(), identity.UserID, mode, limit)
	if err != nil {
		switch {
		case errors.Is(err, profilesvc.ErrNotFound):
			writeNotFound(w, httperrors.CodeProfileNotFound, "create a profile first")
		case errors.Is(err, rankingsvc.ErrValidation):
			writeBadRequest(w, httperrors.CodeValidation, validationMessage(err))
		default:
			failInternal(w, r, h.log, "failed to rank candidates", err)
		}
		return
	}

	resp := dto.CandidatesResponse{
		Filter: string(mode),
		Items:  make([]dto.CandidateResponse, 0, len(items)),
	}
	for _, item := range items {
		resp.Items = append(resp.Items, dto.CandidateResponse{
			Profile:       mapPublicProfile(item.Profile),
			Score:         item.Score,
			MutualHobbies: nonNilStrings(item.MutualHobbies),
		})
	}
	httperrors.WriteJSON(w, http.StatusOK, resp)
}
