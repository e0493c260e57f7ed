package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	likessvc "github.com/ivankudzin/paquera/internal/services/likes"
	profilesvc "github.com/ivankudzin/paquera/internal/services/profiles"
	ratesvc "github.com/ivankudzin/paquera/internal/services/rate"
	swipesvc "github.com/ivankudzin/paquera/internal/services/swipes"
	"github.com/ivankudzin/paquera/internal/transport/http/dto"
	httperrors "github.com/ivankudzin/paquera/internal/transport/http/errors"
)

type SwipeHandler struct {
	swipes   *swipesvc.Service
	likes    *likessvc.Service
	profiles *profilesvc.Service
	log      *zap.Logger
}

func NewSwipeHandler(swipes *swipesvc.Service, likes *likessvc.Service, profiles *profilesvc.Service, log *zap.Logger) *SwipeHandler {
	return &SwipeHandler{
		swipes:   swipes,
		likes:    likes,
		profiles: profiles,
		log:      log,
	}
}

// Like answers 200 for quota exhaustion and repeated likes; both are
// reported through flags in the body.
func (h *SwipeHandler) Like(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	if h.swipes == nil {
		writeInternal(w, "SWIPE_SERVICE_UNAVAILABLE", "swipe service is unavailable")
		return
	}

	var req dto.LikeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, httperrors.CodeValidation, "invalid request body")
		return
	}
	if req.TargetProfileID <= 0 {
		writeBadRequest(w, httperrors.CodeValidation, "target_profile_id is required")
		return
	}

	out, err := h.swipes.Like(r.Context(), identity.UserID, req.TargetProfileID, req.SuperLike)
	if err != nil {
		h.writeSwipeError(w, r, err)
		return
	}

	httperrors.WriteJSON(w, http.StatusOK, dto.LikeResponse{
		Matched:      out.Matched,
		LimitReached: out.LimitReached,
		AlreadyLiked: out.AlreadyLiked,
		Access:       mapAccess(out.Access),
	})
}

func (h *SwipeHandler) Pass(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	if h.swipes == nil {
		writeInternal(w, "SWIPE_SERVICE_UNAVAILABLE", "swipe service is unavailable")
		return
	}

	var req dto.PassRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, httperrors.CodeValidation, "invalid request body")
		return
	}
	if req.TargetProfileID <= 0 {
		writeBadRequest(w, httperrors.CodeValidation, "target_profile_id is required")
		return
	}

	out, err := h.swipes.Pass(r.Context(), identity.UserID, req.TargetProfileID)
	if err != nil {
		h.writeSwipeError(w, r, err)
		return
	}

	httperrors.WriteJSON(w, http.StatusOK, dto.PassResponse{
		LimitReached: out.LimitReached,
		Access:       mapAccess(out.Access),
	})
}

func (h *SwipeHandler) SentLikes(w http.ResponseWriter, r *http.Request) {
	viewer, ok := resolveViewer(w, r, h.profiles, h.log)
	if !ok {
		return
	}
	if h.likes == nil {
		writeInternal(w, "LIKES_SERVICE_UNAVAILABLE", "likes service is unavailable")
		return
	}

	ids, err := h.likes.ListLikedTargets(r.Context(), viewer.ID)
	if err != nil {
		failInternal(w, r, h.log, "failed to list sent likes", err)
		return
	}
	if ids == nil {
		ids = []int64{}
	}
	httperrors.WriteJSON(w, http.StatusOK, dto.SentLikesResponse{ProfileIDs: ids})
}

func (h *SwipeHandler) writeSwipeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, likessvc.ErrInvalidOperation):
		writeBadRequest(w, "INVALID_OPERATION", "a profile cannot like itself")
	case errors.Is(err, swipesvc.ErrValidation):
		writeBadRequest(w, httperrors.CodeValidation, validationMessage(err))
	case errors.Is(err, swipesvc.ErrNotFound):
		writeNotFound(w, httperrors.CodeProfileNotFound, "profile not found")
	default:
		if tf, ok := ratesvc.IsTooFast(err); ok {
			httperrors.WriteTooFast(w, tf.RetryAfter(), "too many like actions, slow down")
			return
		}
		failInternal(w, r, h.log, "failed to process swipe", err)
	}
}
