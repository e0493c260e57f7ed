package dto

type LikeRequest struct {
	TargetProfileID int64 `json:"target_profile_id"`
	SuperLike       bool  `json:"super_like"`
}

type LikeResponse struct {
	Matched      bool           `json:"matched"`
	LimitReached bool           `json:"limit_reached"`
	AlreadyLiked bool           `json:"already_liked"`
	Access       AccessResponse `json:"access"`
}

type PassRequest struct {
	TargetProfileID int64 `json:"target_profile_id"`
}

type PassResponse struct {
	LimitReached bool           `json:"limit_reached"`
	Access       AccessResponse `json:"access"`
}

type SentLikesResponse struct {
	ProfileIDs []int64 `json:"profile_ids"`
}
