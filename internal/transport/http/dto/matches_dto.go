package dto

import "time"

type MatchResponse struct {
	ID        int64                 `json:"id"`
	Profile   PublicProfileResponse `json:"profile"`
	CreatedAt time.Time             `json:"created_at"`
}

type MatchesResponse struct {
	Items []MatchResponse `json:"items"`
}
