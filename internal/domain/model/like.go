package model

import "time"

type Like struct {
	ID             int64     `json:"id"`
	LikerProfileID int64     `json:"liker_profile_id"`
	LikedProfileID int64     `json:"liked_profile_id"`
	IsSuperLike    bool      `json:"is_super_like"`
	CreatedAt      time.Time `json:"created_at"`
}
