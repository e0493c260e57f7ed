package model

import "time"

type Profile struct {
	ID                int64  `json:"id"`
	OwnerID           int64  `json:"owner_id"`
	Gender            string `json:"gender"`
	LookingFor        string `json:"looking_for"`
	// SexualOrientation is used only for server-side filtering and is never serialized.
	SexualOrientation string    `json:"-"`
	City              string    `json:"city"`
	Neighborhood      string    `json:"neighborhood"`
	Bio               string    `json:"bio"`
	Hobbies           []string  `json:"hobbies"`
	Active            bool      `json:"active"`
	AgeMin            int       `json:"age_min"`
	AgeMax            int       `json:"age_max"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}
