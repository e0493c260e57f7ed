package dto

import "time"

type ProfileRequest struct {
	Gender            string   `json:"gender"`
	LookingFor        string   `json:"looking_for"`
	SexualOrientation string   `json:"sexual_orientation"`
	City              string   `json:"city"`
	Neighborhood      string   `json:"neighborhood"`
	Bio               string   `json:"bio"`
	Hobbies           []string `json:"hobbies"`
	AgeMin            int      `json:"age_min"`
	AgeMax            int      `json:"age_max"`
}

// ProfileResponse is the owner's view and the only one carrying orientation.
type ProfileResponse struct {
	ID                int64     `json:"id"`
	Gender            string    `json:"gender"`
	LookingFor        string    `json:"looking_for"`
	SexualOrientation string    `json:"sexual_orientation"`
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

type PublicProfileResponse struct {
	ID           int64     `json:"id"`
	Gender       string    `json:"gender"`
	LookingFor   string    `json:"looking_for"`
	City         string    `json:"city"`
	Neighborhood string    `json:"neighborhood"`
	Bio          string    `json:"bio"`
	Hobbies      []string  `json:"hobbies"`
	CreatedAt    time.Time `json:"created_at"`
}

type CandidateResponse struct {
	Profile       PublicProfileResponse `json:"profile"`
	Score         int                   `json:"score"`
	MutualHobbies []string              `json:"mutual_hobbies"`
}

type CandidatesResponse struct {
	Filter string              `json:"filter"`
	Items  []CandidateResponse `json:"items"`
}
