package model

type Candidate struct {
	Profile       Profile  `json:"profile"`
	Score         int      `json:"score"`
	MutualHobbies []string `json:"mutual_hobbies"`
}
