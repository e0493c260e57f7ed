package model

import "time"

// Match is stored once per unordered pair with ProfileLowID < ProfileHighID.
type Match struct {
	ID            int64     `json:"id"`
	ProfileLowID  int64     `json:"profile_low_id"`
	ProfileHighID int64     `json:"profile_high_id"`
	CreatedAt     time.Time `json:"created_at"`
}

// CanonicalPair orders two profile ids the way matches are keyed.
func CanonicalPair(a, b int64) (int64, int64) {
	if a < b {
		return a, b
	}
	return b, a
}

func (m Match) Counterpart(profileID int64) int64 {
	if m.ProfileLowID == profileID {
		return m.ProfileHighID
	}
	return m.ProfileLowID
}
