package store

import (
	"time"

	"ecosort/internal/classify"
)

// Profile is a registered user identity.
type Profile struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Class     string    `json:"class"`
	CreatedAt time.Time `json:"created_at"`
}

// Event is one classification appended to a user's history.
type Event struct {
	Category   classify.Category `json:"category"`
	Confidence float64           `json:"confidence"`
	Timestamp  time.Time         `json:"timestamp"`
}

// Record is everything persisted for one user: identity, cumulative
// progress, and the append-only scan history.
type Record struct {
	Profile   Profile `json:"profile"`
	Points    uint64  `json:"points"`
	BadgeTier uint    `json:"badge_tier"`
	History   []Event `json:"history"`
}

// Progress is the updated cumulative state after applying an event.
type Progress struct {
	Points    uint64 `json:"points"`
	BadgeTier uint   `json:"badge_tier"`
}

// LeaderboardEntry is one row of the points leaderboard.
type LeaderboardEntry struct {
	Rank      int    `json:"rank"`
	ID        string `json:"id"`
	Name      string `json:"name"`
	Class     string `json:"class"`
	Points    uint64 `json:"points"`
	BadgeTier uint   `json:"badge_tier"`
}
