package model

import "time"

const (
	MatchStatusActive = "active"
	MatchStatusClosed = "closed"
)

// Match is one canonical-pair row: UserAID < UserBID always.
type Match struct {
	ID        int64     `json:"id"`
	PublicID  string    `json:"public_id"`
	UserAID   int64     `json:"user_a_id"`
	UserBID   int64     `json:"user_b_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// MatchCard is an active match from one participant's point of view, joined
// with the other side's profile card.
type MatchCard struct {
	ID           int64     `json:"id"`
	PublicID     string    `json:"public_id"`
	TargetUserID int64     `json:"target_user_id"`
	DisplayName  string    `json:"display_name"`
	Age          int       `json:"age"`
	CityID       string    `json:"city_id"`
	CreatedAt    time.Time `json:"created_at"`
}
