package dto

import "time"

type MatchItemPayload struct {
	MatchID      string    `json:"match_id"`
	TargetUserID int64     `json:"target_user_id"`
	DisplayName  string    `json:"display_name"`
	Age          int       `json:"age"`
	CityID       string    `json:"city_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type MatchListResponse struct {
	Items []MatchItemPayload `json:"items"`
}

type UnmatchRequest struct {
	TargetID int64 `json:"target_id"`
}

type UnmatchResponse struct {
	OK     bool `json:"ok"`
	Closed bool `json:"closed"`
}

type BlockRequest struct {
	TargetID int64 `json:"target_id"`
}
