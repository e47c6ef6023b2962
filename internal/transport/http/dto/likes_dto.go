package dto

import "time"

type LikerPayload struct {
	UserID      int64     `json:"user_id,omitempty"`
	DisplayName string    `json:"display_name,omitempty"`
	Age         int       `json:"age,omitempty"`
	CityID      string    `json:"city_id,omitempty"`
	SuperLike   bool      `json:"super_like"`
	LikedAt     time.Time `json:"liked_at"`
}

type IncomingLikesResponse struct {
	Total  int            `json:"total"`
	Locked bool           `json:"locked"`
	Items  []LikerPayload `json:"items"`
}
