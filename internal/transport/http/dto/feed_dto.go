package dto

type FeedItemPayload struct {
	UserID      int64    `json:"user_id"`
	DisplayName string   `json:"display_name"`
	Age         int      `json:"age"`
	CityID      string   `json:"city_id,omitempty"`
	Boosted     bool     `json:"boosted,omitempty"`
	DistanceKM  *float64 `json:"distance_km,omitempty"`
}

type FeedResponse struct {
	Items      []FeedItemPayload `json:"items"`
	NextCursor string            `json:"next_cursor,omitempty"`
}
