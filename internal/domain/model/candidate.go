package model

import "time"

// ViewerContext is the slice of a profile the feed needs to build a deck.
type ViewerContext struct {
	UserID     int64    `json:"user_id"`
	CityID     string   `json:"city_id"`
	Gender     string   `json:"gender"`
	LookingFor string   `json:"looking_for"`
	AgeMin     int      `json:"age_min"`
	AgeMax     int      `json:"age_max"`
	RadiusKM   int      `json:"radius_km"`
	LastLat    *float64 `json:"last_lat"`
	LastLon    *float64 `json:"last_lon"`
}

// Candidate is one deck card. Priority is 1 for boosted or vip profiles and
// leads the feed ordering.
type Candidate struct {
	UserID      int64     `json:"user_id"`
	DisplayName string    `json:"display_name"`
	CityID      string    `json:"city_id"`
	Age         int       `json:"age"`
	Priority    int       `json:"priority"`
	DistanceKM  *float64  `json:"distance_km"`
	CreatedAt   time.Time `json:"created_at"`
}
