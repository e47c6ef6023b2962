package model

import "time"

// Swipe is one ledger row. Decision holds the stored decision text; the
// ledger keeps whatever was recorded even if the enum set evolves.
type Swipe struct {
	ID           int64     `json:"id"`
	ActorUserID  int64     `json:"actor_user_id"`
	TargetUserID int64     `json:"target_user_id"`
	Decision     string    `json:"decision"`
	SuperLike    bool      `json:"super_like"`
	CreatedAt    time.Time `json:"created_at"`
}

// Liker is an incoming-like entry joined with the liker's profile card.
type Liker struct {
	UserID      int64     `json:"user_id"`
	SuperLike   bool      `json:"super_like"`
	LikedAt     time.Time `json:"liked_at"`
	DisplayName string    `json:"display_name"`
	Age         int       `json:"age"`
	CityID      string    `json:"city_id"`
}
