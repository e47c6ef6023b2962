package dto

type SwipeRequest struct {
	TargetID int64  `json:"target_id"`
	Decision string `json:"decision"`
}

type QuotaPayload struct {
	Kind      string `json:"kind,omitempty"`
	Cap       int    `json:"cap"`
	Used      int    `json:"used"`
	Remaining int    `json:"remaining"`
	ResetAt   string `json:"reset_at"`
}

type SwipeResponse struct {
	OK      bool          `json:"ok"`
	Matched bool          `json:"matched"`
	MatchID string        `json:"match_id,omitempty"`
	Quota   *QuotaPayload `json:"quota,omitempty"`
}
