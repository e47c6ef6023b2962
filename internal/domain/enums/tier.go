package enums

import "strings"

type Tier string

const (
	TierFree    Tier = "free"
	TierPremium Tier = "premium"
	TierVIP     Tier = "vip"
)

func ParseTier(raw string) Tier {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(TierPremium):
		return TierPremium
	case string(TierVIP):
		return TierVIP
	default:
		return TierFree
	}
}

func (t Tier) Priority() bool {
	return t == TierVIP
}
