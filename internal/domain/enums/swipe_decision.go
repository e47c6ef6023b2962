package enums

import "strings"

type SwipeDecision string

const (
	SwipeDecisionLike      SwipeDecision = "LIKE"
	SwipeDecisionSuperLike SwipeDecision = "SUPERLIKE"
	SwipeDecisionPass      SwipeDecision = "PASS"
)

func ParseSwipeDecision(raw string) (SwipeDecision, bool) {
	value := strings.ToUpper(strings.TrimSpace(raw))
	value = strings.ReplaceAll(value, "_", "")
	switch SwipeDecision(value) {
	case SwipeDecisionLike, SwipeDecisionSuperLike, SwipeDecisionPass:
		return SwipeDecision(value), true
	default:
		return "", false
	}
}

func (d SwipeDecision) IsPositive() bool {
	return d == SwipeDecisionLike || d == SwipeDecisionSuperLike
}
