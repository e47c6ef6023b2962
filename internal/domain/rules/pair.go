package rules

// CanonicalPair orders two account ids so that pair-level uniqueness
// constraints are keyed the same way regardless of which side acted first.
func CanonicalPair(a, b int64) (int64, int64) {
	if a > b {
		return b, a
	}
	return a, b
}
