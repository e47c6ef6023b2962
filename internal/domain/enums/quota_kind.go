package enums

type QuotaKind string

const (
	QuotaKindLike      QuotaKind = "like"
	QuotaKindSuperLike QuotaKind = "superlike"
	QuotaKindBoost     QuotaKind = "boost"
)

func (k QuotaKind) Valid() bool {
	switch k {
	case QuotaKindLike, QuotaKindSuperLike, QuotaKindBoost:
		return true
	default:
		return false
	}
}
