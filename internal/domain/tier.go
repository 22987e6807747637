package domain

// Tier is the three-level risk classification derived from score and threshold.
type Tier string

const (
	TierLow    Tier = "LOW"
	TierMedium Tier = "MEDIUM"
	TierHigh   Tier = "HIGH"
)

// Recommendation labels per tier, as surfaced to the operator.
const (
	RecommendSafe    = "SAFE_TO_BUY"
	RecommendCaution = "CAUTION_ADVISED"
	RecommendAvoid   = "HIGH_RISK_DONT_BUY"
)

// Recommendation returns the operator-facing label for the tier.
func (t Tier) Recommendation() string {
	switch t {
	case TierLow:
		return RecommendSafe
	case TierMedium:
		return RecommendCaution
	default:
		return RecommendAvoid
	}
}
