// Package decision maps oracle safety scores to risk tiers.
package decision

import "solana-token-detector/internal/domain"

// MediumFloor is the fixed lower bound of the MEDIUM band.
// Only the LOW/MEDIUM boundary is operator-configurable.
const MediumFloor = 50

// Classify maps a normalized safety score to a risk tier given the
// operator threshold. Total for every int input:
//
//	score > threshold           -> LOW
//	MediumFloor <= score <= threshold -> MEDIUM
//	score < MediumFloor         -> HIGH
//
// Thresholds below MediumFloor collapse the MEDIUM band: any score at or
// above the threshold is LOW. Tie at the threshold stays MEDIUM when the
// band exists.
func Classify(score, threshold int) domain.Tier {
	if score > threshold {
		return domain.TierLow
	}
	if threshold < MediumFloor && score >= threshold {
		return domain.TierLow
	}
	if score >= MediumFloor {
		return domain.TierMedium
	}
	return domain.TierHigh
}
