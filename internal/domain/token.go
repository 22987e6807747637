package domain

import "time"

// TokenMint represents a newly created fungible-token mint discovered on-chain.
// Immutable once discovered; the mint address is the primary key everywhere.
type TokenMint struct {
	Mint       string    // token mint address (unique key)
	Name       string    // token name, may be empty until resolved
	Symbol     string    // token symbol, may be empty until resolved
	Creator    string    // creator wallet address
	DetectedAt time.Time // first-observed timestamp
}

// SafeTokenRecord is the persisted unit for a token judged safe.
// Exactly one record exists per mint address; records are never mutated
// after insertion, only appended.
type SafeTokenRecord struct {
	Mint           string       `json:"mint"`
	Name           string       `json:"name"`
	Symbol         string       `json:"symbol"`
	Creator        string       `json:"creator"`
	DetectedAt     time.Time    `json:"detected_at"`
	Score          int          `json:"score_normalised"`
	Tier           Tier         `json:"risk"`
	Recommendation string       `json:"recommendation"`
	Risks          []RiskFactor `json:"risks"`
	Fingerprint    string       `json:"report_fingerprint,omitempty"`
	AcceptedAt     time.Time    `json:"accepted_at"`
}
