package domain

// Severity classifies a single risk factor reported by the oracle.
type Severity string

const (
	SeverityDanger Severity = "danger"
	SeverityWarn   Severity = "warn"
)

// RiskFactor is one human-readable reason from a risk report.
type RiskFactor struct {
	Severity    Severity `json:"severity"`
	Description string   `json:"description"`
}

// RiskReport is the normalized result of one oracle assessment.
// Ephemeral: it is not persisted on its own, only as part of the
// SafeTokenRecord it may produce.
type RiskReport struct {
	Mint        string       // assessed mint address
	TokenName   string       // oracle-reported name, may be empty
	TokenSymbol string       // oracle-reported symbol, may be empty
	Creator     string       // oracle-reported creator wallet, may be empty
	Score       int          // safety score 0-100, 0 when the oracle omitted it
	Risks       []RiskFactor // ordered as returned by the oracle
	Fingerprint string       // SHA-256 of the raw response, for idempotence checks
}

// Evaluation is one audit row recording an assessment outcome,
// whether or not the token was accepted.
type Evaluation struct {
	Mint           string
	Symbol         string
	Score          int
	Threshold      int
	Tier           Tier
	Recommendation string
	Fingerprint    string
	Accepted       bool
	EvaluatedAt    int64 // Unix timestamp in milliseconds
}
