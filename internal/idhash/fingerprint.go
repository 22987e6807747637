package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ReportFingerprint computes a deterministic fingerprint of a raw oracle
// response body using SHA256. Returns hex-encoded hash (64 characters).
// Used for idempotence checks: the same response always fingerprints
// the same way regardless of when it was fetched.
func ReportFingerprint(raw []byte) string {
	hash := sha256.Sum256(raw)
	return hex.EncodeToString(hash[:])
}

// EvaluationID computes a deterministic id for one evaluation outcome.
// Formula: SHA256(mint|fingerprint|evaluated_at_ms)
func EvaluationID(mint, fingerprint string, evaluatedAt int64) string {
	data := fmt.Sprintf("%s|%s|%d", mint, fingerprint, evaluatedAt)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
