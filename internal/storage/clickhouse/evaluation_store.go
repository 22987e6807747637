package clickhouse

import (
	"context"
	"fmt"

	"solana-token-detector/internal/domain"
	"solana-token-detector/internal/idhash"
	"solana-token-detector/internal/storage"
)

// EvaluationStore implements storage.EvaluationLog using ClickHouse.
// One row per assessment outcome; ReplacingMergeTree on the deterministic
// evaluation id absorbs duplicate inserts.
type EvaluationStore struct {
	conn *Conn
}

// NewEvaluationStore creates a new EvaluationStore.
func NewEvaluationStore(conn *Conn) *EvaluationStore {
	return &EvaluationStore{conn: conn}
}

// Compile-time interface check.
var _ storage.EvaluationLog = (*EvaluationStore)(nil)

// Insert appends one evaluation row.
func (s *EvaluationStore) Insert(ctx context.Context, e *domain.Evaluation) error {
	if e == nil || e.Mint == "" {
		return storage.ErrInvalidInput
	}

	evaluationID := idhash.EvaluationID(e.Mint, e.Fingerprint, e.EvaluatedAt)

	query := `
		INSERT INTO token_evaluations (
			evaluation_id, mint, symbol, score, threshold,
			tier, recommendation, fingerprint, accepted, evaluated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	accepted := uint8(0)
	if e.Accepted {
		accepted = 1
	}

	err := s.conn.Exec(ctx, query,
		evaluationID,
		e.Mint,
		e.Symbol,
		int32(e.Score),
		int32(e.Threshold),
		string(e.Tier),
		e.Recommendation,
		e.Fingerprint,
		accepted,
		e.EvaluatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert evaluation: %w", err)
	}
	return nil
}

// ByMint returns all evaluations recorded for a mint, oldest first.
func (s *EvaluationStore) ByMint(ctx context.Context, mint string) ([]*domain.Evaluation, error) {
	query := `
		SELECT mint, symbol, score, threshold, tier, recommendation,
		       fingerprint, accepted, evaluated_at
		FROM token_evaluations FINAL
		WHERE mint = ?
		ORDER BY evaluated_at ASC
	`

	rows, err := s.conn.Query(ctx, query, mint)
	if err != nil {
		return nil, fmt.Errorf("query evaluations: %w", err)
	}
	defer rows.Close()

	var result []*domain.Evaluation
	for rows.Next() {
		var e domain.Evaluation
		var score, threshold int32
		var tier string
		var accepted uint8
		if err := rows.Scan(
			&e.Mint, &e.Symbol, &score, &threshold, &tier,
			&e.Recommendation, &e.Fingerprint, &accepted, &e.EvaluatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan evaluation: %w", err)
		}
		e.Score = int(score)
		e.Threshold = int(threshold)
		e.Tier = domain.Tier(tier)
		e.Accepted = accepted == 1
		result = append(result, &e)
	}
	return result, rows.Err()
}
