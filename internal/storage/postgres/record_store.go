package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"solana-token-detector/internal/domain"
	"solana-token-detector/internal/storage"
)

// RecordStore implements storage.RecordStore using PostgreSQL.
// Insertion order is the serial primary key; idempotence comes from
// ON CONFLICT (mint) DO NOTHING.
type RecordStore struct {
	pool *Pool
}

// NewRecordStore creates a new RecordStore.
func NewRecordStore(pool *Pool) *RecordStore {
	return &RecordStore{pool: pool}
}

// Compile-time interface check.
var _ storage.RecordStore = (*RecordStore)(nil)

// Has reports whether a record exists for the mint address.
func (s *RecordStore) Has(ctx context.Context, mint string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM safe_tokens WHERE mint = $1)`, mint,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check record exists: %w", err)
	}
	return exists, nil
}

// Append stores a record. A duplicate mint is a no-op returning (false, nil).
func (s *RecordStore) Append(ctx context.Context, rec *domain.SafeTokenRecord) (bool, error) {
	if rec == nil || rec.Mint == "" {
		return false, storage.ErrInvalidInput
	}

	risks, err := json.Marshal(rec.Risks)
	if err != nil {
		return false, fmt.Errorf("marshal risks: %w", err)
	}

	query := `
		INSERT INTO safe_tokens (
			mint, name, symbol, creator, detected_at,
			score, tier, recommendation, risks, fingerprint, accepted_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (mint) DO NOTHING
	`

	tag, err := s.pool.Exec(ctx, query,
		rec.Mint,
		rec.Name,
		rec.Symbol,
		rec.Creator,
		rec.DetectedAt,
		rec.Score,
		string(rec.Tier),
		rec.Recommendation,
		risks,
		rec.Fingerprint,
		rec.AcceptedAt,
	)
	if err != nil {
		return false, fmt.Errorf("append record: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// All returns every stored record in insertion order.
func (s *RecordStore) All(ctx context.Context) ([]*domain.SafeTokenRecord, error) {
	query := `
		SELECT mint, name, symbol, creator, detected_at,
		       score, tier, recommendation, risks, fingerprint, accepted_at
		FROM safe_tokens
		ORDER BY id ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var records []*domain.SafeTokenRecord
	for rows.Next() {
		var rec domain.SafeTokenRecord
		var tier string
		var risks []byte
		if err := rows.Scan(
			&rec.Mint, &rec.Name, &rec.Symbol, &rec.Creator, &rec.DetectedAt,
			&rec.Score, &tier, &rec.Recommendation, &risks, &rec.Fingerprint, &rec.AcceptedAt,
		); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		rec.Tier = domain.Tier(tier)
		if len(risks) > 0 {
			if err := json.Unmarshal(risks, &rec.Risks); err != nil {
				return nil, fmt.Errorf("unmarshal risks: %w", err)
			}
		}
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return records, nil
}
