package storage

import (
	"context"

	"solana-token-detector/internal/domain"
)

// RecordStore persists accepted tokens. Records are append-only and keyed
// by mint address: exactly one record per mint, never mutated after insert.
type RecordStore interface {
	// Has reports whether a record exists for the mint address.
	Has(ctx context.Context, mint string) (bool, error)

	// Append stores a record. Idempotent: if a record for the mint already
	// exists the call is a no-op that returns (false, nil). Returns
	// (true, nil) when the record was stored.
	Append(ctx context.Context, rec *domain.SafeTokenRecord) (bool, error)

	// All returns every stored record in insertion order.
	All(ctx context.Context) ([]*domain.SafeTokenRecord, error)
}

// EvaluationLog records every assessment outcome for offline analysis,
// accepted or not. Implementations must tolerate duplicate evaluation ids.
type EvaluationLog interface {
	// Insert appends one evaluation row.
	Insert(ctx context.Context, e *domain.Evaluation) error
}
