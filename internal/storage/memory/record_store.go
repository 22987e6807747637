package memory

import (
	"context"
	"sync"

	"solana-token-detector/internal/domain"
	"solana-token-detector/internal/storage"
)

// RecordStore is an in-memory implementation of storage.RecordStore.
// Useful for tests and -use-memory runs.
type RecordStore struct {
	mu    sync.RWMutex
	byKey map[string]int              // mint -> index into order
	order []*domain.SafeTokenRecord   // insertion order
}

// NewRecordStore creates a new in-memory record store.
func NewRecordStore() *RecordStore {
	return &RecordStore{
		byKey: make(map[string]int),
	}
}

// Has reports whether a record exists for the mint address.
func (s *RecordStore) Has(_ context.Context, mint string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.byKey[mint]
	return ok, nil
}

// Append stores a record. A duplicate mint is a no-op returning (false, nil).
func (s *RecordStore) Append(_ context.Context, rec *domain.SafeTokenRecord) (bool, error) {
	if rec == nil || rec.Mint == "" {
		return false, storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byKey[rec.Mint]; exists {
		return false, nil
	}

	// Store a copy to prevent external mutation
	recCopy := *rec
	s.byKey[rec.Mint] = len(s.order)
	s.order = append(s.order, &recCopy)
	return true, nil
}

// All returns every stored record in insertion order.
func (s *RecordStore) All(_ context.Context) ([]*domain.SafeTokenRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.SafeTokenRecord, len(s.order))
	for i, rec := range s.order {
		recCopy := *rec
		result[i] = &recCopy
	}
	return result, nil
}

// Verify interface compliance at compile time.
var _ storage.RecordStore = (*RecordStore)(nil)
