// Package jsonfile persists accepted tokens as a JSON array on local disk.
// The file is the operator-facing artifact: a human-readable list ordered
// by insertion.
package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"solana-token-detector/internal/domain"
	"solana-token-detector/internal/storage"
)

// RecordStore implements storage.RecordStore backed by a single JSON file.
//
// Every operation reads the file fresh, so external edits (or deletion) of
// the file between calls are tolerated: a missing file reads as empty and
// is recreated by the next append. Writes go to a temporary file in the
// same directory followed by an atomic rename, never an in-place partial
// write, so a crash mid-write cannot leave the store unparseable.
type RecordStore struct {
	path string
	mu   sync.Mutex // single-writer discipline
}

// NewRecordStore creates a store backed by the JSON file at path.
// The file is created lazily on first append.
func NewRecordStore(path string) *RecordStore {
	return &RecordStore{path: path}
}

// Has reports whether a record exists for the mint address.
func (s *RecordStore) Has(_ context.Context, mint string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return false, err
	}
	for _, rec := range records {
		if rec.Mint == mint {
			return true, nil
		}
	}
	return false, nil
}

// Append stores a record. A duplicate mint is a no-op returning (false, nil).
func (s *RecordStore) Append(_ context.Context, rec *domain.SafeTokenRecord) (bool, error) {
	if rec == nil || rec.Mint == "" {
		return false, storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return false, err
	}
	for _, existing := range records {
		if existing.Mint == rec.Mint {
			return false, nil
		}
	}

	recCopy := *rec
	records = append(records, &recCopy)
	if err := s.persist(records); err != nil {
		return false, err
	}
	return true, nil
}

// All returns every stored record in insertion order.
func (s *RecordStore) All(_ context.Context) ([]*domain.SafeTokenRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load()
}

// load reads and parses the store file. Missing file reads as empty.
func (s *RecordStore) load() ([]*domain.SafeTokenRecord, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read store: %w", err)
	}

	var records []*domain.SafeTokenRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse store: %w", err)
	}
	return records, nil
}

// persist writes the full record list via temp file + atomic rename.
func (s *RecordStore) persist(records []*domain.SafeTokenRecord) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal store: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create store directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".safe-tokens-*.json")
	if err != nil {
		return fmt.Errorf("create temp store: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp store: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace store: %w", err)
	}
	return nil
}

// Verify interface compliance at compile time.
var _ storage.RecordStore = (*RecordStore)(nil)
