package repository

import (
	"context"
	"sync"

	"github.com/okhan/motoval/internal/domain/model"
)

// MemoryStore implements Store with an in-process map. Used for tests and
// for ephemeral runs where no db path is configured.
type MemoryStore struct {
	mu     sync.RWMutex
	byID   map[string]model.InspectionRecord
	order  []string // report IDs in save order, oldest first
	closed bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID: make(map[string]model.InspectionRecord),
	}
}

// Save persists a record, replacing any previous one for the report ID.
func (s *MemoryStore) Save(_ context.Context, rec model.InspectionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}
	if _, ok := s.byID[rec.ReportID]; !ok {
		s.order = append(s.order, rec.ReportID)
	}
	s.byID[rec.ReportID] = rec
	return nil
}

// Get returns the record for a report ID.
func (s *MemoryStore) Get(_ context.Context, reportID string) (model.InspectionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.byID[reportID]
	if !ok {
		return model.InspectionRecord{}, ErrNotFound
	}
	return rec, nil
}

// List returns up to limit records, most recently saved first.
func (s *MemoryStore) List(_ context.Context, limit int) ([]model.InspectionRecord, error) {
	if limit < 1 {
		return nil, ErrInvalidLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	recs := make([]model.InspectionRecord, 0, limit)
	for i := len(s.order) - 1; i >= 0 && len(recs) < limit; i-- {
		recs = append(recs, s.byID[s.order[i]])
	}
	return recs, nil
}

// Count returns the number of stored records.
func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

// Close marks the store closed; subsequent saves fail.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
