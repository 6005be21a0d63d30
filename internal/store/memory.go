package store

import (
	"context"
	"sync"

	"github.com/bunkbed-tech/fushigi-sub000/internal/domain"
	domainerrors "github.com/bunkbed-tech/fushigi-sub000/internal/errors"
)

// Memory is an in-process Cache for tests.
// FetchErr and SaveErr, when set, make the next calls fail with a
// LocalStorage error.
type Memory[T domain.Record] struct {
	mu      sync.Mutex
	records []T
	staged  []T

	FetchErr error
	SaveErr  error

	Saves int
}

// NewMemory creates a Memory seeded with recs.
func NewMemory[T domain.Record](recs ...T) *Memory[T] {
	return &Memory[T]{records: append([]T(nil), recs...)}
}

// FetchAll implements Cache.
func (m *Memory[T]) FetchAll(_ context.Context, match Predicate[T]) ([]T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FetchErr != nil {
		return nil, domainerrors.LocalStorage(m.FetchErr, "fetch records")
	}
	return Filter(append([]T(nil), m.records...), match), nil
}

// Insert implements Cache.
func (m *Memory[T]) Insert(rec T) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.staged = append(m.staged, rec)
}

// Update implements Cache.
func (m *Memory[T]) Update(rec T) {
	m.Insert(rec)
}

// Save implements Cache.
func (m *Memory[T]) Save(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return domainerrors.LocalStorage(m.SaveErr, "save records")
	}
	for _, rec := range m.staged {
		m.upsert(rec)
	}
	m.staged = nil
	m.Saves++
	return nil
}

func (m *Memory[T]) upsert(rec T) {
	for i, existing := range m.records {
		if existing.RecordID() == rec.RecordID() {
			m.records[i] = rec
			return
		}
	}
	m.records = append(m.records, rec)
}

// Discard implements Cache.
func (m *Memory[T]) Discard() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.staged = nil
}

// Wipe implements Wiper.
func (m *Memory[T]) Wipe(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = nil
	m.staged = nil
	return nil
}

// Len returns the number of committed records.
func (m *Memory[T]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}
