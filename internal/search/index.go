package search

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/blevesearch/bleve/v2"

	"github.com/bunkbed-tech/fushigi-sub000/internal/domain"
)

// ConceptIndex is an in-memory index of the published concepts.
//
// Thread safety: all public methods are safe for concurrent use. Replace
// builds a new index before swapping it in, so searches never see a
// half-built index.
type ConceptIndex struct {
	index  bleve.Index
	logger *slog.Logger
	mu     sync.RWMutex
}

// NewConceptIndex creates an empty index.
func NewConceptIndex(logger *slog.Logger) (*ConceptIndex, error) {
	if logger == nil {
		logger = slog.Default()
	}
	index, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("create index: %w", err)
	}
	return &ConceptIndex{index: index, logger: logger}, nil
}

// Close releases the index.
func (s *ConceptIndex) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Close()
}

// Replace rebuilds the index from concepts.
func (s *ConceptIndex) Replace(concepts []domain.Concept) error {
	next, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	if err := indexConcepts(next, concepts); err != nil {
		_ = next.Close()
		return err
	}

	s.mu.Lock()
	prev := s.index
	s.index = next
	s.mu.Unlock()

	if err := prev.Close(); err != nil {
		s.logger.Warn("failed to close previous search index", "error", err)
	}
	s.logger.Debug("search index rebuilt", "concepts", len(concepts))
	return nil
}

// OnPublish is a coordinator subscriber that keeps the index current.
func (s *ConceptIndex) OnPublish(concepts []domain.Concept) {
	if err := s.Replace(concepts); err != nil {
		s.logger.Error("failed to rebuild search index", "error", err)
	}
}

// Clear empties the index.
func (s *ConceptIndex) Clear() {
	s.OnPublish(nil)
}

// indexConcepts indexes in batches so large collections do not build one
// huge batch in memory.
func indexConcepts(index bleve.Index, concepts []domain.Concept) error {
	const batchSize = 500

	for i := 0; i < len(concepts); i += batchSize {
		end := min(i+batchSize, len(concepts))

		batch := index.NewBatch()
		for _, c := range concepts[i:end] {
			doc := NewConceptDocument(c)
			if err := batch.Index(doc.ID, doc.ToMap()); err != nil {
				return fmt.Errorf("batch index %s: %w", doc.ID, err)
			}
		}
		if err := index.Batch(batch); err != nil {
			return fmt.Errorf("commit batch %d-%d: %w", i, end, err)
		}
	}
	return nil
}

// DocumentCount returns the number of indexed concepts.
func (s *ConceptIndex) DocumentCount() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.DocCount()
}
