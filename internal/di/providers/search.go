package providers

import (
	"github.com/samber/do/v2"

	"github.com/bunkbed-tech/fushigi-sub000/internal/logger"
	"github.com/bunkbed-tech/fushigi-sub000/internal/search"
)

// SearchIndexHandle wraps the concept index with shutdown capability.
type SearchIndexHandle struct {
	*search.ConceptIndex
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	return h.Close()
}

// ProvideSearchIndex provides the in-memory concept index. It is filled
// whenever the concept coordinator publishes.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	log := do.MustInvoke[*logger.Logger](i)

	index, err := search.NewConceptIndex(log.Logger)
	if err != nil {
		return nil, err
	}

	return &SearchIndexHandle{ConceptIndex: index}, nil
}
