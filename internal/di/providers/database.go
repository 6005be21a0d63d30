package providers

import (
	"github.com/samber/do/v2"

	"github.com/bunkbed-tech/fushigi-sub000/internal/config"
	"github.com/bunkbed-tech/fushigi-sub000/internal/logger"
	"github.com/bunkbed-tech/fushigi-sub000/internal/store/sqlite"
)

// StoreHandle wraps the cache database with shutdown capability.
type StoreHandle struct {
	*sqlite.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the local cache database. A cache that cannot be
// opened is fatal: every collection depends on it.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	path := cfg.DatabasePath()
	db, err := sqlite.Open(path, log.Logger)
	if err != nil {
		log.Fatal("Failed to open local cache", "path", path, "error", err)
		return nil, err
	}

	log.Debug("Local cache opened", "path", path)

	return &StoreHandle{Store: db}, nil
}
