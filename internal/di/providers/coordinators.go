package providers

import (
	"github.com/samber/do/v2"

	"github.com/bunkbed-tech/fushigi-sub000/internal/config"
	"github.com/bunkbed-tech/fushigi-sub000/internal/coordinator"
	"github.com/bunkbed-tech/fushigi-sub000/internal/domain"
	"github.com/bunkbed-tech/fushigi-sub000/internal/logger"
	"github.com/bunkbed-tech/fushigi-sub000/internal/remote"
	"github.com/bunkbed-tech/fushigi-sub000/internal/store/sqlite"
	"github.com/bunkbed-tech/fushigi-sub000/internal/study"
)

func newCoordinator[T domain.Record](i do.Injector, name string, pager remote.Pager[T]) *coordinator.Coordinator[T] {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	db := do.MustInvoke[*StoreHandle](i)

	return coordinator.New(name, sqlite.NewRecords[T](db.Store, name), pager, coordinator.Options{
		PerPage: cfg.Remote.PerPage,
		Logger:  log.Logger,
	})
}

// ProvideCoordinators provides one coordinator per synced collection, each
// backed by its own table in the local cache.
func ProvideCoordinators(i do.Injector) (study.Coordinators, error) {
	cols := do.MustInvoke[*remote.Collections](i)

	return study.Coordinators{
		Concepts:  newCoordinator[domain.Concept](i, remote.CollectionConcepts, cols.Concepts),
		Journal:   newCoordinator[domain.JournalEntry](i, remote.CollectionJournal, cols.Journal),
		Sentences: newCoordinator[domain.ExampleSentence](i, remote.CollectionSentences, cols.Sentences),
		Schedule:  newCoordinator[domain.ScheduleRecord](i, remote.CollectionSchedule, cols.Schedule),
	}, nil
}
