package providers

import (
	"github.com/samber/do/v2"

	"github.com/bunkbed-tech/fushigi-sub000/internal/config"
	"github.com/bunkbed-tech/fushigi-sub000/internal/credential"
	"github.com/bunkbed-tech/fushigi-sub000/internal/events"
	"github.com/bunkbed-tech/fushigi-sub000/internal/logger"
	"github.com/bunkbed-tech/fushigi-sub000/internal/pending"
	"github.com/bunkbed-tech/fushigi-sub000/internal/remote"
	"github.com/bunkbed-tech/fushigi-sub000/internal/schedule"
	"github.com/bunkbed-tech/fushigi-sub000/internal/session"
	"github.com/bunkbed-tech/fushigi-sub000/internal/study"
	"github.com/bunkbed-tech/fushigi-sub000/internal/validation"
)

// ProvideValidator provides the shared struct validator.
func ProvideValidator(i do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}

// ProvideEventBus provides the in-process event bus.
func ProvideEventBus(i do.Injector) (*events.Bus, error) {
	log := do.MustInvoke[*logger.Logger](i)
	return events.NewBus(log.Logger), nil
}

// ProvideSelector provides the daily study selector, reading the schedule
// coordinator's published records and keeping each day's set in the local
// cache.
func ProvideSelector(i do.Injector) (*schedule.Selector, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	coords := do.MustInvoke[study.Coordinators](i)
	db := do.MustInvoke[*StoreHandle](i)

	return schedule.NewSelector(coords.Schedule, schedule.Options{
		Store:    db.Store,
		Cap:      cfg.Study.DailyCap,
		Location: cfg.SelectionLocation(),
		Logger:   log.Logger,
	}), nil
}

// ProvidePendingQueue provides the queue of sentences waiting for a journal entry.
func ProvidePendingQueue(i do.Injector) (*pending.Queue, error) {
	log := do.MustInvoke[*logger.Logger](i)
	return pending.NewQueue(
		do.MustInvoke[*remote.Collections](i),
		do.MustInvoke[*validation.Validator](i),
		log.Logger,
	), nil
}

// ProvideSessionService provides login and logout.
func ProvideSessionService(i do.Injector) (*session.Service, error) {
	log := do.MustInvoke[*logger.Logger](i)
	return session.NewService(
		do.MustInvoke[*credential.Keyring](i),
		do.MustInvoke[*StoreHandle](i),
		do.MustInvoke[*events.Bus](i),
		log.Logger,
	), nil
}

// ProvideStudyService provides the study workflows and subscribes them to
// session events.
func ProvideStudyService(i do.Injector) (*study.Service, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	bus := do.MustInvoke[*events.Bus](i)
	index := do.MustInvoke[*SearchIndexHandle](i)

	svc := study.NewService(study.Deps{
		Coordinators: do.MustInvoke[study.Coordinators](i),
		Selector:     do.MustInvoke[*schedule.Selector](i),
		Queue:        do.MustInvoke[*pending.Queue](i),
		Index:        index.ConceptIndex,
		Creator:      do.MustInvoke[*remote.Collections](i),
		Validator:    do.MustInvoke[*validation.Validator](i),
		Bus:          bus,
		Logger:       log.Logger,
		UserID:       cfg.Study.UserID,
	})

	bus.Subscribe("study", svc.HandleEvent, events.EventCleared)

	return svc, nil
}
