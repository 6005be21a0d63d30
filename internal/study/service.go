// Package study ties the synced collections together into the operations a
// learner performs: syncing, picking today's concepts, enrolling a concept
// for review, and writing journal entries.
package study

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/bunkbed-tech/fushigi-sub000/internal/composite"
	"github.com/bunkbed-tech/fushigi-sub000/internal/coordinator"
	"github.com/bunkbed-tech/fushigi-sub000/internal/domain"
	"github.com/bunkbed-tech/fushigi-sub000/internal/events"
	domainerrors "github.com/bunkbed-tech/fushigi-sub000/internal/errors"
	"github.com/bunkbed-tech/fushigi-sub000/internal/health"
	"github.com/bunkbed-tech/fushigi-sub000/internal/pending"
	"github.com/bunkbed-tech/fushigi-sub000/internal/schedule"
	"github.com/bunkbed-tech/fushigi-sub000/internal/search"
	"github.com/bunkbed-tech/fushigi-sub000/internal/validation"
)

// Creator creates records on the remote service.
type Creator interface {
	CreateJournalEntry(ctx context.Context, draft domain.JournalEntryDraft) (domain.JournalEntry, error)
	CreateSchedule(ctx context.Context, draft domain.ScheduleDraft) (domain.ScheduleRecord, error)
}

// Coordinators groups one coordinator per synced collection.
type Coordinators struct {
	Concepts  *coordinator.Coordinator[domain.Concept]
	Journal   *coordinator.Coordinator[domain.JournalEntry]
	Sentences *coordinator.Coordinator[domain.ExampleSentence]
	Schedule  *coordinator.Coordinator[domain.ScheduleRecord]
}

// Deps holds everything a Service needs.
type Deps struct {
	Coordinators Coordinators
	Selector     *schedule.Selector
	Queue        *pending.Queue
	Index        *search.ConceptIndex
	Creator      Creator
	Validator    *validation.Validator
	// Bus, when set, receives a sync completion event after SyncAll.
	Bus          *events.Bus
	Logger       *slog.Logger
	UserID       string
	Now          func() time.Time
}

// Service implements the study workflows.
type Service struct {
	c         Coordinators
	review    *composite.Resolver[domain.Concept, domain.ScheduleRecord]
	selector  *schedule.Selector
	queue     *pending.Queue
	index     *search.ConceptIndex
	creator   Creator
	validator *validation.Validator
	bus       *events.Bus
	logger    *slog.Logger
	userID    string
	now       func() time.Time
}

// NewService creates a Service.
func NewService(deps Deps) *Service {
	s := &Service{
		c:         deps.Coordinators,
		review:    composite.NewResolver(deps.Coordinators.Concepts, deps.Coordinators.Schedule),
		selector:  deps.Selector,
		queue:     deps.Queue,
		index:     deps.Index,
		creator:   deps.Creator,
		validator: deps.Validator,
		bus:       deps.Bus,
		logger:    deps.Logger,
		userID:    deps.UserID,
		now:       deps.Now,
	}
	if s.validator == nil {
		s.validator = validation.New()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.index != nil {
		s.c.Concepts.OnPublish(s.index.OnPublish)
	}
	return s
}

// LoadLocal loads every collection from the local cache without touching
// the network.
func (s *Service) LoadLocal(ctx context.Context) {
	s.forEach(func(r refresher) { r.LoadLocal(ctx) })
}

// SyncAll refreshes every collection. Collections refresh concurrently;
// each coordinator still fetches its own pages one at a time.
func (s *Service) SyncAll(ctx context.Context) {
	start := time.Now()
	s.forEach(func(r refresher) { r.Refresh(ctx) })
	s.logger.Info("sync complete",
		"duration_ms", time.Since(start).Milliseconds(),
		"concepts", s.c.Concepts.State().String(),
		"journal", s.c.Journal.State().String(),
		"sentences", s.c.Sentences.State().String(),
		"schedule", s.c.Schedule.State().String(),
	)
	if s.bus != nil {
		s.bus.Publish(events.NewSyncedEvent(s.userID))
	}
}

type refresher interface {
	LoadLocal(ctx context.Context)
	Refresh(ctx context.Context)
}

func (s *Service) forEach(fn func(refresher)) {
	var wg sync.WaitGroup
	for _, r := range []refresher{s.c.Concepts, s.c.Journal, s.c.Sentences, s.c.Schedule} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn(r)
		}()
	}
	wg.Wait()
}

// Status is the resolved state of every view.
type Status struct {
	Concepts  health.SystemState
	Journal   health.SystemState
	Sentences health.SystemState
	Schedule  health.SystemState
	Review    health.SystemState
}

// Status returns the state of each collection and of the review view.
func (s *Service) Status() Status {
	return Status{
		Concepts:  s.c.Concepts.State(),
		Journal:   s.c.Journal.State(),
		Sentences: s.c.Sentences.State(),
		Schedule:  s.c.Schedule.State(),
		Review:    s.review.State(),
	}
}

// Dashboard is the review view: concepts and their schedule, today's study
// set, and the combined state.
type Dashboard struct {
	Review composite.Snapshot[domain.Concept, domain.ScheduleRecord]
	Today  []domain.ScheduleRecord
}

// Dashboard returns the review view. force recomputes today's set.
func (s *Service) Dashboard(ctx context.Context, strategy schedule.Strategy, force bool) Dashboard {
	var today []domain.ScheduleRecord
	if force {
		today = s.selector.ForceDailyRefresh(ctx, strategy)
	} else {
		today = s.selector.Today(ctx, strategy)
	}
	return Dashboard{Review: s.review.Snapshot(), Today: today}
}

// Concept returns the published concept with id.
func (s *Service) Concept(id string) (domain.Concept, bool) {
	for _, c := range s.c.Concepts.Items() {
		if c.ID == id {
			return c, true
		}
	}
	return domain.Concept{}, false
}

// Search searches the published concepts.
func (s *Service) Search(ctx context.Context, params search.Params) (*search.Result, error) {
	if s.index == nil {
		return nil, domainerrors.Internalf("search index not configured")
	}
	return s.index.Search(ctx, params)
}

// HandleEvent drops all in-memory state on a clear event.
func (s *Service) HandleEvent(e events.Event) {
	if e.Type != events.EventCleared {
		return
	}
	s.c.Concepts.Clear()
	s.c.Journal.Clear()
	s.c.Sentences.Clear()
	s.c.Schedule.Clear()
	s.selector.Reset()
	s.queue.Reset()
	s.logger.Info("in-memory state cleared")
}
