// Package schedule picks the day's study set from the schedule records.
package schedule

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/bunkbed-tech/fushigi-sub000/internal/domain"
)

// DefaultCap is the size of the daily study set.
const DefaultCap = 5

// Strategy selects how the daily set is drawn.
type Strategy int

// Strategies.
const (
	// Random draws uniformly without replacement.
	Random Strategy = iota
	// Due takes records whose due date has passed, falling back to Random
	// when none are due.
	Due
)

func (s Strategy) String() string {
	switch s {
	case Random:
		return "random"
	case Due:
		return "due"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

// Source supplies the published schedule records.
type Source interface {
	Items() []domain.ScheduleRecord
}

// SelectionStore keeps the day's selection between runs.
type SelectionStore interface {
	LoadSelection(ctx context.Context, day, strategy string) ([]string, bool, error)
	SaveSelection(ctx context.Context, day, strategy string, ids []string) error
}

// Options configures a Selector.
type Options struct {
	Cap int
	// Store, when set, persists each day's selection so later processes
	// serve the same set.
	Store SelectionStore
	// Location decides where a calendar day starts. Defaults to time.Local.
	Location *time.Location
	Now      func() time.Time
	Rand     *rand.Rand
	Logger   *slog.Logger
}

type cacheKey struct {
	day      string
	strategy Strategy
}

// Selector derives the daily study set. It only reads from its source.
type Selector struct {
	source Source
	store  SelectionStore
	cap    int
	loc    *time.Location
	now    func() time.Time
	logger *slog.Logger

	mu    sync.Mutex
	rng   *rand.Rand
	cache map[cacheKey][]domain.ScheduleRecord
}

// NewSelector creates a Selector reading from source.
func NewSelector(source Source, opts Options) *Selector {
	s := &Selector{
		source: source,
		store:  opts.Store,
		cap:    opts.Cap,
		loc:    opts.Location,
		now:    opts.Now,
		rng:    opts.Rand,
		logger: opts.Logger,
		cache:  make(map[cacheKey][]domain.ScheduleRecord),
	}
	if s.cap <= 0 {
		s.cap = DefaultCap
	}
	if s.loc == nil {
		s.loc = time.Local
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

func (s *Selector) dayKey(now time.Time) string {
	return now.In(s.loc).Format(time.DateOnly)
}

// Today returns the study set for the current day, computing it on the
// first call of the day for each strategy. A set stored by an earlier
// process for the same day is served again with the current records.
func (s *Selector) Today(ctx context.Context, strategy Strategy) []domain.ScheduleRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	key := cacheKey{day: s.dayKey(now), strategy: strategy}
	if cached, ok := s.cache[key]; ok {
		return slices.Clone(cached)
	}
	if stored, ok := s.load(ctx, key); ok {
		s.remember(key, stored)
		return slices.Clone(stored)
	}
	return s.compute(ctx, key, now)
}

// ForceDailyRefresh recomputes the study set now, replacing the cached and
// stored one.
func (s *Selector) ForceDailyRefresh(ctx context.Context, strategy Strategy) []domain.ScheduleRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	return s.compute(ctx, cacheKey{day: s.dayKey(now), strategy: strategy}, now)
}

// load resolves a stored selection against the published records. Records
// that no longer exist are dropped. A stored set that resolves to nothing
// while records exist is treated as missing.
func (s *Selector) load(ctx context.Context, key cacheKey) ([]domain.ScheduleRecord, bool) {
	if s.store == nil {
		return nil, false
	}
	ids, ok, err := s.store.LoadSelection(ctx, key.day, key.strategy.String())
	if err != nil {
		s.logger.Warn("stored selection unavailable", "day", key.day, "error", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}

	records := s.source.Items()
	byID := make(map[string]domain.ScheduleRecord, len(records))
	for _, r := range records {
		byID[r.ID] = r
	}
	picked := make([]domain.ScheduleRecord, 0, len(ids))
	for _, recordID := range ids {
		if r, found := byID[recordID]; found {
			picked = append(picked, r)
		}
	}
	if len(picked) == 0 && len(records) > 0 {
		return nil, false
	}
	return picked, true
}

// remember caches picked for key. Only the current day is ever served.
func (s *Selector) remember(key cacheKey, picked []domain.ScheduleRecord) {
	for k := range s.cache {
		if k.day != key.day {
			delete(s.cache, k)
		}
	}
	s.cache[key] = picked
}

// Reset drops every cached selection. Stored selections are removed with
// the rest of the local cache.
func (s *Selector) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.cache)
}

func (s *Selector) compute(ctx context.Context, key cacheKey, now time.Time) []domain.ScheduleRecord {
	records := s.source.Items()

	var picked []domain.ScheduleRecord
	switch key.strategy {
	case Due:
		picked = DueSet(records, now, s.cap)
		if len(picked) == 0 {
			picked = s.random(records)
		}
	default:
		picked = s.random(records)
	}

	s.remember(key, picked)
	if s.store != nil {
		ids := make([]string, len(picked))
		for i, r := range picked {
			ids[i] = r.ID
		}
		if err := s.store.SaveSelection(ctx, key.day, key.strategy.String(), ids); err != nil {
			s.logger.Warn("selection not stored", "day", key.day, "error", err)
		}
	}

	s.logger.Debug("daily selection computed",
		"strategy", key.strategy.String(),
		"day", key.day,
		"selected", len(picked),
		"available", len(records),
	)
	return slices.Clone(picked)
}

func (s *Selector) random(records []domain.ScheduleRecord) []domain.ScheduleRecord {
	n := min(s.cap, len(records))
	picked := make([]domain.ScheduleRecord, 0, n)
	for _, i := range s.rng.Perm(len(records))[:n] {
		picked = append(picked, records[i])
	}
	return picked
}

// DueSet returns up to limit records due at or before now, earliest due
// first and lower ease factor first among equal due dates.
func DueSet(records []domain.ScheduleRecord, now time.Time, limit int) []domain.ScheduleRecord {
	var due []domain.ScheduleRecord
	for _, r := range records {
		if r.IsDue(now) {
			due = append(due, r)
		}
	}
	slices.SortStableFunc(due, func(a, b domain.ScheduleRecord) int {
		if c := a.DueDate.Compare(b.DueDate.Time); c != 0 {
			return c
		}
		return cmp.Compare(a.EaseFactor, b.EaseFactor)
	})
	if len(due) > limit {
		due = due[:limit]
	}
	return due
}
