package study

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bunkbed-tech/fushigi-sub000/internal/coordinator"
	"github.com/bunkbed-tech/fushigi-sub000/internal/domain"
	"github.com/bunkbed-tech/fushigi-sub000/internal/events"
	domainerrors "github.com/bunkbed-tech/fushigi-sub000/internal/errors"
	"github.com/bunkbed-tech/fushigi-sub000/internal/health"
	"github.com/bunkbed-tech/fushigi-sub000/internal/pending"
	"github.com/bunkbed-tech/fushigi-sub000/internal/remote"
	"github.com/bunkbed-tech/fushigi-sub000/internal/schedule"
	"github.com/bunkbed-tech/fushigi-sub000/internal/search"
	"github.com/bunkbed-tech/fushigi-sub000/internal/store"
)

var now = time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)

type staticPager[T any] struct{ items []T }

func (p *staticPager[T]) Page(_ context.Context, page, perPage int) (*remote.Page[T], error) {
	return &remote.Page[T]{Page: page, PerPage: perPage, TotalItems: len(p.items), TotalPages: 1, Items: p.items}, nil
}

type fakeRemote struct {
	entryErr    error
	sentenceErr map[string]error
	seq         int
	schedules   []domain.ScheduleDraft
	sentences   []domain.SentenceDraft
}

func (f *fakeRemote) nextID(prefix string) string {
	f.seq++
	return prefix + string(rune('0'+f.seq))
}

func (f *fakeRemote) CreateJournalEntry(_ context.Context, d domain.JournalEntryDraft) (domain.JournalEntry, error) {
	if f.entryErr != nil {
		return domain.JournalEntry{}, f.entryErr
	}
	e := domain.JournalEntry{Owner: d.Owner, Title: d.Title, Content: d.Content, Private: d.Private}
	e.ID = f.nextID("j")
	e.InitTimestamps(now)
	return e, nil
}

func (f *fakeRemote) CreateSchedule(_ context.Context, d domain.ScheduleDraft) (domain.ScheduleRecord, error) {
	f.schedules = append(f.schedules, d)
	r := domain.ScheduleRecord{
		Owner:        d.Owner,
		ConceptID:    d.ConceptID,
		EaseFactor:   d.EaseFactor,
		IntervalDays: d.IntervalDays,
		Repetition:   d.Repetition,
		LastReviewed: d.LastReviewed,
		DueDate:      d.DueDate,
	}
	r.ID = f.nextID("s")
	r.InitTimestamps(now)
	return r, nil
}

func (f *fakeRemote) CreateSentence(_ context.Context, d domain.SentenceDraft) (domain.ExampleSentence, error) {
	f.sentences = append(f.sentences, d)
	if err := f.sentenceErr[d.ConceptID]; err != nil {
		return domain.ExampleSentence{}, err
	}
	s := domain.ExampleSentence{Owner: d.Owner, JournalEntryID: d.JournalEntryID, ConceptID: d.ConceptID, Content: d.Content}
	s.ID = f.nextID("x")
	s.InitTimestamps(now)
	return s, nil
}

type harness struct {
	svc      *Service
	remote   *fakeRemote
	concepts *staticPager[domain.Concept]
	schedule *staticPager[domain.ScheduleRecord]
	queue    *pending.Queue
	bus      *events.Bus
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	fr := &fakeRemote{}

	conceptPager := &staticPager[domain.Concept]{}
	schedulePager := &staticPager[domain.ScheduleRecord]{}
	opts := coordinator.Options{Logger: logger}
	coords := Coordinators{
		Concepts:  coordinator.New[domain.Concept]("grammar", store.NewMemory[domain.Concept](), conceptPager, opts),
		Journal:   coordinator.New[domain.JournalEntry]("journal_entry", store.NewMemory[domain.JournalEntry](), &staticPager[domain.JournalEntry]{}, opts),
		Sentences: coordinator.New[domain.ExampleSentence]("sentence", store.NewMemory[domain.ExampleSentence](), &staticPager[domain.ExampleSentence]{}, opts),
		Schedule:  coordinator.New[domain.ScheduleRecord]("srs", store.NewMemory[domain.ScheduleRecord](), schedulePager, opts),
	}

	index, err := search.NewConceptIndex(logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	queue := pending.NewQueue(fr, nil, logger)
	bus := events.NewBus(logger)
	svc := NewService(Deps{
		Coordinators: coords,
		Selector: schedule.NewSelector(coords.Schedule, schedule.Options{
			Location: time.UTC,
			Now:      func() time.Time { return now },
			Rand:     rand.New(rand.NewPCG(7, 7)),
			Logger:   logger,
		}),
		Queue:   queue,
		Index:   index,
		Creator: fr,
		Bus:     bus,
		Logger:  logger,
		UserID:  "u1",
		Now:     func() time.Time { return now },
	})

	return &harness{svc: svc, remote: fr, concepts: conceptPager, schedule: schedulePager, queue: queue, bus: bus}
}

func concept(id, usage string) domain.Concept {
	c := domain.Concept{Usage: usage, Meaning: usage + " meaning"}
	c.ID = id
	c.InitTimestamps(now.Add(-24 * time.Hour))
	return c
}

func TestSyncAll_DependentEmpty(t *testing.T) {
	h := newHarness(t)
	h.concepts.items = []domain.Concept{concept("g1", "〜ながら"), concept("g2", "〜ば")}

	h.svc.SyncAll(context.Background())

	st := h.svc.Status()
	assert.Equal(t, health.StateNormal, st.Concepts)
	assert.Equal(t, health.StateEmpty, st.Schedule)
	assert.Equal(t, health.StateDependentEmpty, st.Review)
}

func TestEnroll(t *testing.T) {
	h := newHarness(t)
	h.concepts.items = []domain.Concept{concept("g1", "〜ながら")}
	h.svc.SyncAll(context.Background())

	rec, err := h.svc.Enroll(context.Background(), "g1")
	require.NoError(t, err)

	require.Len(t, h.remote.schedules, 1)
	draft := h.remote.schedules[0]
	assert.Equal(t, "u1", draft.Owner)
	assert.Equal(t, domain.DefaultEaseFactor, draft.EaseFactor)
	assert.Equal(t, domain.DefaultIntervalDays, draft.IntervalDays)
	assert.Equal(t, 0, draft.Repetition)
	assert.False(t, draft.LastReviewed.IsPresent())
	assert.True(t, draft.DueDate.Equal(now))

	// The new record is cached and the review view leaves the dependent-empty state.
	assert.Equal(t, health.StateNormal, h.svc.Status().Review)
	dash := h.svc.Dashboard(context.Background(), schedule.Due, false)
	require.Len(t, dash.Today, 1)
	assert.Equal(t, rec.ID, dash.Today[0].ID)
}

func TestEnroll_RefusesDuplicate(t *testing.T) {
	h := newHarness(t)
	h.concepts.items = []domain.Concept{concept("g1", "〜ながら")}
	h.svc.SyncAll(context.Background())

	_, err := h.svc.Enroll(context.Background(), "g1")
	require.NoError(t, err)

	_, err = h.svc.Enroll(context.Background(), "g1")
	assert.ErrorIs(t, err, domainerrors.ErrAlreadyExists)
	assert.Len(t, h.remote.schedules, 1)
}

func TestEnroll_UnknownConcept(t *testing.T) {
	h := newHarness(t)
	h.svc.SyncAll(context.Background())

	_, err := h.svc.Enroll(context.Background(), "missing")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestSubmitEntry(t *testing.T) {
	h := newHarness(t)
	h.svc.SyncAll(context.Background())

	require.NoError(t, h.svc.TagConcept("g1", "歩きながら考えた"))
	require.NoError(t, h.svc.TagConcept("g2", "雨なら行かない"))
	require.NoError(t, h.svc.TagConcept("g3", "drop me"))
	h.svc.UntagConcept("g3", "drop me")

	result, err := h.svc.SubmitEntry(context.Background(), domain.JournalEntryDraft{
		Title:   "散歩",
		Content: "今日は公園を歩いた。",
	})
	require.NoError(t, err)

	assert.Equal(t, "u1", result.Entry.Owner)
	assert.Len(t, result.Tags.Created, 2)
	require.Len(t, h.remote.sentences, 2)
	assert.Equal(t, result.Entry.ID, h.remote.sentences[0].JournalEntryID)
	assert.Equal(t, 0, h.queue.Len())
	assert.Equal(t, health.StateNormal, h.svc.Status().Journal)
	assert.Equal(t, health.StateNormal, h.svc.Status().Sentences)
}

func TestSubmitEntry_TagFailureStillCreatesEntry(t *testing.T) {
	h := newHarness(t)
	h.remote.sentenceErr = map[string]error{"g2": domainerrors.RemoteProtocol(400, "invalid grammar")}

	require.NoError(t, h.svc.TagConcept("g1", "one"))
	require.NoError(t, h.svc.TagConcept("g2", "two"))

	result, err := h.svc.SubmitEntry(context.Background(), domain.JournalEntryDraft{Title: "t", Content: "c"})
	assert.ErrorIs(t, err, domainerrors.ErrRemoteProtocol)
	assert.NotEmpty(t, result.Entry.ID)
	assert.Len(t, result.Tags.Created, 1)
	assert.Len(t, result.Tags.Failed, 1)
	assert.Equal(t, 0, h.queue.Len())
}

func TestSubmitEntry_EntryFailureResetsQueue(t *testing.T) {
	h := newHarness(t)
	h.remote.entryErr = domainerrors.RemoteTransport(errors.New("connection refused"), "create entry")
	require.NoError(t, h.svc.TagConcept("g1", "one"))

	_, err := h.svc.SubmitEntry(context.Background(), domain.JournalEntryDraft{Title: "t", Content: "c"})
	assert.ErrorIs(t, err, domainerrors.ErrRemoteTransport)
	assert.Empty(t, h.remote.sentences)
	assert.Equal(t, 0, h.queue.Len())
}

func TestSubmitEntry_Validation(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.svc.TagConcept("g1", "kept"))

	_, err := h.svc.SubmitEntry(context.Background(), domain.JournalEntryDraft{Title: "  ", Content: "c"})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
	assert.Equal(t, 1, h.queue.Len(), "a rejected draft keeps its staged tags")
}

func TestSyncAll_PublishesSyncedEvent(t *testing.T) {
	h := newHarness(t)
	var got []events.Event
	h.bus.Subscribe("test", func(e events.Event) { got = append(got, e) }, events.EventSynced)

	h.svc.SyncAll(context.Background())

	require.Len(t, got, 1)
	assert.Equal(t, events.EventSynced, got[0].Type)
	assert.Equal(t, "u1", got[0].UserID)
}

func TestSearch(t *testing.T) {
	h := newHarness(t)
	h.concepts.items = []domain.Concept{concept("g1", "〜ながら"), concept("g2", "〜ば")}
	h.svc.SyncAll(context.Background())

	result, err := h.svc.Search(context.Background(), search.Params{})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), result.Total)
}

func TestHandleEvent_Clear(t *testing.T) {
	h := newHarness(t)
	h.concepts.items = []domain.Concept{concept("g1", "〜ながら")}
	h.svc.SyncAll(context.Background())
	_, err := h.svc.Enroll(context.Background(), "g1")
	require.NoError(t, err)
	require.NoError(t, h.svc.TagConcept("g1", "pending"))

	bus := events.NewBus(nil)
	bus.Subscribe("study", h.svc.HandleEvent, events.EventCleared)
	bus.Publish(events.NewClearedEvent("u1"))

	st := h.svc.Status()
	assert.Equal(t, health.StateEmpty, st.Concepts)
	assert.Equal(t, health.StateEmpty, st.Schedule)
	assert.Equal(t, 0, h.queue.Len())
	assert.Empty(t, h.svc.Dashboard(context.Background(), schedule.Random, false).Today)

	result, err := h.svc.Search(context.Background(), search.Params{})
	require.NoError(t, err)
	assert.Equal(t, uint64(0), result.Total)
}
