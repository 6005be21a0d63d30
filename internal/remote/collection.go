package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/bunkbed-tech/fushigi-sub000/internal/domain"
	domainerrors "github.com/bunkbed-tech/fushigi-sub000/internal/errors"
)

// Collection names on the record service.
const (
	CollectionConcepts  = "grammar"
	CollectionJournal   = "journal_entry"
	CollectionSentences = "sentence"
	CollectionSchedule  = "srs"
)

// Collection reads and creates records of one type.
type Collection[T any] struct {
	client *Client
	name   string
}

// NewCollection binds a collection name to a record type.
func NewCollection[T any](c *Client, name string) *Collection[T] {
	return &Collection[T]{client: c, name: name}
}

// Name returns the collection name.
func (c *Collection[T]) Name() string {
	return c.name
}

func (c *Collection[T]) path() string {
	return "/api/collections/" + c.name + "/records"
}

// Page implements Pager.
func (c *Collection[T]) Page(ctx context.Context, page, perPage int) (*Page[T], error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("perPage", strconv.Itoa(perPage))

	data, err := c.client.do(ctx, http.MethodGet, c.path(), query, nil)
	if err != nil {
		return nil, err
	}
	return decodePage[T](data, c.name, c.client.logger)
}

// Create posts a draft and returns the record the service created.
func (c *Collection[T]) Create(ctx context.Context, draft any) (T, error) {
	var created T
	data, err := c.client.do(ctx, http.MethodPost, c.path(), nil, draft)
	if err != nil {
		return created, err
	}
	if err := json.Unmarshal(data, &created); err != nil {
		return created, domainerrors.Decoding(err, "decode created "+c.name+" record")
	}
	return created, nil
}

// Collections groups the typed collections the client syncs.
type Collections struct {
	Concepts  *Collection[domain.Concept]
	Journal   *Collection[domain.JournalEntry]
	Sentences *Collection[domain.ExampleSentence]
	Schedule  *Collection[domain.ScheduleRecord]
}

// NewCollections binds every synced collection to c.
func NewCollections(c *Client) *Collections {
	return &Collections{
		Concepts:  NewCollection[domain.Concept](c, CollectionConcepts),
		Journal:   NewCollection[domain.JournalEntry](c, CollectionJournal),
		Sentences: NewCollection[domain.ExampleSentence](c, CollectionSentences),
		Schedule:  NewCollection[domain.ScheduleRecord](c, CollectionSchedule),
	}
}

// CreateSentence creates an example sentence; it satisfies the pending queue's creator.
func (c *Collections) CreateSentence(ctx context.Context, draft domain.SentenceDraft) (domain.ExampleSentence, error) {
	return c.Sentences.Create(ctx, draft)
}

// CreateJournalEntry creates a journal entry.
func (c *Collections) CreateJournalEntry(ctx context.Context, draft domain.JournalEntryDraft) (domain.JournalEntry, error) {
	return c.Journal.Create(ctx, draft)
}

// CreateSchedule creates a schedule record.
func (c *Collections) CreateSchedule(ctx context.Context, draft domain.ScheduleDraft) (domain.ScheduleRecord, error) {
	return c.Schedule.Create(ctx, draft)
}
