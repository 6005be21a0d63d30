// Package pending stages concept tags typed while a journal entry is being
// composed, before the entry exists on the remote service.
package pending

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/text/unicode/norm"

	"github.com/bunkbed-tech/fushigi-sub000/internal/domain"
	domainerrors "github.com/bunkbed-tech/fushigi-sub000/internal/errors"
	"github.com/bunkbed-tech/fushigi-sub000/internal/id"
	"github.com/bunkbed-tech/fushigi-sub000/internal/validation"
)

// SentenceCreator creates example sentences on the remote service.
type SentenceCreator interface {
	CreateSentence(ctx context.Context, draft domain.SentenceDraft) (domain.ExampleSentence, error)
}

// FlushResult reports what a flush did with each staged tag.
type FlushResult struct {
	Created []domain.ExampleSentence
	Failed  []domain.PendingTag
}

// Queue holds staged tags in insertion order. It is safe for concurrent use.
type Queue struct {
	creator   SentenceCreator
	validator *validation.Validator
	logger    *slog.Logger

	mu   sync.Mutex
	tags []domain.PendingTag
}

// NewQueue creates an empty Queue.
func NewQueue(creator SentenceCreator, v *validation.Validator, logger *slog.Logger) *Queue {
	if v == nil {
		v = validation.New()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Queue{creator: creator, validator: v, logger: logger}
}

// normalize folds width and composition variants so that full-width and
// half-width input compare equal.
func normalize(text string) string {
	return norm.NFKC.String(strings.TrimSpace(text))
}

// Add stages text for conceptID. Blank text is rejected.
func (q *Queue) Add(conceptID, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return domainerrors.Validation("tag text is required")
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	q.tags = append(q.tags, domain.PendingTag{
		ID:        id.Ephemeral(),
		ConceptID: conceptID,
		Text:      text,
	})
	return nil
}

// Remove drops the first tag matching text and conceptID. It is a no-op when
// nothing matches.
func (q *Queue) Remove(text, conceptID string) {
	want := normalize(text)

	q.mu.Lock()
	defer q.mu.Unlock()
	for i, tag := range q.tags {
		if tag.ConceptID == conceptID && normalize(tag.Text) == want {
			q.tags = append(q.tags[:i], q.tags[i+1:]...)
			return
		}
	}
}

// Tags returns a copy of the staged tags.
func (q *Queue) Tags() []domain.PendingTag {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]domain.PendingTag(nil), q.tags...)
}

// Len returns the number of staged tags.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tags)
}

// Flush takes every staged tag and creates an example sentence for it under
// journalEntryID. A tag whose create fails is dropped, not retried; the
// failures are listed in the result and joined into the returned error.
func (q *Queue) Flush(ctx context.Context, journalEntryID, userID string) (FlushResult, error) {
	q.mu.Lock()
	tags := q.tags
	q.tags = nil
	q.mu.Unlock()

	var (
		result FlushResult
		errs   []error
	)
	for _, tag := range tags {
		draft := domain.SentenceDraft{
			Owner:          userID,
			JournalEntryID: journalEntryID,
			ConceptID:      tag.ConceptID,
			Content:        tag.Text,
		}

		sentence, err := q.create(ctx, draft)
		if err != nil {
			q.logger.Warn("dropping pending tag",
				"concept_id", tag.ConceptID,
				"journal_entry_id", journalEntryID,
				"error", err,
			)
			result.Failed = append(result.Failed, tag)
			errs = append(errs, err)
			continue
		}
		result.Created = append(result.Created, sentence)
	}

	q.logger.Info("pending tags flushed",
		"journal_entry_id", journalEntryID,
		"created", len(result.Created),
		"dropped", len(result.Failed),
	)
	return result, domainerrors.Join(errs...)
}

func (q *Queue) create(ctx context.Context, draft domain.SentenceDraft) (domain.ExampleSentence, error) {
	if err := q.validator.Validate(draft); err != nil {
		return domain.ExampleSentence{}, err
	}
	return q.creator.CreateSentence(ctx, draft)
}

// Reset empties the queue whether or not a flush succeeded.
func (q *Queue) Reset() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.tags = nil
}
