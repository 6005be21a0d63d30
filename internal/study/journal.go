package study

import (
	"context"

	"github.com/bunkbed-tech/fushigi-sub000/internal/domain"
	"github.com/bunkbed-tech/fushigi-sub000/internal/pending"
)

// EntryResult is what SubmitEntry created.
type EntryResult struct {
	Entry domain.JournalEntry
	Tags  pending.FlushResult
}

// TagConcept stages a concept tag for the entry being composed.
func (s *Service) TagConcept(conceptID, text string) error {
	return s.queue.Add(conceptID, text)
}

// UntagConcept removes a staged tag.
func (s *Service) UntagConcept(conceptID, text string) {
	s.queue.Remove(text, conceptID)
}

// SubmitEntry creates a journal entry, then creates one example sentence per
// staged tag under it. Once the draft passes validation the staged tags are
// cleared whatever the outcome, the same as resetting the form.
//
// A failure creating the entry returns that error and nothing else is sent.
// Tag failures are reported in the result and in the returned error; the
// entry itself was still created.
func (s *Service) SubmitEntry(ctx context.Context, draft domain.JournalEntryDraft) (EntryResult, error) {
	if draft.Owner == "" {
		draft.Owner = s.userID
	}
	if err := s.validator.Validate(draft); err != nil {
		return EntryResult{}, err
	}
	defer s.queue.Reset()

	entry, err := s.creator.CreateJournalEntry(ctx, draft)
	if err != nil {
		return EntryResult{}, err
	}
	if _, err := s.c.Journal.Merge(ctx, []domain.JournalEntry{entry}); err != nil {
		s.logger.Warn("journal entry not cached locally", "journal_entry_id", entry.ID, "error", err)
	}

	tags, flushErr := s.queue.Flush(ctx, entry.ID, draft.Owner)
	if len(tags.Created) > 0 {
		if _, err := s.c.Sentences.Merge(ctx, tags.Created); err != nil {
			s.logger.Warn("sentences not cached locally", "journal_entry_id", entry.ID, "error", err)
		}
	}

	s.logger.Info("journal entry submitted",
		"journal_entry_id", entry.ID,
		"sentences", len(tags.Created),
		"dropped_tags", len(tags.Failed),
	)
	return EntryResult{Entry: entry, Tags: tags}, flushErr
}
