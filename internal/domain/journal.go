package domain

import domainerrors "github.com/bunkbed-tech/fushigi-sub000/internal/errors"

// JournalEntry is a user-authored journal post.
type JournalEntry struct {
	Syncable
	Owner   string `json:"user"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Private bool   `json:"is_private"`
}

// Validate implements Record.
func (j JournalEntry) Validate() error {
	return j.validate("journal entry")
}

// ExampleSentence links a sentence from a journal entry to the concept it practices.
type ExampleSentence struct {
	Syncable
	Owner          string `json:"user"`
	JournalEntryID string `json:"journal_entry"`
	ConceptID      string `json:"grammar"`
	Content        string `json:"content"`
}

// Validate implements Record.
func (s ExampleSentence) Validate() error {
	if err := s.validate("sentence"); err != nil {
		return err
	}
	if s.ConceptID == "" {
		return domainerrors.Decodingf("sentence %s has no concept", s.ID)
	}
	if s.JournalEntryID == "" {
		return domainerrors.Decodingf("sentence %s has no journal entry", s.ID)
	}
	return nil
}
