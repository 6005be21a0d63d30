package domain

// Drafts are the payloads sent to the remote service to create records.
// The remote assigns ids and timestamps.

// JournalEntryDraft creates a JournalEntry.
type JournalEntryDraft struct {
	Owner   string `json:"user" validate:"required"`
	Title   string `json:"title" validate:"required,notblank,max=200"`
	Content string `json:"content" validate:"required,notblank"`
	Private bool   `json:"is_private"`
}

// SentenceDraft creates an ExampleSentence.
type SentenceDraft struct {
	Owner          string `json:"user" validate:"required"`
	JournalEntryID string `json:"journal_entry" validate:"required"`
	ConceptID      string `json:"grammar" validate:"required"`
	Content        string `json:"content" validate:"required,notblank"`
}

// ScheduleDraft creates a ScheduleRecord.
type ScheduleDraft struct {
	Owner        string       `json:"user" validate:"required"`
	ConceptID    string       `json:"grammar" validate:"required"`
	EaseFactor   float64      `json:"ease_factor" validate:"gte=1.3"`
	IntervalDays float64      `json:"interval_days" validate:"gt=0"`
	Repetition   int          `json:"repetition" validate:"gte=0"`
	LastReviewed OptionalTime `json:"last_reviewed"`
	DueDate      Timestamp    `json:"due_date"`
}

// PendingTag is a concept tag staged locally while a journal entry is composed.
// It is never persisted.
type PendingTag struct {
	ID        string
	ConceptID string
	Text      string
}
