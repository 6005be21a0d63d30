package domain

import (
	"time"

	domainerrors "github.com/bunkbed-tech/fushigi-sub000/internal/errors"
)

// Defaults for a newly enrolled concept.
const (
	DefaultEaseFactor   = 2.5
	DefaultIntervalDays = 1.0
)

// ScheduleRecord is the spaced-repetition state for one (user, concept) pair.
type ScheduleRecord struct {
	Syncable
	Owner        string       `json:"user"`
	ConceptID    string       `json:"grammar"`
	EaseFactor   float64      `json:"ease_factor"`
	IntervalDays float64      `json:"interval_days"`
	Repetition   int          `json:"repetition"`
	LastReviewed OptionalTime `json:"last_reviewed"`
	DueDate      Timestamp    `json:"due_date"`
}

// Validate implements Record.
func (r ScheduleRecord) Validate() error {
	if err := r.validate("schedule record"); err != nil {
		return err
	}
	if r.ConceptID == "" {
		return domainerrors.Decodingf("schedule record %s has no concept", r.ID)
	}
	if r.DueDate.IsZero() {
		return domainerrors.Decodingf("schedule record %s has no due date", r.ID)
	}
	return nil
}

// IsDue reports whether the record is due at now.
func (r ScheduleRecord) IsDue(now time.Time) bool {
	return !r.DueDate.After(now)
}

// IsNew reports whether the record has never been reviewed.
func (r ScheduleRecord) IsNew() bool {
	return r.Repetition == 0 && !r.LastReviewed.IsPresent()
}
