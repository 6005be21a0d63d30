// Package domain holds the records synchronized between the remote service
// and the local cache.
package domain

import (
	"time"

	domainerrors "github.com/bunkbed-tech/fushigi-sub000/internal/errors"
)

// Record is implemented by every entity a sync coordinator manages.
type Record interface {
	RecordID() string
	LastUpdated() time.Time
	// Validate rejects records that decoded but cannot be materialized.
	Validate() error
}

// Syncable provides the identity and timestamps shared by all synced records.
// It is embedded in every domain type that participates in synchronization.
type Syncable struct {
	ID      string    `json:"id"`
	Created Timestamp `json:"created"`
	Updated Timestamp `json:"updated"`
}

// RecordID returns the remote-assigned id.
func (s Syncable) RecordID() string {
	return s.ID
}

// LastUpdated returns the last-modified time used for conflict resolution.
func (s Syncable) LastUpdated() time.Time {
	return s.Updated.Time
}

// InitTimestamps sets both Created and Updated to now.
func (s *Syncable) InitTimestamps(now time.Time) {
	s.Created = At(now)
	s.Updated = At(now)
}

func (s Syncable) validate(kind string) error {
	if s.ID == "" {
		return domainerrors.Decodingf("%s record has no id", kind)
	}
	if s.Updated.IsZero() {
		return domainerrors.Decodingf("%s %s has no updated date", kind, s.ID)
	}
	if s.Created.IsZero() {
		return domainerrors.Decodingf("%s %s has no created date", kind, s.ID)
	}
	return nil
}
