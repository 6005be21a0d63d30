// Package id mints identifiers for records and locally staged items.
package id

import (
	"fmt"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// RecordAlphabet and RecordLength match the ids the remote service assigns.
const (
	RecordAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	RecordLength   = 15
)

// NewRecord creates a 15-character lowercase alphanumeric record id.
//
// Returns an error if the system has insufficient entropy for secure random generation.
func NewRecord() (string, error) {
	id, err := gonanoid.Generate(RecordAlphabet, RecordLength)
	if err != nil {
		return "", fmt.Errorf("generate record id: %w", err)
	}
	return id, nil
}

// MustNewRecord is like NewRecord but panics if ID generation fails.
func MustNewRecord() string {
	id, err := NewRecord()
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return id
}

// Ephemeral creates an id for an item that only lives in memory.
func Ephemeral() string {
	return uuid.NewString()
}
