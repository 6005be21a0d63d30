package domain

import (
	"strings"

	domainerrors "github.com/bunkbed-tech/fushigi-sub000/internal/errors"
)

// Example is a sample sentence shipped with a concept.
type Example struct {
	Japanese string `json:"japanese"`
	English  string `json:"english"`
}

// Concept is a grammar point. Concepts without an owner are provided by the system.
type Concept struct {
	Syncable
	Owner    string    `json:"user"`
	Language string    `json:"language,omitempty"`
	Usage    string    `json:"usage"`
	Meaning  string    `json:"meaning"`
	Context  string    `json:"context"`
	Tags     []string  `json:"tags"`
	Notes    string    `json:"notes"`
	Nuance   string    `json:"nuance"`
	Examples []Example `json:"examples"`
}

// IsSystem reports whether the concept was provided by the system rather than a user.
func (c Concept) IsSystem() bool {
	return c.Owner == ""
}

// Validate implements Record.
func (c Concept) Validate() error {
	if err := c.validate("concept"); err != nil {
		return err
	}
	if strings.TrimSpace(c.Usage) == "" {
		return domainerrors.Decodingf("concept %s has no usage", c.ID)
	}
	return nil
}

// AcceptsUpdate refuses a newer copy that flips system ownership.
func (c Concept) AcceptsUpdate(next Concept) error {
	if c.IsSystem() != next.IsSystem() {
		return domainerrors.Decodingf("concept %s cannot change between system and user owned", c.ID)
	}
	return nil
}
