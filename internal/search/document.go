// Package search provides full-text search over the published concepts
// using an in-memory Bleve index.
package search

import (
	"strings"

	"github.com/bunkbed-tech/fushigi-sub000/internal/domain"
)

// ConceptDocument is the indexed form of a concept.
//
// Examples are flattened into two text fields so that a query matches a
// concept by any of its example sentences.
type ConceptDocument struct {
	ID       string
	Usage    string
	Meaning  string
	Context  string
	Notes    string
	Nuance   string
	Tags     []string
	Japanese string
	English  string
	System   bool
	Updated  int64
}

// NewConceptDocument builds the document for c.
func NewConceptDocument(c domain.Concept) *ConceptDocument {
	doc := &ConceptDocument{
		ID:      c.ID,
		Usage:   c.Usage,
		Meaning: c.Meaning,
		Context: c.Context,
		Notes:   c.Notes,
		Nuance:  c.Nuance,
		Tags:    c.Tags,
		System:  c.IsSystem(),
		Updated: c.LastUpdated().UnixMilli(),
	}

	japanese := make([]string, 0, len(c.Examples))
	english := make([]string, 0, len(c.Examples))
	for _, ex := range c.Examples {
		japanese = append(japanese, ex.Japanese)
		english = append(english, ex.English)
	}
	doc.Japanese = strings.Join(japanese, "\n")
	doc.English = strings.Join(english, "\n")
	return doc
}

// ToMap converts the document to the field names used by the index mapping.
func (d *ConceptDocument) ToMap() map[string]any {
	m := map[string]any{
		"id":         d.ID,
		"usage":      d.Usage,
		"meaning":    d.Meaning,
		"system":     d.System,
		"updated_at": d.Updated,
	}
	if d.Context != "" {
		m["context"] = d.Context
	}
	if d.Notes != "" {
		m["notes"] = d.Notes
	}
	if d.Nuance != "" {
		m["nuance"] = d.Nuance
	}
	if len(d.Tags) > 0 {
		m["tags"] = d.Tags
	}
	if d.Japanese != "" {
		m["example_ja"] = d.Japanese
	}
	if d.English != "" {
		m["example_en"] = d.English
	}
	return m
}
