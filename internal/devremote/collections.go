package devremote

import (
	"encoding/json"

	"github.com/bunkbed-tech/fushigi-sub000/internal/domain"
	domainerrors "github.com/bunkbed-tech/fushigi-sub000/internal/errors"
	"github.com/bunkbed-tech/fushigi-sub000/internal/validation"
)

// collectionRules checks a create payload for one collection. The store
// enforces unique inside the write transaction.
type collectionRules struct {
	draft  func() any
	unique []string
}

var collections = map[string]collectionRules{
	"grammar":       {draft: func() any { return &conceptDraft{} }},
	"journal_entry": {draft: func() any { return &domain.JournalEntryDraft{} }},
	"sentence":      {draft: func() any { return &domain.SentenceDraft{} }},
	// One schedule record per user and concept.
	"srs": {draft: func() any { return &domain.ScheduleDraft{} }, unique: []string{"user", "grammar"}},
}

// conceptDraft is the create payload for a concept. Owner is optional:
// concepts without one are system concepts.
type conceptDraft struct {
	Owner   string   `json:"user"`
	Usage   string   `json:"usage" validate:"required,notblank"`
	Meaning string   `json:"meaning" validate:"required,notblank"`
	Tags    []string `json:"tags"`
}

// checkCreate validates fields against the collection's draft type.
func checkCreate(v *validation.Validator, collection string, fields Record) error {
	rules, ok := collections[collection]
	if !ok {
		return domainerrors.NotFoundf("collection %s not found", collection)
	}

	data, err := json.Marshal(fields)
	if err != nil {
		return domainerrors.Validation("invalid body")
	}
	draft := rules.draft()
	if err := json.Unmarshal(data, draft); err != nil {
		return domainerrors.Validation("invalid body: " + err.Error())
	}
	if err := v.Validate(draft); err != nil {
		return err
	}

	return nil
}
