package remote

import (
	"context"
	"encoding/json"
	"log/slog"

	domainerrors "github.com/bunkbed-tech/fushigi-sub000/internal/errors"
)

// Page is one page of a paginated collection listing.
type Page[T any] struct {
	Page       int `json:"page"`
	PerPage    int `json:"perPage"`
	TotalItems int `json:"totalItems"`
	TotalPages int `json:"totalPages"`
	Items      []T `json:"items"`

	// Skipped counts items that could not be decoded into T.
	Skipped int `json:"-"`
}

// Pager fetches a single page of a collection.
type Pager[T any] interface {
	Page(ctx context.Context, page, perPage int) (*Page[T], error)
}

// FetchAll requests pages 1, 2, ... one at a time until the page number
// reaches the reported total, and returns the items in page order.
// The first error aborts the whole fetch.
func FetchAll[T any](ctx context.Context, p Pager[T], perPage int) ([]T, error) {
	var all []T
	for page := 1; ; page++ {
		pg, err := p.Page(ctx, page, perPage)
		if err != nil {
			return nil, err
		}
		all = append(all, pg.Items...)
		if page >= pg.TotalPages {
			return all, nil
		}
	}
}

type rawPage struct {
	Page       int               `json:"page"`
	PerPage    int               `json:"perPage"`
	TotalItems int               `json:"totalItems"`
	TotalPages int               `json:"totalPages"`
	Items      []json.RawMessage `json:"items"`
}

// decodePage decodes a listing. A malformed envelope is a Decoding error;
// a malformed item is logged and skipped so one bad record cannot stall a sync.
func decodePage[T any](data []byte, collection string, logger *slog.Logger) (*Page[T], error) {
	var raw rawPage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, domainerrors.Decoding(err, "decode "+collection+" page")
	}

	page := &Page[T]{
		Page:       raw.Page,
		PerPage:    raw.PerPage,
		TotalItems: raw.TotalItems,
		TotalPages: raw.TotalPages,
		Items:      make([]T, 0, len(raw.Items)),
	}
	for i, item := range raw.Items {
		var v T
		if err := json.Unmarshal(item, &v); err != nil {
			logger.Warn("skipping undecodable record",
				"collection", collection,
				"page", raw.Page,
				"index", i,
				"error", err,
			)
			page.Skipped++
			continue
		}
		page.Items = append(page.Items, v)
	}
	return page, nil
}
