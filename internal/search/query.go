package search

import (
	"context"
	"fmt"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// Params configures a concept search.
type Params struct {
	Query string
	// Tags keeps only concepts carrying at least one of these tags.
	Tags []string
	// SystemOnly keeps only system-provided concepts.
	SystemOnly bool

	Limit  int
	Offset int
}

// DefaultParams returns the defaults used by the CLI.
func DefaultParams(q string) Params {
	return Params{Query: q, Limit: 20}
}

// Result is one page of search hits.
type Result struct {
	Query string `json:"query"`
	Total uint64 `json:"total"`
	Hits  []Hit  `json:"hits"`
}

// Hit is a single matching concept.
type Hit struct {
	ID         string            `json:"id"`
	Score      float64           `json:"score"`
	Usage      string            `json:"usage"`
	Meaning    string            `json:"meaning"`
	Tags       []string          `json:"tags,omitempty"`
	Highlights map[string]string `json:"highlights,omitempty"`
}

// Search runs a query against the index.
func (s *ConceptIndex) Search(ctx context.Context, params Params) (*Result, error) {
	if params.Limit <= 0 {
		params.Limit = 20
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	req := bleve.NewSearchRequestOptions(buildQuery(params), params.Limit, params.Offset, false)
	req.SortBy([]string{"-_score", "id"})
	req.Highlight = bleve.NewHighlight()
	req.Highlight.AddField("usage")
	req.Highlight.AddField("meaning")
	req.Fields = []string{"usage", "meaning", "tags"}

	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	result := &Result{
		Query: params.Query,
		Total: res.Total,
		Hits:  make([]Hit, 0, len(res.Hits)),
	}
	for _, h := range res.Hits {
		hit := Hit{ID: h.ID, Score: h.Score}
		if v, ok := h.Fields["usage"].(string); ok {
			hit.Usage = v
		}
		if v, ok := h.Fields["meaning"].(string); ok {
			hit.Meaning = v
		}
		// A single stored value comes back as a string, several as a slice.
		switch v := h.Fields["tags"].(type) {
		case string:
			hit.Tags = []string{v}
		case []any:
			for _, t := range v {
				if tag, ok := t.(string); ok {
					hit.Tags = append(hit.Tags, tag)
				}
			}
		}
		if len(h.Fragments) > 0 {
			hit.Highlights = make(map[string]string, len(h.Fragments))
			for field, fragments := range h.Fragments {
				if len(fragments) > 0 {
					hit.Highlights[field] = fragments[0]
				}
			}
		}
		result.Hits = append(result.Hits, hit)
	}
	return result, nil
}

// buildQuery matches the query against usage first, then meaning, then the
// remaining text fields, and ANDs in the filters.
func buildQuery(params Params) query.Query {
	var queries []query.Query

	if params.Query != "" {
		usage := bleve.NewMatchQuery(params.Query)
		usage.SetField("usage")
		usage.SetBoost(3.0)

		meaning := bleve.NewMatchQuery(params.Query)
		meaning.SetField("meaning")
		meaning.SetBoost(2.0)

		fuzzy := bleve.NewFuzzyQuery(params.Query)
		fuzzy.SetFuzziness(1)
		fuzzy.SetField("meaning")
		fuzzy.SetBoost(0.8)

		text := []query.Query{usage, meaning, fuzzy}
		for _, field := range []string{"context", "notes", "nuance", "example_en", "example_ja"} {
			m := bleve.NewMatchQuery(params.Query)
			m.SetField(field)
			text = append(text, m)
		}
		queries = append(queries, bleve.NewDisjunctionQuery(text...))
	}

	if len(params.Tags) > 0 {
		tagQueries := make([]query.Query, len(params.Tags))
		for i, tag := range params.Tags {
			tq := bleve.NewTermQuery(tag)
			tq.SetField("tags")
			tagQueries[i] = tq
		}
		queries = append(queries, bleve.NewDisjunctionQuery(tagQueries...))
	}

	if params.SystemOnly {
		bq := bleve.NewBoolFieldQuery(true)
		bq.SetField("system")
		queries = append(queries, bq)
	}

	switch len(queries) {
	case 0:
		return bleve.NewMatchAllQuery()
	case 1:
		return queries[0]
	default:
		return bleve.NewConjunctionQuery(queries...)
	}
}
