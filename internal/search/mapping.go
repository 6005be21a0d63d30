package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/lang/cjk"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the mapping for concept documents.
//
// Japanese fields use the CJK bigram analyzer, English fields the English
// analyzer with stemming, and tags are exact keywords.
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = en.AnalyzerName

	docMapping := bleve.NewDocumentMapping()

	usage := bleve.NewTextFieldMapping()
	usage.Analyzer = cjk.AnalyzerName
	usage.Store = true
	usage.IncludeTermVectors = true
	docMapping.AddFieldMappingsAt("usage", usage)

	meaning := bleve.NewTextFieldMapping()
	meaning.Analyzer = en.AnalyzerName
	meaning.Store = true
	meaning.IncludeTermVectors = true
	docMapping.AddFieldMappingsAt("meaning", meaning)

	for _, field := range []string{"context", "notes", "nuance", "example_en"} {
		fm := bleve.NewTextFieldMapping()
		fm.Analyzer = en.AnalyzerName
		fm.Store = false
		docMapping.AddFieldMappingsAt(field, fm)
	}

	exampleJa := bleve.NewTextFieldMapping()
	exampleJa.Analyzer = cjk.AnalyzerName
	exampleJa.Store = false
	docMapping.AddFieldMappingsAt("example_ja", exampleJa)

	tags := bleve.NewTextFieldMapping()
	tags.Analyzer = keyword.Name
	tags.Store = true
	docMapping.AddFieldMappingsAt("tags", tags)

	id := bleve.NewTextFieldMapping()
	id.Analyzer = keyword.Name
	docMapping.AddFieldMappingsAt("id", id)

	docMapping.AddFieldMappingsAt("system", bleve.NewBooleanFieldMapping())

	updated := bleve.NewNumericFieldMapping()
	updated.Store = true
	docMapping.AddFieldMappingsAt("updated_at", updated)

	indexMapping.AddDocumentMapping("_default", docMapping)
	return indexMapping
}
