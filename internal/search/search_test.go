package search

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bunkbed-tech/fushigi-sub000/internal/domain"
)

func setupTestIndex(t *testing.T) *ConceptIndex {
	t.Helper()
	index, err := NewConceptIndex(nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })
	return index
}

func testConcept(id, usage, meaning string, tags ...string) domain.Concept {
	c := domain.Concept{Usage: usage, Meaning: meaning, Tags: tags}
	c.ID = id
	c.InitTimestamps(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
	return c
}

func sampleConcepts() []domain.Concept {
	nagara := testConcept("g1", "〜ながら", "while doing", "n4")
	nagara.Examples = []domain.Example{{Japanese: "音楽を聞きながら勉強する", English: "I study while listening to music"}}

	shimau := testConcept("g2", "〜てしまう", "to end up doing something regrettable", "n4", "aspect")
	shimau.Owner = "user1"

	hazu := testConcept("g3", "〜はず", "expectation or strong belief", "n3")
	return []domain.Concept{nagara, shimau, hazu}
}

func TestNewConceptIndex(t *testing.T) {
	index := setupTestIndex(t)

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestReplace(t *testing.T) {
	index := setupTestIndex(t)

	require.NoError(t, index.Replace(sampleConcepts()))
	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), count)

	require.NoError(t, index.Replace(sampleConcepts()[:1]))
	count, err = index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
}

func TestSearch_ByMeaning(t *testing.T) {
	index := setupTestIndex(t)
	require.NoError(t, index.Replace(sampleConcepts()))

	result, err := index.Search(context.Background(), DefaultParams("regrettable"))
	require.NoError(t, err)
	require.NotEmpty(t, result.Hits)
	assert.Equal(t, "g2", result.Hits[0].ID)
	assert.Equal(t, "〜てしまう", result.Hits[0].Usage)
}

func TestSearch_ByEnglishExample(t *testing.T) {
	index := setupTestIndex(t)
	require.NoError(t, index.Replace(sampleConcepts()))

	result, err := index.Search(context.Background(), DefaultParams("music"))
	require.NoError(t, err)
	require.Len(t, result.Hits, 1)
	assert.Equal(t, "g1", result.Hits[0].ID)
}

func TestSearch_TagFilter(t *testing.T) {
	index := setupTestIndex(t)
	require.NoError(t, index.Replace(sampleConcepts()))

	result, err := index.Search(context.Background(), Params{Tags: []string{"n3"}})
	require.NoError(t, err)
	require.Len(t, result.Hits, 1)
	assert.Equal(t, "g3", result.Hits[0].ID)
	assert.Equal(t, []string{"n3"}, result.Hits[0].Tags)
}

func TestSearch_SystemOnly(t *testing.T) {
	index := setupTestIndex(t)
	require.NoError(t, index.Replace(sampleConcepts()))

	result, err := index.Search(context.Background(), Params{Tags: []string{"n4"}, SystemOnly: true})
	require.NoError(t, err)
	require.Len(t, result.Hits, 1)
	assert.Equal(t, "g1", result.Hits[0].ID)
}

func TestSearch_EmptyQueryMatchesAll(t *testing.T) {
	index := setupTestIndex(t)
	require.NoError(t, index.Replace(sampleConcepts()))

	result, err := index.Search(context.Background(), Params{})
	require.NoError(t, err)
	assert.Equal(t, uint64(3), result.Total)
}

func TestClear(t *testing.T) {
	index := setupTestIndex(t)
	index.OnPublish(sampleConcepts())

	index.Clear()

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestNewConceptDocument(t *testing.T) {
	doc := NewConceptDocument(sampleConcepts()[0])

	assert.Equal(t, "g1", doc.ID)
	assert.True(t, doc.System)
	assert.Equal(t, "音楽を聞きながら勉強する", doc.Japanese)

	m := doc.ToMap()
	assert.Equal(t, "〜ながら", m["usage"])
	assert.NotContains(t, m, "notes")
}
