package devremote

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeed(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	input := `{
		"srs": [{"user": "u1", "grammar": "g1", "due_date": "2024-01-01 00:00:00.000Z"}],
		"grammar": [
			{"id": "g1", "usage": "〜ても", "updated": "2023-05-01 00:00:00.000Z"},
			{"usage": "〜ながら"}
		]
	}`

	n, err := Seed(ctx, s, strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	page, err := s.List(ctx, "grammar", 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "g1", page.Items[0]["id"])
	assert.Equal(t, "2023-05-01 00:00:00.000Z", page.Items[0]["updated"], "records with an id keep their timestamps")
	assert.NotEmpty(t, page.Items[1]["id"])
	assert.Equal(t, "2024-01-02 03:04:05.600Z", page.Items[1]["updated"])

	srs, err := s.List(ctx, "srs", 1, 10)
	require.NoError(t, err)
	assert.Len(t, srs.Items, 1)
}

func TestSeed_UnknownCollection(t *testing.T) {
	s := newTestStore(t)

	_, err := Seed(context.Background(), s, strings.NewReader(`{"books": []}`))
	assert.ErrorContains(t, err, `unknown collection "books"`)
}

func TestSeed_InvalidJSON(t *testing.T) {
	s := newTestStore(t)

	_, err := Seed(context.Background(), s, strings.NewReader(`[`))
	assert.Error(t, err)
}
