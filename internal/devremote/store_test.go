package devremote

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/bunkbed-tech/fushigi-sub000/internal/errors"
	"github.com/bunkbed-tech/fushigi-sub000/internal/id"
)

var fixedNow = time.Date(2024, 1, 2, 3, 4, 5, 600_000_000, time.UTC)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenStore(StoreOptions{Now: func() time.Time { return fixedNow }})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestCreate_AssignsIdentity(t *testing.T) {
	s := newTestStore(t)

	rec, err := s.Create(context.Background(), "grammar", Record{"usage": "〜ても", "id": "ignored"})
	require.NoError(t, err)

	recordID, _ := rec["id"].(string)
	assert.Len(t, recordID, id.RecordLength)
	assert.NotEqual(t, "ignored", recordID)
	assert.Equal(t, "2024-01-02 03:04:05.600Z", rec["created"])
	assert.Equal(t, rec["created"], rec["updated"])
	assert.Equal(t, "〜ても", rec["usage"])
}

func TestList_Pagination(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	for i := range 7 {
		require.NoError(t, s.Put(ctx, "grammar", Record{"id": fmt.Sprintf("g%d", i)}))
	}

	first, err := s.List(ctx, "grammar", 1, 3)
	require.NoError(t, err)
	assert.Equal(t, 7, first.TotalItems)
	assert.Equal(t, 3, first.TotalPages)
	require.Len(t, first.Items, 3)
	assert.Equal(t, "g0", first.Items[0]["id"])

	last, err := s.List(ctx, "grammar", 3, 3)
	require.NoError(t, err)
	require.Len(t, last.Items, 1)
	assert.Equal(t, "g6", last.Items[0]["id"])

	beyond, err := s.List(ctx, "grammar", 4, 3)
	require.NoError(t, err)
	assert.Empty(t, beyond.Items)
}

func TestList_EmptyCollection(t *testing.T) {
	s := newTestStore(t)

	page, err := s.List(context.Background(), "srs", 1, 30)
	require.NoError(t, err)
	assert.Equal(t, 0, page.TotalItems)
	assert.Equal(t, 0, page.TotalPages)
	assert.NotNil(t, page.Items)
}

func TestPut_ReplacesInPlace(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, "grammar", Record{"id": "a", "usage": "old"}))
	require.NoError(t, s.Put(ctx, "grammar", Record{"id": "b", "usage": "other"}))
	require.NoError(t, s.Put(ctx, "grammar", Record{"id": "a", "usage": "new"}))

	page, err := s.List(ctx, "grammar", 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "a", page.Items[0]["id"])
	assert.Equal(t, "new", page.Items[0]["usage"])
}

func TestPut_RequiresID(t *testing.T) {
	s := newTestStore(t)
	assert.Error(t, s.Put(context.Background(), "grammar", Record{"usage": "x"}))
}

func TestCollectionsAreSeparate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, "journal", Record{"id": "x"}))
	require.NoError(t, s.Put(ctx, "journal_entry", Record{"id": "y"}))

	page, err := s.List(ctx, "journal", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, page.TotalItems)
}

func TestCreate_UniqueScheduleRecord(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Create(ctx, "srs", Record{"user": "u1", "grammar": "g1"})
	require.NoError(t, err)
	_, err = s.Create(ctx, "srs", Record{"user": "u2", "grammar": "g1"})
	require.NoError(t, err)

	_, err = s.Create(ctx, "srs", Record{"user": "u1", "grammar": "g1"})
	assert.Equal(t, domainerrors.CodeAlreadyExists, domainerrors.CodeOf(err))

	page, err := s.List(ctx, "srs", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, page.TotalItems)
}

func TestCreate_ConcurrentDuplicatesCreateOne(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	const writers = 8
	var wg sync.WaitGroup
	errs := make([]error, writers)
	for i := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = s.Create(ctx, "srs", Record{"user": "u1", "grammar": "g1"})
		}()
	}
	wg.Wait()

	created := 0
	for _, err := range errs {
		if err == nil {
			created++
			continue
		}
		assert.Equal(t, domainerrors.CodeAlreadyExists, domainerrors.CodeOf(err), "unexpected error: %v", err)
	}
	assert.Equal(t, 1, created)

	page, err := s.List(ctx, "srs", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, page.TotalItems)
}

func TestPut_ClaimsUniqueFields(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, "srs", Record{"id": "s1", "user": "u1", "grammar": "g1", "repetition": 0}))

	// Replacing the same record keeps its claim.
	require.NoError(t, s.Put(ctx, "srs", Record{"id": "s1", "user": "u1", "grammar": "g1", "repetition": 1}))

	_, err := s.Create(ctx, "srs", Record{"user": "u1", "grammar": "g1"})
	assert.Equal(t, domainerrors.CodeAlreadyExists, domainerrors.CodeOf(err))
}
