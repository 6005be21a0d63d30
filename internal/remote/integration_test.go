package remote_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bunkbed-tech/fushigi-sub000/internal/devremote"
	"github.com/bunkbed-tech/fushigi-sub000/internal/domain"
	domainerrors "github.com/bunkbed-tech/fushigi-sub000/internal/errors"
	"github.com/bunkbed-tech/fushigi-sub000/internal/remote"
)

type token string

func (t token) Token(context.Context) (string, error) { return string(t), nil }

func startDevRemote(t *testing.T) (*devremote.Store, *remote.Collections) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	st, err := devremote.OpenStore(devremote.StoreOptions{Logger: logger})
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	srv := httptest.NewServer(devremote.NewServer(st, devremote.ServerOptions{Token: "dev", Logger: logger}))
	t.Cleanup(srv.Close)

	client, err := remote.New(remote.Options{
		BaseURL:    srv.URL,
		RateLimit:  1000,
		Burst:      100,
		Tokens:     token("dev"),
		HTTPClient: srv.Client(),
		Logger:     logger,
	})
	require.NoError(t, err)
	return st, remote.NewCollections(client)
}

func TestDevRemote_FetchAllConcepts(t *testing.T) {
	st, cols := startDevRemote(t)
	ctx := context.Background()

	for i := range 130 {
		require.NoError(t, st.Put(ctx, remote.CollectionConcepts, devremote.Record{
			"id":      fmt.Sprintf("g%03d", i),
			"created": "2024-01-01 00:00:00.000Z",
			"updated": "2024-01-01 00:00:00.000Z",
			"usage":   fmt.Sprintf("usage %d", i),
			"user":    "",
		}))
	}

	concepts, err := remote.FetchAll[domain.Concept](ctx, cols.Concepts, 100)
	require.NoError(t, err)
	require.Len(t, concepts, 130)
	assert.Equal(t, "g000", concepts[0].ID)
	assert.Equal(t, "g129", concepts[129].ID)
	assert.True(t, concepts[0].IsSystem())
}

func TestDevRemote_CreateSchedule(t *testing.T) {
	_, cols := startDevRemote(t)
	ctx := context.Background()
	due := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	draft := domain.ScheduleDraft{
		Owner:        "u1",
		ConceptID:    "g1",
		EaseFactor:   domain.DefaultEaseFactor,
		IntervalDays: domain.DefaultIntervalDays,
		LastReviewed: domain.Absent(),
		DueDate:      domain.At(due),
	}

	rec, err := cols.CreateSchedule(ctx, draft)
	require.NoError(t, err)
	require.NoError(t, rec.Validate())
	assert.Equal(t, "g1", rec.ConceptID)
	assert.False(t, rec.LastReviewed.IsPresent())
	assert.True(t, rec.DueDate.Equal(due))

	_, err = cols.CreateSchedule(ctx, draft)
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrRemoteProtocol)
}
