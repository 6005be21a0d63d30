package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bunkbed-tech/fushigi-sub000/internal/domain"
	domainerrors "github.com/bunkbed-tech/fushigi-sub000/internal/errors"
)

type staticToken string

func (s staticToken) Token(context.Context) (string, error) { return string(s), nil }

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := New(Options{
		BaseURL:    server.URL,
		RateLimit:  1000,
		Burst:      100,
		Tokens:     staticToken("secret"),
		HTTPClient: server.Client(),
		Logger:     slog.New(slog.DiscardHandler),
	})
	require.NoError(t, err)
	return client
}

func conceptJSON(i int) map[string]any {
	return map[string]any{
		"id":      fmt.Sprintf("g%03d", i),
		"created": "2024-01-01 00:00:00.000Z",
		"updated": "2024-01-02 00:00:00.000Z",
		"usage":   fmt.Sprintf("usage %d", i),
		"user":    "",
	}
}

// paginatedHandler serves total concepts in pages and records the page numbers requested.
func paginatedHandler(t *testing.T, total int, requested *[]int, mu *sync.Mutex) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/collections/grammar/records", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		perPage, _ := strconv.Atoi(r.URL.Query().Get("perPage"))
		mu.Lock()
		*requested = append(*requested, page)
		mu.Unlock()

		totalPages := (total + perPage - 1) / perPage
		items := []map[string]any{}
		for i := (page - 1) * perPage; i < total && i < page*perPage; i++ {
			items = append(items, conceptJSON(i))
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"page": page, "perPage": perPage, "totalItems": total, "totalPages": totalPages, "items": items,
		})
	}
}

func TestFetchAll_SequentialPages(t *testing.T) {
	var (
		requested []int
		mu        sync.Mutex
	)
	client := newTestClient(t, paginatedHandler(t, 130, &requested, &mu))
	concepts := NewCollection[domain.Concept](client, CollectionConcepts)

	items, err := FetchAll[domain.Concept](context.Background(), concepts, 50)
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2, 3}, requested)
	require.Len(t, items, 130)
	assert.Equal(t, "g000", items[0].ID)
	assert.Equal(t, "g129", items[129].ID)
}

func TestFetchAll_EmptyCollectionRequestsOnePage(t *testing.T) {
	var (
		requested []int
		mu        sync.Mutex
	)
	client := newTestClient(t, paginatedHandler(t, 0, &requested, &mu))

	items, err := FetchAll[domain.Concept](context.Background(), NewCollection[domain.Concept](client, CollectionConcepts), 50)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Equal(t, []int{1}, requested)
}

type failingPager struct {
	failOn int
	calls  []int
}

func (f *failingPager) Page(_ context.Context, page, perPage int) (*Page[int], error) {
	f.calls = append(f.calls, page)
	if page == f.failOn {
		return nil, domainerrors.RemoteTransport(fmt.Errorf("connection reset"), "GET page")
	}
	return &Page[int]{Page: page, PerPage: perPage, TotalPages: 3, Items: []int{page}}, nil
}

func TestFetchAll_FirstErrorAborts(t *testing.T) {
	pager := &failingPager{failOn: 2}

	items, err := FetchAll[int](context.Background(), pager, 10)
	assert.Nil(t, items)
	assert.ErrorIs(t, err, domainerrors.ErrRemoteTransport)
	assert.Equal(t, []int{1, 2}, pager.calls, "no page after the failing one is requested")
}

func TestClient_ProtocolErrors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
	}{
		{"pocketbase payload", http.StatusForbidden, `{"code":403,"message":"Only admins can perform this action.","data":{}}`, "Only admins can perform this action."},
		{"problem details", http.StatusNotFound, `{"title":"Not Found","status":404,"detail":"collection missing"}`, "collection missing"},
		{"non json", http.StatusBadGateway, `<html>bad gateway</html>`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := NewCollection[domain.Concept](client, CollectionConcepts).Page(context.Background(), 1, 10)
			require.Error(t, err)
			assert.ErrorIs(t, err, domainerrors.ErrRemoteProtocol)

			var domainErr *domainerrors.Error
			require.ErrorAs(t, err, &domainErr)
			details := domainErr.Details.(domainerrors.ProtocolDetails)
			assert.Equal(t, tt.status, details.Status)
			assert.Equal(t, tt.wantMessage, details.Message)
		})
	}
}

func TestClient_TransportError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client, err := New(Options{BaseURL: url, Logger: slog.New(slog.DiscardHandler)})
	require.NoError(t, err)

	_, err = NewCollection[domain.Concept](client, CollectionConcepts).Page(context.Background(), 1, 10)
	assert.ErrorIs(t, err, domainerrors.ErrRemoteTransport)
}

func TestClient_MalformedEnvelopeIsDecodingError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"page": "one"`))
	})

	_, err := NewCollection[domain.Concept](client, CollectionConcepts).Page(context.Background(), 1, 10)
	assert.ErrorIs(t, err, domainerrors.ErrDecoding)
}

func TestPage_SkipsUndecodableItems(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"page":1,"perPage":10,"totalItems":3,"totalPages":1,"items":[
			{"id":"g1","created":"2024-01-01 00:00:00.000Z","updated":"2024-01-01 00:00:00.000Z","usage":"a"},
			{"id":"g2","created":"not a date","updated":"2024-01-01 00:00:00.000Z","usage":"b"},
			{"id":"g3","created":"2024-01-01 00:00:00.000Z","updated":"2024-01-01 00:00:00.000Z","usage":"c"}
		]}`))
	})

	page, err := NewCollection[domain.Concept](client, CollectionConcepts).Page(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Skipped)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "g1", page.Items[0].ID)
	assert.Equal(t, "g3", page.Items[1].ID)
}

func TestCollection_Create(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/collections/sentence/records", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var draft domain.SentenceDraft
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&draft))
		assert.Equal(t, "g1", draft.ConceptID)

		_, _ = w.Write([]byte(`{"id":"s1","created":"2024-01-01 00:00:00.000Z","updated":"2024-01-01 00:00:00.000Z",
			"user":"u1","journal_entry":"j1","grammar":"g1","content":"食べている"}`))
	})

	created, err := NewCollections(client).CreateSentence(context.Background(), domain.SentenceDraft{
		Owner: "u1", JournalEntryID: "j1", ConceptID: "g1", Content: "食べている",
	})
	require.NoError(t, err)
	assert.Equal(t, "s1", created.ID)
	assert.Equal(t, "j1", created.JournalEntryID)
}

func TestNew_RejectsRelativeURL(t *testing.T) {
	_, err := New(Options{BaseURL: "/api"})
	assert.Error(t, err)
}
