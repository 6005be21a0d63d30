package sqlite

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/bunkbed-tech/fushigi-sub000/internal/domain"
	domainerrors "github.com/bunkbed-tech/fushigi-sub000/internal/errors"
	"github.com/bunkbed-tech/fushigi-sub000/internal/store"
)

// Records is the cache of one collection. It implements store.Cache.
type Records[T domain.Record] struct {
	store      *Store
	collection string

	mu     sync.Mutex
	staged []T
}

var _ store.Cache[domain.Concept] = (*Records[domain.Concept])(nil)

// NewRecords binds a collection name to a record type.
func NewRecords[T domain.Record](s *Store, collection string) *Records[T] {
	return &Records[T]{store: s, collection: collection}
}

// scanRecord decodes one stored row into T.
func scanRecord[T any](scanner interface{ Scan(dest ...any) error }) (T, error) {
	var (
		rec  T
		data string
	)
	if err := scanner.Scan(&data); err != nil {
		return rec, err
	}
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return rec, err
	}
	return rec, nil
}

// FetchAll returns the cached records in first-insertion order.
func (r *Records[T]) FetchAll(ctx context.Context, match store.Predicate[T]) ([]T, error) {
	rows, err := r.store.db.QueryContext(ctx,
		`SELECT data FROM records WHERE collection = ? ORDER BY seq ASC`, r.collection)
	if err != nil {
		return nil, domainerrors.LocalStorage(err, "query "+r.collection)
	}
	defer rows.Close()

	var recs []T
	for rows.Next() {
		rec, err := scanRecord[T](rows)
		if err != nil {
			return nil, domainerrors.LocalStorage(err, "read "+r.collection+" row")
		}
		if match == nil || match(rec) {
			recs = append(recs, rec)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, domainerrors.LocalStorage(err, "iterate "+r.collection)
	}
	return recs, nil
}

// Insert stages a new record.
func (r *Records[T]) Insert(rec T) {
	r.stage(rec)
}

// Update stages a changed record. Insert and Update share upsert semantics
// so a record keeps its original position either way.
func (r *Records[T]) Update(rec T) {
	r.stage(rec)
}

func (r *Records[T]) stage(rec T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.staged = append(r.staged, rec)
}

// Discard drops staged writes.
func (r *Records[T]) Discard() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.staged = nil
}

// Save commits all staged writes in one transaction. On failure nothing is
// written and the staged writes are kept so the caller can Discard them.
func (r *Records[T]) Save(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.staged) == 0 {
		return nil
	}

	tx, err := r.store.db.BeginTx(ctx, nil)
	if err != nil {
		return domainerrors.LocalStorage(err, "begin save")
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO records (collection, id, updated_at, data)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (collection, id) DO UPDATE SET
			updated_at = excluded.updated_at,
			data = excluded.data`)
	if err != nil {
		return domainerrors.LocalStorage(err, "prepare save")
	}
	defer stmt.Close()

	for _, rec := range r.staged {
		data, err := json.Marshal(rec)
		if err != nil {
			return domainerrors.LocalStorage(err, "encode "+rec.RecordID())
		}
		if _, err := stmt.ExecContext(ctx, r.collection, rec.RecordID(), formatTime(rec.LastUpdated()), string(data)); err != nil {
			return domainerrors.LocalStorage(err, "write "+rec.RecordID())
		}
	}

	if err := tx.Commit(); err != nil {
		return domainerrors.LocalStorage(err, "commit save")
	}

	r.store.logger.Debug("cache saved", "collection", r.collection, "records", len(r.staged))
	r.staged = nil
	return nil
}
