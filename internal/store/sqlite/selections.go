package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	domainerrors "github.com/bunkbed-tech/fushigi-sub000/internal/errors"
)

// LoadSelection returns the record ids stored for day and strategy.
// ok is false when nothing was stored.
func (s *Store) LoadSelection(ctx context.Context, day, strategy string) ([]string, bool, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT record_ids FROM selections WHERE day = ? AND strategy = ?`, day, strategy).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, domainerrors.LocalStorage(err, "load selection")
	}

	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, false, domainerrors.LocalStorage(err, "decode selection")
	}
	return ids, true, nil
}

// SaveSelection replaces the selection for day and strategy and drops the
// selections of every other day.
func (s *Store) SaveSelection(ctx context.Context, day, strategy string, ids []string) error {
	if ids == nil {
		ids = []string{}
	}
	raw, err := json.Marshal(ids)
	if err != nil {
		return domainerrors.LocalStorage(err, "encode selection")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domainerrors.LocalStorage(err, "begin selection")
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, `DELETE FROM selections WHERE day <> ?`, day); err != nil {
		return domainerrors.LocalStorage(err, "prune selections")
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO selections (day, strategy, record_ids) VALUES (?, ?, ?)
		ON CONFLICT (day, strategy) DO UPDATE SET record_ids = excluded.record_ids`,
		day, strategy, string(raw)); err != nil {
		return domainerrors.LocalStorage(err, "write selection")
	}

	if err := tx.Commit(); err != nil {
		return domainerrors.LocalStorage(err, "commit selection")
	}
	return nil
}
