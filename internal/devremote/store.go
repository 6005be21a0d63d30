// Package devremote is a small record service speaking the same list and
// create protocol as the production backend. It backs local development and
// the client integration tests.
package devremote

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/bunkbed-tech/fushigi-sub000/internal/domain"
	domainerrors "github.com/bunkbed-tech/fushigi-sub000/internal/errors"
	"github.com/bunkbed-tech/fushigi-sub000/internal/id"
)

// Record is a stored record in wire form.
type Record = map[string]any

// Key layout:
//
//	seq:{collection}             last sequence number (uint64)
//	rec:{collection}:{seq}       record JSON, seq big-endian so keys sort by insertion
//	idx:{collection}:{id}        primary key of the record with id
//	uniq:{collection}:{values}   id of the record holding a unique field tuple
const (
	seqPrefix  = "seq:"
	recPrefix  = "rec:"
	idxPrefix  = "idx:"
	uniqPrefix = "uniq:"
)

// maxConflictRetries bounds how often a write is retried after losing a
// transaction conflict to a concurrent writer.
const maxConflictRetries = 3

// Store keeps records in BadgerDB.
type Store struct {
	db     *badger.DB
	logger *slog.Logger
	now    func() time.Time
}

// StoreOptions configures a Store.
type StoreOptions struct {
	// Path is the data directory. Empty keeps everything in memory.
	Path   string
	Logger *slog.Logger
	Now    func() time.Time
}

// OpenStore opens or creates a store.
func OpenStore(opts StoreOptions) (*Store, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	badgerOpts := badger.DefaultOptions(opts.Path).WithLogger(nil)
	if opts.Path == "" {
		badgerOpts = badgerOpts.WithInMemory(true)
	}

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}

	logger.Info("record store opened", "path", opts.Path, "in_memory", opts.Path == "")
	return &Store{db: db, logger: logger, now: now}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func recordKey(collection string, seq uint64) []byte {
	key := []byte(recPrefix + collection + ":")
	return binary.BigEndian.AppendUint64(key, seq)
}

func indexKey(collection, recordID string) []byte {
	return []byte(idxPrefix + collection + ":" + recordID)
}

// uniqueKey returns the key claiming rec's values for the collection's unique
// fields, or nil when the collection has none or rec lacks one of them.
func uniqueKey(collection string, rec Record) []byte {
	fields := collections[collection].unique
	if len(fields) == 0 {
		return nil
	}
	values := make([]string, len(fields))
	for i, field := range fields {
		v, ok := rec[field]
		if !ok || v == nil {
			return nil
		}
		values[i] = fmt.Sprint(v)
	}
	return []byte(uniqPrefix + collection + ":" + strings.Join(values, "\x00"))
}

func nextSeq(txn *badger.Txn, collection string) (uint64, error) {
	key := []byte(seqPrefix + collection)
	var seq uint64

	item, err := txn.Get(key)
	switch {
	case errors.Is(err, badger.ErrKeyNotFound):
	case err != nil:
		return 0, err
	default:
		if err := item.Value(func(val []byte) error {
			seq = binary.BigEndian.Uint64(val)
			return nil
		}); err != nil {
			return 0, err
		}
	}

	seq++
	if err := txn.Set(key, binary.BigEndian.AppendUint64(nil, seq)); err != nil {
		return 0, err
	}
	return seq, nil
}

// Create stores fields as a new record. The store assigns id, created and
// updated; any values for them in fields are replaced.
func (s *Store) Create(ctx context.Context, collection string, fields Record) (Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	recordID, err := id.NewRecord()
	if err != nil {
		return nil, domainerrors.Internalf("generate id: %v", err)
	}
	now := domain.At(s.now()).String()

	rec := make(Record, len(fields)+3)
	for k, v := range fields {
		rec[k] = v
	}
	rec["id"] = recordID
	rec["created"] = now
	rec["updated"] = now

	if err := s.put(collection, rec); err != nil {
		return nil, err
	}
	s.logger.Debug("record created", "collection", collection, "id", recordID)
	return rec, nil
}

// Put stores rec as given, replacing a record with the same id in place.
// It is used to seed the store with fixed ids and timestamps.
func (s *Store) Put(ctx context.Context, collection string, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if recordID, _ := rec["id"].(string); recordID == "" {
		return domainerrors.Validation("record id is required")
	}
	return s.put(collection, rec)
}

func (s *Store) put(collection string, rec Record) error {
	recordID, _ := rec["id"].(string)
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	for attempt := 1; ; attempt++ {
		err = s.db.Update(func(txn *badger.Txn) error {
			return putTxn(txn, collection, recordID, rec, data)
		})
		if !errors.Is(err, badger.ErrConflict) || attempt == maxConflictRetries {
			return err
		}
		s.logger.Debug("record write conflict, retrying", "collection", collection, "attempt", attempt)
	}
}

func putTxn(txn *badger.Txn, collection, recordID string, rec Record, data []byte) error {
	if uniq := uniqueKey(collection, rec); uniq != nil {
		item, err := txn.Get(uniq)
		switch {
		case errors.Is(err, badger.ErrKeyNotFound):
			if err := txn.Set(uniq, []byte(recordID)); err != nil {
				return fmt.Errorf("set unique key: %w", err)
			}
		case err != nil:
			return fmt.Errorf("get unique key: %w", err)
		default:
			owner, err := item.ValueCopy(nil)
			if err != nil {
				return fmt.Errorf("read unique key: %w", err)
			}
			if string(owner) != recordID {
				return domainerrors.AlreadyExistsf("%s already has a record for %s",
					collection, strings.Join(collections[collection].unique, ", "))
			}
		}
	}

	idx := indexKey(collection, recordID)

	var key []byte
	item, err := txn.Get(idx)
	switch {
	case errors.Is(err, badger.ErrKeyNotFound):
		seq, err := nextSeq(txn, collection)
		if err != nil {
			return fmt.Errorf("next sequence: %w", err)
		}
		key = recordKey(collection, seq)
		if err := txn.Set(idx, key); err != nil {
			return fmt.Errorf("set index: %w", err)
		}
	case err != nil:
		return fmt.Errorf("get index: %w", err)
	default:
		key, err = item.ValueCopy(nil)
		if err != nil {
			return fmt.Errorf("read index: %w", err)
		}
	}

	if err := txn.Set(key, data); err != nil {
		return fmt.Errorf("set record: %w", err)
	}
	return nil
}

// Page is one page of a listing.
type Page struct {
	Page       int      `json:"page"`
	PerPage    int      `json:"perPage"`
	TotalItems int      `json:"totalItems"`
	TotalPages int      `json:"totalPages"`
	Items      []Record `json:"items"`
}

// List returns one page of a collection in insertion order. Pages are
// numbered from 1.
func (s *Store) List(ctx context.Context, collection string, page, perPage int) (*Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if page < 1 || perPage < 1 {
		return nil, domainerrors.Validation("page and perPage must be positive")
	}

	result := &Page{Page: page, PerPage: perPage, Items: []Record{}}
	skip := (page - 1) * perPage
	prefix := []byte(recPrefix + collection + ":")

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			n := result.TotalItems
			result.TotalItems++
			if n < skip || len(result.Items) >= perPage {
				continue
			}
			var rec Record
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); err != nil {
				return fmt.Errorf("decode record: %w", err)
			}
			result.Items = append(result.Items, rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result.TotalPages = (result.TotalItems + perPage - 1) / perPage
	return result, nil
}
