// Package store defines the durable local cache that holds the working copy
// of every synced collection.
package store

import (
	"context"
)

// Predicate selects records during FetchAll. A nil Predicate matches everything.
type Predicate[T any] func(T) bool

// Cache is the durable local copy of one collection.
//
// Insert and Update only stage a write; nothing reaches durable storage
// until Save commits every staged write in one transaction. Discard drops
// staged writes after a failed Save.
type Cache[T any] interface {
	FetchAll(ctx context.Context, match Predicate[T]) ([]T, error)
	Insert(rec T)
	Update(rec T)
	Save(ctx context.Context) error
	Discard()
}

// Wiper destroys every cached record of every collection.
type Wiper interface {
	Wipe(ctx context.Context) error
}

// Filter returns the records that satisfy match, preserving order.
func Filter[T any](recs []T, match Predicate[T]) []T {
	if match == nil {
		return recs
	}
	out := make([]T, 0, len(recs))
	for _, r := range recs {
		if match(r) {
			out = append(out, r)
		}
	}
	return out
}
