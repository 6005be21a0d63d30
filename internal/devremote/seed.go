package devremote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"slices"
)

// Seed loads records from r into the store. The input is a JSON object
// mapping collection names to arrays of records. Records carrying an id are
// stored as given; the rest are created with fresh ids and timestamps.
// Collections are seeded in name order so sequence numbers are stable.
func Seed(ctx context.Context, s *Store, r io.Reader) (int, error) {
	var data map[string][]Record
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return 0, fmt.Errorf("decode seed: %w", err)
	}

	names := make([]string, 0, len(data))
	for name := range data {
		if _, ok := collections[name]; !ok {
			return 0, fmt.Errorf("seed: unknown collection %q", name)
		}
		names = append(names, name)
	}
	slices.Sort(names)

	count := 0
	for _, name := range names {
		for _, rec := range data[name] {
			var err error
			if recordID, _ := rec["id"].(string); recordID != "" {
				err = s.Put(ctx, name, rec)
			} else {
				_, err = s.Create(ctx, name, rec)
			}
			if err != nil {
				return count, fmt.Errorf("seed %s: %w", name, err)
			}
			count++
		}
	}

	s.logger.Info("store seeded", "records", count, "collections", len(names))
	return count, nil
}
