package cache

import (
	"context"
	"os"
)

// NewCaches selects a backend (persistent when usePersistentCache is true
// and dbPath is non-empty) and returns the raw Store for callers to wrap
// with cache.NewTyped[V] per logical cache, plus a stats function.
func NewCaches(usePersistentCache bool, dbPath string) (Store, func() (Stats, error), error) {
	var (
		store Store
		err   error
	)

	if usePersistentCache && dbPath != "" {
		store, err = NewSQLiteStore(dbPath)
	} else {
		store, err = NewMemoryStore(0)
	}

	if err != nil {
		return nil, nil, err
	}

	statsFn := func() (Stats, error) {
		return computeStats(store, dbPath, usePersistentCache && dbPath != "")
	}

	return store, statsFn, nil
}

func computeStats(store Store, dbPath string, isPersistent bool) (Stats, error) {
	ctx := context.Background()

	fp, err := store.Size(ctx, TableFingerprints)
	if err != nil {
		return Stats{}, err
	}

	md, err := store.Size(ctx, TableMetadata)
	if err != nil {
		return Stats{}, err
	}

	ly, err := store.Size(ctx, TableLyrics)
	if err != nil {
		return Stats{}, err
	}

	var sizeBytes int64

	if isPersistent {
		if info, statErr := os.Stat(dbPath); statErr == nil {
			sizeBytes = info.Size()
		}
	}

	return Stats{
		Fingerprints: fp,
		Metadata:     md,
		Lyrics:       ly,
		TotalEntries: fp + md + ly,
		SizeBytes:    sizeBytes,
		IsPersistent: isPersistent,
	}, nil
}

// ClearAll purges every logical cache table in store.
func ClearAll(ctx context.Context, store Store) error {
	for _, t := range []Table{TableFingerprints, TableMetadata, TableLyrics} {
		if err := store.Clear(ctx, t); err != nil {
			return err
		}
	}

	return nil
}
