// Package cache implements the three logical key-value stores shared
// across workers: fingerprint results, resolved metadata records, and
// lyrics lookups. Each logical store sits behind the same Store interface,
// which is backed by either an in-memory LRU map or a persistent SQLite
// database, selected once at construction from AppSettings.UsePersistentCache.
package cache

import (
	"context"
	"encoding/json"
	"errors"
)

// Table names the three logical caches. Both backends partition their
// underlying storage by table.
type Table string

const (
	TableFingerprints Table = "fingerprints"
	TableMetadata     Table = "metadata"
	TableLyrics       Table = "lyrics"
)

// ErrNotFound is returned by nothing in this package directly; Get reports
// misses via its bool return instead, matching the has-then-get idiom used
// elsewhere (config.LoadConfig's "file not found, fall through").
var ErrNotFound = errors.New("cache: key not found")

// Store is the raw byte-oriented backend every logical cache sits on top
// of. A stored value of JSON literal "null" is a cached miss, distinct
// from no entry at all (found=false) — see Typed.
type Store interface {
	Get(ctx context.Context, table Table, key string) ([]byte, bool, error)
	Put(ctx context.Context, table Table, key string, value []byte) error
	Has(ctx context.Context, table Table, key string) (bool, error)
	Delete(ctx context.Context, table Table, key string) error
	Clear(ctx context.Context, table Table) error
	Size(ctx context.Context, table Table) (int, error)
	Close() error
}

// Stats mirrors the orchestrator's getCacheStats() surface.
type Stats struct {
	Fingerprints int
	Metadata     int
	Lyrics       int
	TotalEntries int
	SizeBytes    int64
	IsPersistent bool
}

// Typed wraps a raw Store with JSON marshalling for one logical cache,
// so callers work with FingerprintResult/CanonicalMetadata/string values
// directly instead of []byte.
type Typed[V any] struct {
	store Store
	table Table
}

// NewTyped builds a typed view of store scoped to table.
func NewTyped[V any](store Store, table Table) *Typed[V] {
	return &Typed[V]{store: store, table: table}
}

// Get returns the cached value and whether the key was present at all
// (including a previously cached null/empty result).
func (t *Typed[V]) Get(ctx context.Context, key string) (V, bool, error) {
	var zero V

	raw, found, err := t.store.Get(ctx, t.table, key)
	if err != nil || !found {
		return zero, found, err
	}

	var value V
	if err := json.Unmarshal(raw, &value); err != nil {
		return zero, false, err
	}

	return value, true, nil
}

// Put stores value under key, including the zero value (to cache a
// negative lookup and avoid re-querying a dead key).
func (t *Typed[V]) Put(ctx context.Context, key string, value V) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return t.store.Put(ctx, t.table, key, raw)
}

// Has reports whether key has any cached entry, positive or negative.
func (t *Typed[V]) Has(ctx context.Context, key string) (bool, error) {
	return t.store.Has(ctx, t.table, key)
}

// Delete removes key's cached entry, if any.
func (t *Typed[V]) Delete(ctx context.Context, key string) error {
	return t.store.Delete(ctx, t.table, key)
}

// Clear drops every entry in this logical cache.
func (t *Typed[V]) Clear(ctx context.Context) error {
	return t.store.Clear(ctx, t.table)
}

// Size returns the number of entries currently cached.
func (t *Typed[V]) Size(ctx context.Context) (int, error) {
	return t.store.Size(ctx, t.table)
}
