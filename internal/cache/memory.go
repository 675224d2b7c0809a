package cache

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
)

const memoryStoreCapacity = 10_000

// MemoryStore is the in-memory Store backend: one bounded LRU per table.
// Eviction never affects correctness, only cache-hit rate — a miss simply
// re-runs the cascade it was short-circuiting.
type MemoryStore struct {
	tables map[Table]*lru.Cache[string, []byte]
}

// NewMemoryStore builds a MemoryStore with one LRU of capacity per table.
func NewMemoryStore(capacity int) (*MemoryStore, error) {
	if capacity <= 0 {
		capacity = memoryStoreCapacity
	}

	tables := make(map[Table]*lru.Cache[string, []byte], 3)

	for _, name := range []Table{TableFingerprints, TableMetadata, TableLyrics} {
		c, err := lru.New[string, []byte](capacity)
		if err != nil {
			return nil, err
		}

		tables[name] = c
	}

	return &MemoryStore{tables: tables}, nil
}

func (s *MemoryStore) table(t Table) *lru.Cache[string, []byte] {
	return s.tables[t]
}

func (s *MemoryStore) Get(_ context.Context, t Table, key string) ([]byte, bool, error) {
	value, ok := s.table(t).Get(key)
	return value, ok, nil
}

func (s *MemoryStore) Put(_ context.Context, t Table, key string, value []byte) error {
	s.table(t).Add(key, value)
	return nil
}

func (s *MemoryStore) Has(_ context.Context, t Table, key string) (bool, error) {
	return s.table(t).Contains(key), nil
}

func (s *MemoryStore) Delete(_ context.Context, t Table, key string) error {
	s.table(t).Remove(key)
	return nil
}

func (s *MemoryStore) Clear(_ context.Context, t Table) error {
	s.table(t).Purge()
	return nil
}

func (s *MemoryStore) Size(_ context.Context, t Table) (int, error) {
	return s.table(t).Len(), nil
}

// Close is a no-op; the in-memory backend owns no external resource.
func (s *MemoryStore) Close() error {
	return nil
}
