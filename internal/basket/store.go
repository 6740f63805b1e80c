package basket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Version tags a stored basket revision. VersionAbsent is the sentinel for a
// key with no stored basket; passing it to PutIfMatch makes the write an
// insert-if-not-exists.
type Version = int64

const VersionAbsent Version = 0

// ErrVersionConflict reports that the stored revision moved between the read
// and the conditional write.
var ErrVersionConflict = errors.New("basket revision conflict")

// Store is the versioned cache holding basket aggregates. Get returns a nil
// aggregate and VersionAbsent when nothing is stored for the owner.
type Store interface {
	Get(ctx context.Context, ownerID uuid.UUID) (*Aggregate, Version, error)
	PutIfMatch(ctx context.Context, ownerID uuid.UUID, agg *Aggregate, expected Version) (Version, error)
	DeleteIfMatch(ctx context.Context, ownerID uuid.UUID, expected Version) error
	Delete(ctx context.Context, ownerID uuid.UUID) error
}

type versionedCache interface {
	GetVersioned(ctx context.Context, key string) (string, int64, error)
	CompareAndSwap(ctx context.Context, key, payload string, expected int64, ttl time.Duration) (int64, bool, error)
	CompareAndDelete(ctx context.Context, key string, expected int64) (bool, error)
	Del(ctx context.Context, keys ...string) error
	BasketKey(userID string) string
}

// RedisStore keeps baskets in Redis hashes with a revision counter and a
// sliding TTL refreshed on every successful write.
type RedisStore struct {
	cache versionedCache
	ttl   time.Duration
}

// NewRedisStore builds a store over the shared redis client.
func NewRedisStore(cache versionedCache, ttl time.Duration) (*RedisStore, error) {
	if cache == nil {
		return nil, fmt.Errorf("redis cache required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("basket ttl must be positive")
	}
	return &RedisStore{cache: cache, ttl: ttl}, nil
}

func (s *RedisStore) Get(ctx context.Context, ownerID uuid.UUID) (*Aggregate, Version, error) {
	payload, revision, err := s.cache.GetVersioned(ctx, s.cache.BasketKey(ownerID.String()))
	if err != nil {
		return nil, VersionAbsent, fmt.Errorf("reading basket: %w", err)
	}
	if revision == VersionAbsent {
		return nil, VersionAbsent, nil
	}
	var agg Aggregate
	if err := json.Unmarshal([]byte(payload), &agg); err != nil {
		return nil, VersionAbsent, fmt.Errorf("decoding basket payload: %w", err)
	}
	return &agg, revision, nil
}

func (s *RedisStore) PutIfMatch(ctx context.Context, ownerID uuid.UUID, agg *Aggregate, expected Version) (Version, error) {
	payload, err := json.Marshal(agg)
	if err != nil {
		return VersionAbsent, fmt.Errorf("encoding basket payload: %w", err)
	}
	next, swapped, err := s.cache.CompareAndSwap(ctx, s.cache.BasketKey(ownerID.String()), string(payload), expected, s.ttl)
	if err != nil {
		return VersionAbsent, fmt.Errorf("writing basket: %w", err)
	}
	if !swapped {
		return VersionAbsent, ErrVersionConflict
	}
	return next, nil
}

func (s *RedisStore) DeleteIfMatch(ctx context.Context, ownerID uuid.UUID, expected Version) error {
	deleted, err := s.cache.CompareAndDelete(ctx, s.cache.BasketKey(ownerID.String()), expected)
	if err != nil {
		return fmt.Errorf("deleting basket: %w", err)
	}
	if !deleted {
		return ErrVersionConflict
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, ownerID uuid.UUID) error {
	if err := s.cache.Del(ctx, s.cache.BasketKey(ownerID.String())); err != nil {
		return fmt.Errorf("deleting basket: %w", err)
	}
	return nil
}

type memoryRecord struct {
	payload  string
	revision Version
}

// MemoryStore is an in-process Store with the same versioning semantics as
// RedisStore. It serializes aggregates through JSON so stored state cannot
// alias caller memory.
type MemoryStore struct {
	mu      sync.Mutex
	records map[uuid.UUID]memoryRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: map[uuid.UUID]memoryRecord{}}
}

func (s *MemoryStore) Get(ctx context.Context, ownerID uuid.UUID) (*Aggregate, Version, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[ownerID]
	if !ok {
		return nil, VersionAbsent, nil
	}
	var agg Aggregate
	if err := json.Unmarshal([]byte(rec.payload), &agg); err != nil {
		return nil, VersionAbsent, err
	}
	return &agg, rec.revision, nil
}

func (s *MemoryStore) PutIfMatch(ctx context.Context, ownerID uuid.UUID, agg *Aggregate, expected Version) (Version, error) {
	payload, err := json.Marshal(agg)
	if err != nil {
		return VersionAbsent, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	current := VersionAbsent
	if rec, ok := s.records[ownerID]; ok {
		current = rec.revision
	}
	if current != expected {
		return VersionAbsent, ErrVersionConflict
	}
	next := current + 1
	s.records[ownerID] = memoryRecord{payload: string(payload), revision: next}
	return next, nil
}

func (s *MemoryStore) DeleteIfMatch(ctx context.Context, ownerID uuid.UUID, expected Version) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[ownerID]
	if !ok {
		if expected != VersionAbsent {
			return ErrVersionConflict
		}
		return nil
	}
	if rec.revision != expected {
		return ErrVersionConflict
	}
	delete(s.records, ownerID)
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, ownerID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, ownerID)
	return nil
}
