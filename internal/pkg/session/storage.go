package session

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// Storage is a key/value store scoped to one browser session, shaped after window.localStorage.
type Storage interface {
	GetItem(ctx context.Context, key string) (string, bool, error)
	SetItem(ctx context.Context, key, value string) error
	RemoveItem(ctx context.Context, key string) error
}

// Backend hands out the Storage of a single browser session.
type Backend interface {
	Scope(id uuid.UUID) Storage
}

// MemoryBackend keeps persisted session state in process memory. Entries expire after ttl without
// reads or writes, mirroring an abandoned browser profile.
type MemoryBackend struct {
	items *cache.Cache
}

func NewMemoryBackend(ttl time.Duration) *MemoryBackend {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &MemoryBackend{items: cache.New(ttl, ttl/2)}
}

func (b *MemoryBackend) Scope(id uuid.UUID) Storage {
	return &memoryStorage{items: b.items, prefix: id.String() + ":"}
}

type memoryStorage struct {
	items  *cache.Cache
	prefix string
}

func (m *memoryStorage) GetItem(_ context.Context, key string) (string, bool, error) {
	v, ok := m.items.Get(m.prefix + key)
	if !ok {
		return "", false, nil
	}
	s, ok := v.(string)
	if ok {
		m.items.Set(m.prefix+key, s, cache.DefaultExpiration)
	}
	return s, ok, nil
}

func (m *memoryStorage) SetItem(_ context.Context, key, value string) error {
	m.items.Set(m.prefix+key, value, cache.DefaultExpiration)
	return nil
}

func (m *memoryStorage) RemoveItem(_ context.Context, key string) error {
	m.items.Delete(m.prefix + key)
	return nil
}
