package enrichcache

import (
	"context"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/prospector/internal/db"
)

type mockLookuper struct {
	body  []byte
	err   error
	calls atomic.Int32
	gate  chan struct{}
}

func (m *mockLookuper) Lookup(_ context.Context, _ string, _ url.Values) ([]byte, error) {
	m.calls.Add(1)
	if m.gate != nil {
		<-m.gate
	}
	return m.body, m.err
}

// mockKVStore implements the consumer interface for tests.
type mockKVStore struct {
	mu    sync.Mutex
	getFn func(ctx context.Context, key string) ([]byte, error)
	setFn func(ctx context.Context, key string, value []byte, ttl time.Duration) error
	sets  int
	dels  []string
}

func (m *mockKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockKVStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	m.sets++
	m.mu.Unlock()
	if m.setFn != nil {
		return m.setFn(ctx, key, value, ttl)
	}
	return nil
}

func (m *mockKVStore) Del(_ context.Context, key string) error {
	m.mu.Lock()
	m.dels = append(m.dels, key)
	m.mu.Unlock()
	return nil
}

func newTestCachedLookuper(t *testing.T, inner *mockLookuper) (*CachedLookuper, *mockKVStore) {
	t.Helper()
	ms := &mockKVStore{}
	return New(inner, ms, time.Hour, nil, zap.NewNop()), ms
}
