package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store keeps sessions between messages.
type Store interface {
	Load(ctx context.Context, peer string) (*Session, bool, error) // session, found, err
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, peer string) error
}

// MemoryStore keeps sessions in process memory.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]Session
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]Session)}
}

func (m *MemoryStore) Load(_ context.Context, peer string) (*Session, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[peer]
	if !ok {
		return nil, false, nil
	}
	s.Texts = copyTexts(s.Texts)
	return &s, true, nil
}

func (m *MemoryStore) Save(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *s
	c.Texts = copyTexts(s.Texts)
	m.sessions[s.Peer] = c
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, peer string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, peer)
	return nil
}

func copyTexts(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// RedisStore keeps sessions as JSON values in Redis so several server
// instances can share conversations.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore stores sessions under prefix+peer. A zero ttl keeps them
// forever.
func NewRedisStore(client *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, prefix: prefix, ttl: ttl}
}

func (r *RedisStore) key(peer string) string { return r.prefix + peer }

func (r *RedisStore) Load(ctx context.Context, peer string) (*Session, bool, error) {
	val, err := r.client.Get(ctx, r.key(peer)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil // redis.Nil -> found: false, err: nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load session %s: %w", peer, err)
	}
	var s Session
	if err := json.Unmarshal(val, &s); err != nil {
		return nil, false, fmt.Errorf("decode session %s: %w", peer, err)
	}
	return &s, true, nil
}

func (r *RedisStore) Save(ctx context.Context, s *Session) error {
	b, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", s.Peer, err)
	}
	if err := r.client.Set(ctx, r.key(s.Peer), b, r.ttl).Err(); err != nil {
		return fmt.Errorf("save session %s: %w", s.Peer, err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, peer string) error {
	return r.client.Del(ctx, r.key(peer)).Err()
}

// Close releases the Redis connection pool.
func (r *RedisStore) Close() error {
	return r.client.Close()
}
