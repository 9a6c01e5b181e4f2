package service

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ReadTracker remembers which enquiries an admin session has already run
// through the mark-read pass.
type ReadTracker interface {
	Unseen(ctx context.Context, session string, ids []string) ([]string, error)
	MarkSeen(ctx context.Context, session string, ids []string) error
}

// RedisReadTracker keeps one set per session that expires with the session.
type RedisReadTracker struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisReadTracker(rdb *redis.Client, ttl time.Duration) *RedisReadTracker {
	return &RedisReadTracker{rdb: rdb, ttl: ttl}
}

func seenKey(session string) string {
	return "admin:session:" + session + ":enquiries_seen"
}

func (t *RedisReadTracker) Unseen(ctx context.Context, session string, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	members := make([]any, len(ids))
	for i, id := range ids {
		members[i] = id
	}
	seen, err := t.rdb.SMIsMember(ctx, seenKey(session), members...).Result()
	if err != nil {
		return nil, err
	}

	var out []string
	for i, ok := range seen {
		if !ok {
			out = append(out, ids[i])
		}
	}
	return out, nil
}

func (t *RedisReadTracker) MarkSeen(ctx context.Context, session string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	members := make([]any, len(ids))
	for i, id := range ids {
		members[i] = id
	}

	key := seenKey(session)
	pipe := t.rdb.TxPipeline()
	pipe.SAdd(ctx, key, members...)
	pipe.Expire(ctx, key, t.ttl)
	_, err := pipe.Exec(ctx)
	return err
}

// MemoryReadTracker is a process-local ReadTracker.
type MemoryReadTracker struct {
	mu   sync.Mutex
	seen map[string]map[string]struct{}
}

func NewMemoryReadTracker() *MemoryReadTracker {
	return &MemoryReadTracker{seen: make(map[string]map[string]struct{})}
}

func (t *MemoryReadTracker) Unseen(_ context.Context, session string, ids []string) ([]string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var out []string
	for _, id := range ids {
		if _, ok := t.seen[session][id]; !ok {
			out = append(out, id)
		}
	}
	return out, nil
}

func (t *MemoryReadTracker) MarkSeen(_ context.Context, session string, ids []string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	set, ok := t.seen[session]
	if !ok {
		set = make(map[string]struct{}, len(ids))
		t.seen[session] = set
	}
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return nil
}
