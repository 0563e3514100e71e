package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"pressroom.app/pressroom/common/id"
	"pressroom.app/pressroom/internal/model"
)

const (
	sessionKeyPrefix = "pressroom:session:"
	threadKeyPrefix  = "pressroom:thread:"
	lockKeySuffix    = ":lock"
)

// releaseLock deletes the lock only if it still carries our token, so an
// expired lock taken over by another request is left alone.
var releaseLock = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type redisKV[T any] struct {
	client  redis.UniversalClient
	prefix  string
	ttl     time.Duration
	lockTTL time.Duration
}

func (r *redisKV[T]) key(id string) string {
	return r.prefix + id
}

func (r *redisKV[T]) get(ctx context.Context, id string) (*T, error) {
	data, err := r.client.Get(ctx, r.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("redis get %s: %w", id, err)
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("decode %s: %w", id, err)
	}
	return &v, nil
}

func (r *redisKV[T]) save(ctx context.Context, id string, v *T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", id, err)
	}
	if err := r.client.Set(ctx, r.key(id), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", id, err)
	}
	return nil
}

func (r *redisKV[T]) delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, r.key(id)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", id, err)
	}
	return nil
}

func (r *redisKV[T]) lock(ctx context.Context, id string) (Unlock, error) {
	key := r.key(id) + lockKeySuffix
	token := newLockToken()

	ok, err := r.client.SetNX(ctx, key, token, r.lockTTL).Result()
	if err != nil {
		return nil, fmt.Errorf("redis lock %s: %w", id, err)
	}
	if !ok {
		return nil, ErrSessionBusy
	}

	released := false
	return func() {
		if released {
			return
		}
		released = true
		// the request context may already be cancelled
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		if err := releaseLock.Run(releaseCtx, r.client, []string{key}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
			slog.WarnContext(releaseCtx, "failed to release lock", "key", key, "error", err)
		}
	}, nil
}

func newLockToken() string {
	return id.NewString()
}

// RedisOptions configures the Redis-backed stores.
type RedisOptions struct {
	TTL     time.Duration
	LockTTL time.Duration
}

type redisSessionStore struct {
	kv *redisKV[model.SessionState]
}

func NewRedisSessionStore(client redis.UniversalClient, opts RedisOptions) SessionStore {
	return &redisSessionStore{kv: &redisKV[model.SessionState]{
		client: client, prefix: sessionKeyPrefix, ttl: opts.TTL, lockTTL: opts.LockTTL,
	}}
}

func (s *redisSessionStore) Get(ctx context.Context, id string) (*model.SessionState, error) {
	return s.kv.get(ctx, id)
}

func (s *redisSessionStore) Save(ctx context.Context, state *model.SessionState) error {
	return s.kv.save(ctx, state.ID, state)
}

func (s *redisSessionStore) Delete(ctx context.Context, id string) error {
	return s.kv.delete(ctx, id)
}

func (s *redisSessionStore) Lock(ctx context.Context, id string) (Unlock, error) {
	return s.kv.lock(ctx, id)
}

type redisThreadStore struct {
	kv *redisKV[model.Thread]
}

func NewRedisThreadStore(client redis.UniversalClient, opts RedisOptions) ThreadStore {
	return &redisThreadStore{kv: &redisKV[model.Thread]{
		client: client, prefix: threadKeyPrefix, ttl: opts.TTL, lockTTL: opts.LockTTL,
	}}
}

func (s *redisThreadStore) Get(ctx context.Context, id string) (*model.Thread, error) {
	return s.kv.get(ctx, id)
}

func (s *redisThreadStore) Save(ctx context.Context, thread *model.Thread) error {
	return s.kv.save(ctx, thread.ID, thread)
}

func (s *redisThreadStore) Delete(ctx context.Context, id string) error {
	return s.kv.delete(ctx, id)
}

func (s *redisThreadStore) Lock(ctx context.Context, id string) (Unlock, error) {
	return s.kv.lock(ctx, id)
}
