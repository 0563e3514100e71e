package store

import (
	"fmt"

	"github.com/redis/go-redis/v9"

	"pressroom.app/pressroom/core/config"
)

type Stores struct {
	sessions SessionStore
	threads  ThreadStore
}

// NewStores picks the live stores from cfg. client is required only for the
// redis kind.
func NewStores(cfg config.SessionConfig, client redis.UniversalClient) (*Stores, error) {
	switch cfg.Store {
	case config.SessionStoreRedis:
		if client == nil {
			return nil, fmt.Errorf("session store %q requires a redis client", cfg.Store)
		}
		opts := RedisOptions{TTL: cfg.TTL, LockTTL: cfg.LockTTL}
		return &Stores{
			sessions: NewRedisSessionStore(client, opts),
			threads:  NewRedisThreadStore(client, opts),
		}, nil
	case config.SessionStoreMemory, "":
		return &Stores{
			sessions: NewMemorySessionStore(cfg.TTL),
			threads:  NewMemoryThreadStore(cfg.TTL),
		}, nil
	default:
		return nil, fmt.Errorf("unknown session store %q", cfg.Store)
	}
}

func (s *Stores) Sessions() SessionStore {
	return s.sessions
}

func (s *Stores) Threads() ThreadStore {
	return s.threads
}
