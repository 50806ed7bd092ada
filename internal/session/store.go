package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/noah-isme/internship-portal/pkg/config"
)

// ErrNotFound is returned by stores for unknown or expired sessions.
var ErrNotFound = errors.New("session not found")

// Store persists identities by session id. Only login and logout write.
type Store interface {
	Save(ctx context.Context, id string, identity Identity, ttl time.Duration) error
	Load(ctx context.Context, id string) (*Identity, error)
	Delete(ctx context.Context, id string) error
	Close() error
}

// NewStore builds the store selected by configuration.
func NewStore(cfg *config.Config) (Store, error) {
	switch cfg.Session.Store {
	case config.SessionStoreMemory:
		return NewMemoryStore(), nil
	case config.SessionStoreRedis:
		return DialRedisStore(cfg.Redis)
	case config.SessionStoreBolt:
		return OpenBoltStore(cfg.Session.BoltPath)
	default:
		return nil, fmt.Errorf("unknown session store %q", cfg.Session.Store)
	}
}
