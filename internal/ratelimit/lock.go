package ratelimit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

// KeyCatalogImport serializes catalog imports across API replicas and the CLI.
const KeyCatalogImport = "vitrine:lock:catalog-import"

var (
	// ErrLocked is returned by Acquire while another owner holds the key.
	ErrLocked = errors.New("lock is held by another owner")

	errLockerDisabled = errors.New("redis locker is not configured")
)

// Only the owner's token may delete the key.
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker hands out single-owner leases on Redis keys.
type Locker struct {
	client *redis.Client
}

// Lease is one acquired lock. Release is safe to call more than once.
type Lease struct {
	client *redis.Client
	key    string
	token  string
}

func NewLocker(client *redis.Client) *Locker {
	if client == nil {
		return nil
	}
	return &Locker{client: client}
}

// Acquire takes key for ttl, or returns ErrLocked when it is already taken.
func (l *Locker) Acquire(ctx context.Context, key string, ttl time.Duration) (*Lease, error) {
	switch {
	case l == nil || l.client == nil:
		return nil, errLockerDisabled
	case key == "":
		return nil, errors.New("lock key is empty")
	case ttl <= 0:
		return nil, errors.New("lock ttl must be positive")
	}

	lease := &Lease{client: l.client, key: key, token: uuid.NewString()}
	ok, err := l.client.SetNX(ctx, key, lease.token, ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrLocked
	}
	return lease, nil
}

// Release drops the lease even when ctx is already cancelled.
func (l *Lease) Release(ctx context.Context) error {
	if l == nil || l.token == "" {
		return nil
	}
	err := unlockScript.Run(context.WithoutCancel(ctx), l.client, []string{l.key}, l.token).Err()
	l.token = ""
	return err
}
