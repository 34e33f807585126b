package redis

import (
	"context"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

var NilError = goredis.Nil

type Options = goredis.UniversalOptions

// Adapter is the subset of redis the services need: plain key operations
// plus a token-guarded lease used to serialize engine runs.
type Adapter interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, error)
	Del(ctx context.Context, key string) error

	// AcquireLease sets key to token iff the key is absent. Returns false
	// when another holder currently owns the lease.
	AcquireLease(ctx context.Context, key, token string, ttl time.Duration) (bool, error)
	// ReleaseLease deletes key only when it still holds token, so an
	// expired lease reclaimed by another run is never released by the
	// previous holder.
	ReleaseLease(ctx context.Context, key, token string) error

	Client() goredis.UniversalClient
}

type redisAdapter struct {
	prefix string
	conn   goredis.UniversalClient
}

var adapterLock = &sync.Mutex{}
var adapters map[string]Adapter

func NewAdapter(connName string, keysPrefix string, opts *goredis.UniversalOptions) (Adapter, error) {
	adapterLock.Lock()
	defer adapterLock.Unlock()

	if adapters == nil {
		adapters = make(map[string]Adapter)
	}
	if a, ok := adapters[connName]; ok {
		return a, nil
	}

	c := goredis.NewUniversalClient(opts)
	if cmd := c.Ping(context.Background()); cmd.Err() != nil {
		return nil, cmd.Err()
	}

	a := &redisAdapter{conn: c, prefix: keysPrefix}
	adapters[connName] = a
	return a, nil
}

// NewAdapterFromClient wraps an existing client, bypassing the shared
// registry. Used by tests against miniredis.
func NewAdapterFromClient(keysPrefix string, c goredis.UniversalClient) Adapter {
	return &redisAdapter{conn: c, prefix: keysPrefix}
}

func (a *redisAdapter) key(k string) string {
	if a.prefix == "" {
		return k
	}
	return a.prefix + ":" + k
}

func (a *redisAdapter) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return a.conn.Set(ctx, a.key(key), value, ttl).Err()
}

func (a *redisAdapter) Get(ctx context.Context, key string) ([]byte, error) {
	return a.conn.Get(ctx, a.key(key)).Bytes()
}

func (a *redisAdapter) Del(ctx context.Context, key string) error {
	return a.conn.Del(ctx, a.key(key)).Err()
}

func (a *redisAdapter) AcquireLease(ctx context.Context, key, token string, ttl time.Duration) (bool, error) {
	return a.conn.SetNX(ctx, a.key(key), token, ttl).Result()
}

var releaseScript = goredis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

func (a *redisAdapter) ReleaseLease(ctx context.Context, key, token string) error {
	return releaseScript.Run(ctx, a.conn, []string{a.key(key)}, token).Err()
}

func (a *redisAdapter) Client() goredis.UniversalClient {
	return a.conn
}
