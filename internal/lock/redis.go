// Package lock provides a redis-backed booking.Locker so several engine
// instances sharing one database still run commands one at a time.
package lock

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	DefaultTTL   = 10 * time.Second
	retryEvery   = 25 * time.Millisecond
	unlockBudget = 2 * time.Second
	keyPrefix    = "lock:"
)

// Only the holder's token may delete the key.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker acquires a key with SET NX PX and releases it with a
// compare-and-delete script. A holder that outlives the TTL loses the lock.
type RedisLocker struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisLocker(client *redis.Client, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisLocker{client: client, ttl: ttl}
}

// Connect builds a client and pings it with a short timeout.
func Connect(addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return client, nil
}

// Lock blocks until the key is acquired or ctx is done.
func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	name := keyPrefix + key
	token := uuid.NewString()

	ticker := time.NewTicker(retryEvery)
	defer ticker.Stop()
	for {
		ok, err := l.client.SetNX(ctx, name, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquiring %s: %w", name, err)
		}
		if ok {
			return l.releaser(name, token), nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (l *RedisLocker) releaser(name, token string) func() {
	var once sync.Once
	return func() { once.Do(func() { l.release(name, token) }) }
}

func (l *RedisLocker) release(name, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), unlockBudget)
	defer cancel()
	n, err := releaseScript.Run(ctx, l.client, []string{name}, token).Int()
	if err != nil {
		log.Printf("Failed to release %s: %v", name, err)
		return
	}
	if n == 0 {
		log.Printf("Lock %s expired before release", name)
	}
}
