package cache

import (
	"context"
	"sync"
	"time"

	"youtube-etl/domain/errs"
	"youtube-etl/domain/repository"
	"youtube-etl/infrastructure/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const lockPrefix = "pipeline:lock:"

// releaseScript deletes the key only when it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// RedisLocker is a single-instance Redis lock shared by every process that
// points at the same Redis. The TTL bounds how long a crashed holder blocks others.
type RedisLocker struct {
	client *redis.Client
}

func NewRedisLocker(client *redis.Client) repository.ILocker {
	return &RedisLocker{client: client}
}

func (l *RedisLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (func(), bool, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, lockPrefix+key, token, ttl).Result()
	if err != nil {
		return nil, false, errs.Store("acquire lock "+key, err)
	}
	if !ok {
		return nil, false, nil
	}

	release := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := releaseScript.Run(ctx, l.client, []string{lockPrefix + key}, token).Err(); err != nil && err != redis.Nil {
			logger.GetLogger().WithFields(map[string]interface{}{"key": key, "error": err}).Error("Error while releasing lock")
		}
	}
	return release, true, nil
}

// LocalLocker guards runs inside a single process.
type LocalLocker struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func NewLocalLocker() repository.ILocker {
	return &LocalLocker{held: make(map[string]struct{})}
}

// TryLock ignores ttl; the lock lives until release is called.
func (l *LocalLocker) TryLock(_ context.Context, key string, _ time.Duration) (func(), bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, busy := l.held[key]; busy {
		return nil, false, nil
	}
	l.held[key] = struct{}{}

	var once sync.Once
	release := func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, key)
			l.mu.Unlock()
		})
	}
	return release, true, nil
}
