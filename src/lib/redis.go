package lib

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var redisClient *redis.Client

func GetRedisClient() *redis.Client {
	if redisClient != nil {
		return redisClient
	}
	redisHost := os.Getenv("REDIS_HOST")
	opt, err := redis.ParseURL(redisHost)
	if err != nil {
		log.Printf("[redis] Error parsing connection string: %s\n", err.Error())
		return nil
	}
	rdb := redis.NewClient(opt)
	redisClient = rdb
	return rdb
}

// NewRedisClient Replace redis instance with custom client implementation
func NewRedisClient(c *redis.Client) *redis.Client {
	redisClient = c
	return redisClient
}

// only the holder that set the token may delete the key
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker hands out leases backed by SET NX PX.
type RedisLocker struct {
	rdb   *redis.Client
	token func() string
}

func NewRedisLocker(rdb *redis.Client) *RedisLocker {
	return &RedisLocker{rdb: rdb, token: uuid.NewString}
}

func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), bool, error) {
	if l.rdb == nil {
		return nil, false, errors.New("redis client is not configured")
	}
	token := l.token()
	ok, err := l.rdb.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}
	release := func() {
		// the request context may already be cancelled at this point
		rctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(rctx, l.rdb, []string{key}, token).Err(); err != nil {
			log.Printf("[redis] Error releasing lock %s: %s\n", key, err.Error())
		}
	}
	return release, true, nil
}

const deviceTokenTTL = 60 * 24 * time.Hour

func deviceTokenKey(userID uint) string {
	return fmt.Sprintf("user:%d:fcm", userID)
}

// SaveDeviceToken remembers the latest FCM registration token of a user.
func SaveDeviceToken(ctx context.Context, rdb *redis.Client, userID uint, token string) error {
	return rdb.Set(ctx, deviceTokenKey(userID), token, deviceTokenTTL).Err()
}

// GetDeviceToken returns "" when the user never registered a device.
func GetDeviceToken(ctx context.Context, rdb *redis.Client, userID uint) (string, error) {
	val, err := rdb.Get(ctx, deviceTokenKey(userID)).Result()
	if err == redis.Nil {
		return "", nil
	}
	return val, err
}
