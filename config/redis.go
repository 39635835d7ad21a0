package config

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisClient backs the history stream, interview state pub/sub and the history cache.
var RedisClient *redis.Client

func redisOptions() (*redis.Options, error) {
	addr := getEnv("REDIS_URL", getEnv("REDIS_ADDR", ""))
	if addr == "" {
		return nil, errors.New("REDIS_URL (or REDIS_ADDR) environment variable is not set")
	}

	var opt *redis.Options
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			return nil, err
		}
		opt = parsed
	} else {
		opt = &redis.Options{Addr: addr, DB: getEnvAsInt("REDIS_DB", 0)}
	}
	if pw := os.Getenv("REDIS_PASSWORD"); pw != "" {
		opt.Password = pw
	}
	// XReadGroup blocks for up to 5s; keep reads from timing out first.
	opt.ReadTimeout = 10 * time.Second
	opt.PoolSize = getEnvAsInt("REDIS_POOL_SIZE", 20)
	return opt, nil
}

func InitRedis() error {
	opt, err := redisOptions()
	if err != nil {
		return err
	}
	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return err
	}
	RedisClient = client
	return nil
}
