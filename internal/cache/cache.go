package cache

import (
	"context"
	"strings"
	"time"
)

type Cache interface {
	GetJSON(ctx context.Context, key string, dst any) (hit bool, err error)
	SetJSON(ctx context.Context, key string, val any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// Key joins parts with ':' under the careercoach namespace, ex: cc:history:<user>.
func Key(parts ...string) string {
	return "cc:" + strings.Join(parts, ":")
}
