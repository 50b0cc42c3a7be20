package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss はキーが存在しない場合に Get が返します。
var ErrMiss = errors.New("cache: miss")

// Store はキーバリューキャッシュを抽象化します。値は JSON 化済みの
// バイト列として扱います。
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	DeletePattern(ctx context.Context, pattern string) error
}
