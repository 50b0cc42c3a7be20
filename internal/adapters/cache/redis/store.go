// Package redis は Redis を利用したキャッシュストアの実装です。
package redis

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/PookieLand/employee-management-service/internal/core/cache"
)

// Store は cache.Store の Redis 実装です。
type Store struct {
	client *goredis.Client
}

var _ cache.Store = (*Store)(nil)

// NewStore は Store を生成します。
func NewStore(client *goredis.Client) *Store {
	return &Store{client: client}
}

// Get はキーに対応する値を返します。
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, cache.ErrMiss
		}
		return nil, err
	}
	return value, nil
}

// Set は値を TTL 付きで保存します。
func (s *Store) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.client.Set(ctx, key, value, ttl).Err()
}

// Delete は指定キーを削除します。
func (s *Store) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.client.Del(ctx, keys...).Err()
}

// DeletePattern はパターンに一致するキーを削除します。KEYS ではなく
// SCAN でカーソル走査し、本番ワークロードをブロックしないようにします。
func (s *Store) DeletePattern(ctx context.Context, pattern string) error {
	var (
		cursor uint64
		batch  []string
	)
	for {
		keys, next, err := s.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return err
		}
		batch = append(batch, keys...)
		if len(batch) >= 100 {
			if err := s.client.Del(ctx, batch...).Err(); err != nil {
				return err
			}
			batch = batch[:0]
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	if len(batch) > 0 {
		return s.client.Del(ctx, batch...).Err()
	}
	return nil
}
