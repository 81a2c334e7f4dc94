// redis.go

package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// RedisStore 基于Redis字符串键的存储
type RedisStore struct {
	client *redis.Client
	prefix string

	// 共享的全局客户端由 onClose 负责释放
	onClose func() error
}

// NewRedisStore 创建Redis存储，所有键加上 prefix
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

// Get 读取
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("Redis读取失败: %w", err)
	}
	return data, nil
}

// Set 写入，不过期
func (s *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("Redis写入失败: %w", err)
	}
	return nil
}

// Close 关闭客户端
func (s *RedisStore) Close() error {
	if s.onClose != nil {
		return s.onClose()
	}
	return s.client.Close()
}
