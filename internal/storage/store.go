// store.go

// Package storage 提供签到板状态的持久化键值存储
package storage

import (
	"context"
	"errors"
)

// ErrNotFound 键不存在
var ErrNotFound = errors.New("storage: key not found")

// Store 持久化键值存储
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}
