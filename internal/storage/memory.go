package storage

import (
	"context"
	"sync"
)

// MemoryStore 内存存储，进程退出后数据丢失
type MemoryStore struct {
	entries map[string][]byte
	mutex   sync.RWMutex
}

// NewMemoryStore 创建内存存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string][]byte)}
}

// Get 读取
func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	v, ok := s.entries[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

// Set 写入
func (s *MemoryStore) Set(ctx context.Context, key string, value []byte) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.entries[key] = append([]byte(nil), value...)
	return nil
}

// Close 无需释放资源
func (s *MemoryStore) Close() error { return nil }
