// postgres.go

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const (
	selectStateSQL = `SELECT payload FROM roster_state WHERE key = $1`
	upsertStateSQL = `INSERT INTO roster_state (key, payload, updated_at)
VALUES ($1, $2, CURRENT_TIMESTAMP)
ON CONFLICT (key) DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at`
)

// PostgresStore 基于 roster_state 表的存储，表结构见 pkg/db/schema.go
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore 创建PostgreSQL存储
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Get 读取
func (s *PostgresStore) Get(ctx context.Context, key string) ([]byte, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, selectStateSQL, key).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("查询状态失败: %w", err)
	}
	return []byte(payload), nil
}

// Set 写入或覆盖
func (s *PostgresStore) Set(ctx context.Context, key string, value []byte) error {
	if _, err := s.db.ExecContext(ctx, upsertStateSQL, key, string(value)); err != nil {
		return fmt.Errorf("保存状态失败: %w", err)
	}
	return nil
}

// Close 关闭数据库连接
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
