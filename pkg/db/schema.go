// schema.go

package db

import (
	"database/sql"
	"time"
)

// CreateAllTablesSQL 创建签到板状态表
const CreateAllTablesSQL = `
-- 签到板状态表，每个键保存一份完整的JSON状态
CREATE TABLE IF NOT EXISTS roster_state (
    key VARCHAR(100) PRIMARY KEY,
    payload TEXT NOT NULL,
    updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
);
`

// DropAllTablesSQL 删除所有表
const DropAllTablesSQL = `
DROP TABLE IF EXISTS roster_state CASCADE;
`

// StateSummarySQL 查询已保存的状态
const StateSummarySQL = `SELECT key, LENGTH(payload), updated_at FROM roster_state ORDER BY key`

// StateRow 已保存状态的概要
type StateRow struct {
	Key       string
	Size      int
	UpdatedAt time.Time
}

// ListStates 列出所有已保存的状态
func ListStates(conn *sql.DB) ([]StateRow, error) {
	rows, err := conn.Query(StateSummarySQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var states []StateRow
	for rows.Next() {
		var row StateRow
		if err := rows.Scan(&row.Key, &row.Size, &row.UpdatedAt); err != nil {
			return nil, err
		}
		states = append(states, row)
	}
	return states, rows.Err()
}

// InitAllTables 初始化所有数据库表
func InitAllTables(conn *sql.DB) error {
	_, err := conn.Exec(CreateAllTablesSQL)
	return err
}

// DropAllTables 删除所有表和数据
func DropAllTables(conn *sql.DB) error {
	_, err := conn.Exec(DropAllTablesSQL)
	return err
}
