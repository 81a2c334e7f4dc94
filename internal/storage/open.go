package storage

import (
	"fmt"
	"log"

	"github.com/jacl-coder/CourtBoard-Server/config"
	"github.com/jacl-coder/CourtBoard-Server/pkg/db"
)

// Open 按配置打开存储后端，Redis和PostgreSQL使用 pkg/db 初始化的连接
func Open(cfg *config.Config) (Store, error) {
	switch cfg.Storage.Backend {
	case config.BackendMemory:
		log.Println("使用内存存储，重启后状态不会保留")
		return NewMemoryStore(), nil
	case config.BackendFile:
		log.Printf("使用文件存储: %s", cfg.Storage.Dir)
		return NewFileStore(cfg.Storage.Dir)
	case config.BackendRedis:
		if err := db.InitRedis(&cfg.Redis); err != nil {
			return nil, err
		}
		store := NewRedisStore(db.RedisClient, cfg.Storage.KeyPrefix)
		store.onClose = db.CloseRedis
		return store, nil
	case config.BackendPostgres:
		if err := db.InitPostgres(&cfg.Database); err != nil {
			return nil, err
		}
		if err := db.InitAllTables(db.DB); err != nil {
			db.Close()
			return nil, fmt.Errorf("初始化数据库表失败: %w", err)
		}
		return NewPostgresStore(db.DB), nil
	default:
		return nil, fmt.Errorf("未知的存储后端: %s", cfg.Storage.Backend)
	}
}
