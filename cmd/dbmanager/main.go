// main.go

package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/jacl-coder/CourtBoard-Server/config"
	"github.com/jacl-coder/CourtBoard-Server/internal/models"
	"github.com/jacl-coder/CourtBoard-Server/internal/roster"
	"github.com/jacl-coder/CourtBoard-Server/internal/storage"
	"github.com/jacl-coder/CourtBoard-Server/pkg/db"
)

// 演示数据
var demoPlayers = []struct {
	Name, Gender, Career string
}{
	{"Kim", "F", "3"},
	{"Lee", "M", "10"},
	{"Park", "F", "1"},
	{"Choi", "M", "6"},
	{"Jung", "F", "4"},
	{"Kang", "M", "2"},
}

func main() {
	// 解析命令行参数
	configPath := flag.String("config", "config/config.yaml", "配置文件路径")
	action := flag.String("action", "help", "操作类型: init, reset, setup, status, seed, clear, help")
	flag.Parse()

	// 显示帮助信息
	if *action == "help" {
		showHelp()
		return
	}

	// 加载配置
	if err := config.LoadConfig(*configPath); err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}
	cfg := &config.GlobalConfig

	switch *action {
	case "init":
		initDatabase()
	case "reset":
		resetDatabase()
	case "setup":
		resetDatabase()
		initDatabase()
		withStore(cfg, seedRoster)
	case "status":
		withStore(cfg, showStatus)
	case "seed":
		withStore(cfg, seedRoster)
	case "clear":
		withStore(cfg, clearRoster)
	default:
		log.Fatalf("未知操作: %s", *action)
	}
}

// showHelp 显示帮助信息
func showHelp() {
	log.Println("CourtBoard 存储管理工具")
	log.Println("")
	log.Println("用法:")
	log.Println("  go run ./cmd/dbmanager -action=<操作> [-config=<配置文件>]")
	log.Println("")
	log.Println("操作:")
	log.Println("  init    - 创建 roster_state 表（PostgreSQL）")
	log.Println("  reset   - 删除 roster_state 表及数据（PostgreSQL）")
	log.Println("  setup   - 依次执行 reset、init、seed（PostgreSQL）")
	log.Println("  status  - 显示当前保存的签到板状态")
	log.Println("  seed    - 签到一组演示球员，并安排一场双打")
	log.Println("  clear   - 用空签到板覆盖保存的状态")
	log.Println("  help    - 显示此帮助信息")
}

// initDatabase 初始化数据库
func initDatabase() {
	if err := db.InitPostgres(&config.GlobalConfig.Database); err != nil {
		log.Fatalf("初始化PostgreSQL失败: %v", err)
	}
	defer db.Close()

	log.Println("🚀 正在初始化数据库...")
	if err := db.InitAllTables(db.DB); err != nil {
		log.Fatalf("初始化数据库表失败: %v", err)
	}
	log.Println("✅ 数据库初始化完成")
}

// resetDatabase 重置数据库
func resetDatabase() {
	if err := db.InitPostgres(&config.GlobalConfig.Database); err != nil {
		log.Fatalf("初始化PostgreSQL失败: %v", err)
	}
	defer db.Close()

	log.Println("⚠️  正在重置数据库，这将删除保存的签到板状态！")
	if err := db.DropAllTables(db.DB); err != nil {
		log.Fatalf("重置数据库失败: %v", err)
	}
	log.Println("✅ 数据库重置完成")
}

// withStore 打开配置的存储后执行操作
func withStore(cfg *config.Config, fn func(cfg *config.Config, store storage.Store)) {
	store, err := storage.Open(cfg)
	if err != nil {
		log.Fatalf("初始化存储失败: %v", err)
	}
	defer store.Close()
	fn(cfg, store)
}

func loadRoster(cfg *config.Config, store storage.Store) *models.Roster {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return roster.Load(ctx, store, cfg.Roster.StorageKey, cfg.Roster.MaxCourts, time.Now())
}

// showStatus 显示签到板状态
func showStatus(cfg *config.Config, store storage.Store) {
	manager := roster.NewManager(loadRoster(cfg, store))
	snap := manager.Snapshot(time.Now())

	log.Printf("📋 等待队列 (%d 人):", len(snap.Waiting))
	for _, p := range snap.Waiting {
		log.Printf("  #%d %s (%s, %d年) 已等待 %d 分钟, 共 %d 场", p.ID, p.Name, p.Gender, p.Career, p.WaitMinutes, p.Games)
	}
	for _, c := range snap.Courts {
		log.Printf("🎾 球场 %d (进行 %d 分钟):", c.ID, c.ElapsedMinutes)
		for _, p := range c.Players {
			log.Printf("  #%d %s 已上场 %d 分钟", p.ID, p.Name, p.PlayMinutes)
		}
	}

	if cfg.Storage.Backend != config.BackendPostgres {
		return
	}
	states, err := db.ListStates(db.DB)
	if err != nil {
		log.Printf("查询状态表失败: %v", err)
		return
	}
	log.Printf("🗄️  roster_state 中共 %d 条记录:", len(states))
	for _, row := range states {
		log.Printf("  %s  %d 字节  更新于 %s", row.Key, row.Size, row.UpdatedAt.Format(time.RFC3339))
	}
}

// seedRoster 写入演示数据
func seedRoster(cfg *config.Config, store storage.Store) {
	manager := roster.NewManager(loadRoster(cfg, store),
		roster.WithStore(store, cfg.Roster.StorageKey),
		roster.WithGenders(cfg.Roster.Genders),
	)

	var ids []int64
	for _, demo := range demoPlayers {
		p, err := manager.CheckIn(demo.Name, demo.Gender, demo.Career)
		if err != nil {
			log.Fatalf("签到演示球员 %s 失败: %v", demo.Name, err)
		}
		ids = append(ids, p.ID)
	}
	for _, id := range ids[:4] {
		manager.AssignToCourt(id, 1)
	}
	log.Printf("✅ 已签到 %d 名演示球员，其中4人在球场1", len(ids))
}

// clearRoster 清空保存的状态
func clearRoster(cfg *config.Config, store storage.Store) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := roster.Save(ctx, store, cfg.Roster.StorageKey, models.NewRoster(cfg.Roster.MaxCourts)); err != nil {
		log.Fatalf("清空签到板失败: %v", err)
	}
	log.Println("✅ 签到板已清空")
}
