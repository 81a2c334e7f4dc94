// main.go

package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jacl-coder/CourtBoard-Server/config"
	"github.com/jacl-coder/CourtBoard-Server/internal/board"
	"github.com/jacl-coder/CourtBoard-Server/internal/roster"
	"github.com/jacl-coder/CourtBoard-Server/internal/storage"
)

func main() {
	// 解析命令行参数
	configPath := flag.String("config", "config/config.yaml", "配置文件路径")
	flag.Parse()

	// 加载配置
	if err := config.LoadConfig(*configPath); err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}
	cfg := &config.GlobalConfig

	// 初始化存储
	store, err := storage.Open(cfg)
	if err != nil {
		log.Fatalf("初始化存储失败: %v", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("关闭存储失败: %v", err)
		}
	}()

	// 恢复签到板状态
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	state := roster.Load(ctx, store, cfg.Roster.StorageKey, cfg.Roster.MaxCourts, time.Now())
	cancel()
	log.Printf("签到板状态已恢复: 等待 %d 人，球场 %d 片", len(state.Waiting), len(state.Courts))

	manager := roster.NewManager(state,
		roster.WithStore(store, cfg.Roster.StorageKey),
		roster.WithGenders(cfg.Roster.Genders),
		roster.WithDebug(cfg.Server.Debug || cfg.Server.LogLevel == "debug"),
	)

	// 启动签到板服务
	service := board.NewBoardService(cfg, manager)
	if err := service.Start(); err != nil {
		log.Fatalf("启动签到板服务失败: %v", err)
	}
	log.Println("签到板服务已启动")

	// 等待中断信号
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("接收到关闭信号，正在关闭服务器...")
	service.Stop()
	log.Println("服务器已安全关闭")
}
