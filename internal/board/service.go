// service.go

package board

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/jacl-coder/CourtBoard-Server/config"
	"github.com/jacl-coder/CourtBoard-Server/internal/models"
	"github.com/jacl-coder/CourtBoard-Server/internal/roster"
)

// BoardService 签到板服务：HTTP命令接口、实时推送和定时刷新
type BoardService struct {
	manager *roster.Manager
	config  *config.Config
	hub     *Hub
	handler *BoardHandler

	// 快照和推送放在同一把锁里，客户端不会收到比上一条更旧的快照
	broadcastMutex sync.Mutex

	// HTTP服务器
	httpServer *http.Server

	// 控制通道
	shutdown  chan struct{}
	isRunning bool
	runMutex  sync.Mutex
}

// NewBoardService 创建签到板服务
func NewBoardService(cfg *config.Config, manager *roster.Manager) *BoardService {
	service := &BoardService{
		manager:  manager,
		config:   cfg,
		hub:      NewHub(),
	}

	// 创建处理器
	service.handler = NewBoardHandler(service)

	return service
}

// Handler 带中间件的HTTP处理器
func (s *BoardService) Handler() http.Handler {
	mux := http.NewServeMux()
	s.handler.RegisterHandlers(mux)

	var handler http.Handler = mux
	handler = NewCORSMiddleware().Middleware(handler)
	handler = NewSecurityMiddleware().Middleware(handler)
	handler = NewLoggingMiddleware().Middleware(handler)
	return handler
}

// Start 启动签到板服务
func (s *BoardService) Start() error {
	s.runMutex.Lock()
	defer s.runMutex.Unlock()

	if s.isRunning {
		return fmt.Errorf("签到板服务已经在运行")
	}

	s.shutdown = make(chan struct{})
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", s.config.Server.BoardPort),
		Handler: s.Handler(),
	}
	s.httpServer = server

	// 启动HTTP服务器
	go func() {
		log.Printf("签到板HTTP服务器启动，监听端口: %d", s.config.Server.BoardPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("签到板HTTP服务器错误: %v", err)
		}
	}()

	// 启动定时刷新
	go s.refreshLoop(s.config.Server.RefreshInterval, s.shutdown)

	s.isRunning = true
	return nil
}

// Stop 停止签到板服务
func (s *BoardService) Stop() {
	s.runMutex.Lock()
	defer s.runMutex.Unlock()

	if !s.isRunning {
		return
	}

	close(s.shutdown)
	s.isRunning = false

	s.hub.Close()

	// 关闭HTTP服务器
	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(ctx); err != nil {
			log.Printf("关闭HTTP服务器失败: %v", err)
		}
	}

	log.Println("签到板服务已停止")
}

// refreshLoop 定时推送最新快照，只读取状态
func (s *BoardService) refreshLoop(interval time.Duration, shutdown <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if s.hub.Count() > 0 {
				s.broadcastSnapshot()
			}
		case <-shutdown:
			return
		}
	}
}

// snapshot 当前快照
func (s *BoardService) snapshot() models.BoardSnapshot {
	return s.manager.Snapshot(s.manager.Now())
}

// broadcastSnapshot 向所有客户端推送快照
func (s *BoardService) broadcastSnapshot() {
	s.broadcastMutex.Lock()
	defer s.broadcastMutex.Unlock()

	s.hub.Broadcast(Message{Type: MessageBoard, Payload: s.snapshot()})
}

// sendSnapshot 向新连接的客户端发送快照
func (s *BoardService) sendSnapshot(client *Client) {
	s.broadcastMutex.Lock()
	defer s.broadcastMutex.Unlock()

	s.hub.SendTo(client, Message{Type: MessageBoard, Payload: s.snapshot()})
}
