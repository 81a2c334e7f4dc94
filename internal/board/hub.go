// hub.go

package board

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// 写入超时时间
	writeWait = 10 * time.Second

	// 读取超时时间
	pongWait = 60 * time.Second

	// 发送 ping 的间隔时间
	pingPeriod = (pongWait * 9) / 10

	// 客户端只发送控制帧
	maxMessageSize = 4 * 1024
)

// 推送消息类型
const (
	MessageBoard = "board"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// 允许所有跨域请求
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Message 推送消息结构
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Client 订阅签到板的WebSocket连接
type Client struct {
	ID        string
	Send      chan []byte
	closeOnce sync.Once
}

// Hub 管理所有实时连接
type Hub struct {
	clients map[string]*Client
	mutex   sync.RWMutex
}

// NewHub 创建连接管理器
func NewHub() *Hub {
	return &Hub{clients: make(map[string]*Client)}
}

// Count 当前连接数
func (h *Hub) Count() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// Serve 升级HTTP连接并注册客户端，注册后由 onJoin 发送初始消息
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, onJoin func(*Client)) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket升级失败: %v", err)
		return
	}

	client := &Client{
		ID:   uuid.New().String(),
		Send: make(chan []byte, 16),
	}

	h.mutex.Lock()
	h.clients[client.ID] = client
	h.mutex.Unlock()

	log.Printf("看板客户端 %s 已连接", client.ID)

	if onJoin != nil {
		onJoin(client)
	}

	go h.readPump(conn, client)
	go h.writePump(conn, client)
}

// Broadcast 向所有客户端广播消息，发送缓冲已满的客户端会被断开
func (h *Hub) Broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("序列化消息失败: %v", err)
		return
	}

	h.mutex.RLock()
	var slow []*Client
	for _, client := range h.clients {
		select {
		case client.Send <- data:
		default:
			slow = append(slow, client)
		}
	}
	h.mutex.RUnlock()

	for _, client := range slow {
		h.remove(client)
	}
}

// SendTo 向单个已注册的客户端发送消息，客户端已断开时返回 false
func (h *Hub) SendTo(client *Client, msg Message) bool {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("序列化消息失败: %v", err)
		return false
	}

	h.mutex.RLock()
	if h.clients[client.ID] != client {
		h.mutex.RUnlock()
		return false
	}
	select {
	case client.Send <- data:
		h.mutex.RUnlock()
		return true
	default:
		h.mutex.RUnlock()
		h.remove(client)
		return false
	}
}

// Close 断开所有客户端
func (h *Hub) Close() {
	h.mutex.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for _, client := range h.clients {
		clients = append(clients, client)
	}
	h.mutex.RUnlock()

	for _, client := range clients {
		h.remove(client)
	}
}

// remove 注销客户端并关闭发送通道
func (h *Hub) remove(client *Client) {
	h.mutex.Lock()
	delete(h.clients, client.ID)
	h.mutex.Unlock()

	client.closeOnce.Do(func() {
		close(client.Send)
		log.Printf("看板客户端 %s 已断开", client.ID)
	})
}

// readPump 只处理控制帧，连接出错时注销客户端
func (h *Hub) readPump(conn *websocket.Conn, client *Client) {
	defer func() {
		h.remove(client)
		conn.Close()
	}()

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket错误: %v", err)
			}
			return
		}
	}
}

// writePump 向WebSocket写入数据
func (h *Hub) writePump(conn *websocket.Conn, client *Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case message, ok := <-client.Send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// 通道已关闭
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
