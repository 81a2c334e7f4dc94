package board

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/jacl-coder/CourtBoard-Server/internal/models"
)

type boardMessage struct {
	Type    string               `json:"type"`
	Payload models.BoardSnapshot `json:"payload"`
}

func dialBoard(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/board/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("连接WebSocket失败: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readBoard(t *testing.T, conn *websocket.Conn) boardMessage {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg boardMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("读取消息失败: %v", err)
	}
	if msg.Type != MessageBoard {
		t.Fatalf("type = %q", msg.Type)
	}
	return msg
}

func TestWebSocketReceivesSnapshots(t *testing.T) {
	service, srv, _ := newTestService(t)
	conn := dialBoard(t, srv)

	initial := readBoard(t, conn)
	if len(initial.Payload.Waiting) != 0 || len(initial.Payload.Courts) != 4 {
		t.Fatalf("initial = %+v", initial.Payload)
	}
	if service.hub.Count() != 1 {
		t.Fatalf("count = %d", service.hub.Count())
	}

	checkIn(t, srv, `{"name":"Kim","gender":"F","career":"3"}`)
	msg := readBoard(t, conn)
	if len(msg.Payload.Waiting) != 1 || msg.Payload.Waiting[0].Name != "Kim" {
		t.Fatalf("签到后推送 = %+v", msg.Payload)
	}

	doJSON(t, http.MethodPost, srv.URL+"/board/assign", `{"player_id":1,"court_id":4}`)
	msg = readBoard(t, conn)
	if len(msg.Payload.Waiting) != 0 || len(msg.Payload.Courts[3].Players) != 1 {
		t.Fatalf("上场后推送 = %+v", msg.Payload)
	}
}

func TestRefreshLoopPushesWithoutMutation(t *testing.T) {
	service, srv, clock := newTestService(t)
	checkIn(t, srv, `{"name":"Kim","gender":"F","career":"3"}`)

	conn := dialBoard(t, srv)
	readBoard(t, conn)
	before := service.manager.Roster()

	clock.Advance(31 * time.Minute)
	shutdown := make(chan struct{})
	go service.refreshLoop(10*time.Millisecond, shutdown)
	defer close(shutdown)

	msg := readBoard(t, conn)
	if len(msg.Payload.Waiting) != 1 {
		t.Fatalf("waiting = %+v", msg.Payload.Waiting)
	}
	if got := msg.Payload.Waiting[0]; got.WaitMinutes != 31 || got.WaitLevel != models.WaitLong {
		t.Fatalf("刷新后的等待时长 = %+v", got)
	}

	after := service.manager.Roster()
	if after.NextID != before.NextID || len(after.Waiting) != len(before.Waiting) ||
		!after.Waiting[0].WaitStart.Equal(*before.Waiting[0].WaitStart) {
		t.Fatalf("定时刷新不应修改状态")
	}
}

func TestHubDropsSlowClient(t *testing.T) {
	hub := NewHub()
	slow := &Client{ID: "slow", Send: make(chan []byte)}
	fast := &Client{ID: "fast", Send: make(chan []byte, 1)}
	hub.clients[slow.ID] = slow
	hub.clients[fast.ID] = fast

	hub.Broadcast(Message{Type: MessageBoard, Payload: "x"})

	if hub.Count() != 1 {
		t.Fatalf("count = %d, want 1", hub.Count())
	}
	if _, ok := <-slow.Send; ok {
		t.Fatal("慢客户端的发送通道应已关闭")
	}
	data := <-fast.Send
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil || msg.Type != MessageBoard {
		t.Fatalf("fast 收到 %s", data)
	}

	hub.Close()
	if hub.Count() != 0 {
		t.Fatalf("Close 后 count = %d", hub.Count())
	}
	// 重复关闭不会panic
	hub.Close()
}

func TestHubSendToRemovedClient(t *testing.T) {
	hub := NewHub()
	client := &Client{ID: "c1", Send: make(chan []byte, 1)}
	hub.clients[client.ID] = client

	if !hub.SendTo(client, Message{Type: MessageBoard, Payload: "first"}) {
		t.Fatal("已注册的客户端应收到消息")
	}
	// 缓冲已满，客户端被断开
	if hub.SendTo(client, Message{Type: MessageBoard, Payload: "second"}) {
		t.Fatal("缓冲已满时应返回 false")
	}
	if hub.Count() != 0 {
		t.Fatalf("count = %d, want 0", hub.Count())
	}
	// 已关闭的发送通道不会panic
	if hub.SendTo(client, Message{Type: MessageBoard, Payload: "third"}) {
		t.Fatal("已断开的客户端不应收到消息")
	}
}

func TestServiceRestart(t *testing.T) {
	service, _, _ := newTestService(t)
	service.config.Server.BoardPort = 0

	for i := 0; i < 2; i++ {
		if err := service.Start(); err != nil {
			t.Fatalf("第 %d 次启动: %v", i+1, err)
		}
		if err := service.Start(); err == nil {
			t.Fatal("重复启动应返回错误")
		}
		service.Stop()
	}
	service.Stop()
}
