package board

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/jacl-coder/CourtBoard-Server/internal/roster"
)

// BoardHandler 签到板HTTP处理器
type BoardHandler struct {
	service *BoardService
}

// NewBoardHandler 创建处理器
func NewBoardHandler(service *BoardService) *BoardHandler {
	return &BoardHandler{
		service: service,
	}
}

// RegisterHandlers 注册HTTP处理器
func (h *BoardHandler) RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("/health", h.handleHealth)

	mux.HandleFunc("/board", h.handleBoard)
	mux.HandleFunc("/board/checkin", h.handleCheckIn)
	mux.HandleFunc("/board/assign", h.handleAssign)
	mux.HandleFunc("/board/finish", h.handleFinish)
	mux.HandleFunc("/board/waiting", h.handleRemoveWaiting)
	mux.HandleFunc("/board/ws", h.handleWebSocket)
}

// 通用响应
type boardResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// 签到请求，career 可以是数字或字符串
type checkInRequest struct {
	Name   string          `json:"name"`
	Gender string          `json:"gender"`
	Career json.RawMessage `json:"career"`
}

// 上场/结束比赛请求，球场是否存在由签到板判断
type courtRequest struct {
	PlayerID int64 `json:"player_id"`
	CourtID  int   `json:"court_id"`
}

// handleHealth 处理健康检查请求
func (h *BoardHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "仅支持GET方法", http.StatusMethodNotAllowed)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// handleBoard 返回当前快照
func (h *BoardHandler) handleBoard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "仅支持GET方法", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, boardResponse{
		Success: true,
		Message: "查询成功",
		Data:    h.service.snapshot(),
	})
}

// handleCheckIn 处理签到
func (h *BoardHandler) handleCheckIn(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "仅支持POST方法", http.StatusMethodNotAllowed)
		return
	}

	var req checkInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "无效的请求格式", http.StatusBadRequest)
		return
	}

	player, err := h.service.manager.CheckIn(req.Name, req.Gender, careerText(req.Career))
	if err != nil {
		var verr *roster.ValidationError
		if errors.As(err, &verr) {
			writeJSON(w, http.StatusBadRequest, boardResponse{Success: false, Message: verr.Reason})
			return
		}
		log.Printf("签到失败: %v", err)
		http.Error(w, "签到失败", http.StatusInternalServerError)
		return
	}

	h.service.broadcastSnapshot()
	writeJSON(w, http.StatusOK, boardResponse{Success: true, Message: "签到成功", Data: player})
}

// handleAssign 处理上场
func (h *BoardHandler) handleAssign(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCourtRequest(w, r)
	if !ok {
		return
	}

	if !h.service.manager.AssignToCourt(req.PlayerID, req.CourtID) {
		writeJSON(w, http.StatusOK, boardResponse{Success: false, Message: "球员不在等待队列中或球场不存在"})
		return
	}

	h.service.broadcastSnapshot()
	writeJSON(w, http.StatusOK, boardResponse{Success: true, Message: "已进入球场"})
}

// handleFinish 处理结束比赛
func (h *BoardHandler) handleFinish(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCourtRequest(w, r)
	if !ok {
		return
	}

	if !h.service.manager.FinishGame(req.CourtID, req.PlayerID) {
		writeJSON(w, http.StatusOK, boardResponse{Success: false, Message: "球员不在该球场上"})
		return
	}

	h.service.broadcastSnapshot()
	writeJSON(w, http.StatusOK, boardResponse{Success: true, Message: "比赛结束，已回到等待队列"})
}

// handleRemoveWaiting 从等待队列删除
func (h *BoardHandler) handleRemoveWaiting(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost && r.Method != http.MethodDelete {
		http.Error(w, "仅支持POST或DELETE方法", http.StatusMethodNotAllowed)
		return
	}

	playerIDStr := r.URL.Query().Get("player_id")
	if playerIDStr == "" {
		http.Error(w, "缺少必要参数", http.StatusBadRequest)
		return
	}
	playerID, err := strconv.ParseInt(playerIDStr, 10, 64)
	if err != nil {
		http.Error(w, "无效的球员ID", http.StatusBadRequest)
		return
	}

	if !h.service.manager.RemoveFromWaiting(playerID) {
		writeJSON(w, http.StatusOK, boardResponse{Success: false, Message: "球员不在等待队列中"})
		return
	}

	h.service.broadcastSnapshot()
	writeJSON(w, http.StatusOK, boardResponse{Success: true, Message: "已离开等待队列"})
}

// handleWebSocket 订阅实时快照
func (h *BoardHandler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	h.service.hub.Serve(w, r, h.service.sendSnapshot)
}

func decodeCourtRequest(w http.ResponseWriter, r *http.Request) (courtRequest, bool) {
	var req courtRequest
	if r.Method != http.MethodPost {
		http.Error(w, "仅支持POST方法", http.StatusMethodNotAllowed)
		return req, false
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "无效的请求格式", http.StatusBadRequest)
		return req, false
	}
	if req.PlayerID <= 0 {
		http.Error(w, "缺少必要参数", http.StatusBadRequest)
		return req, false
	}
	return req, true
}

// careerText 把数字或字符串形式的球龄转成文本交给校验
func careerText(raw json.RawMessage) string {
	text := strings.TrimSpace(string(raw))
	if strings.HasPrefix(text, `"`) {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	}
	if text == "null" {
		return ""
	}
	return text
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("编码响应失败: %v", err)
	}
}
