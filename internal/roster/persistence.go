// persistence.go

package roster

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/jacl-coder/CourtBoard-Server/internal/models"
	"github.com/jacl-coder/CourtBoard-Server/internal/storage"
)

// DefaultStorageKey 状态保存使用的键
const DefaultStorageKey = "tennisClubState"

const (
	// 浏览器端能精确表示的最大整数，超出的ID视为无效
	maxSafeID = 1<<53 - 1

	// 浏览器 Date 可表示的最大毫秒时间戳
	maxTimestampMillis = 8.64e15
)

// 存储格式：时间为毫秒时间戳，缺省为 null
type playerRecord struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Gender    string `json:"gender"`
	Career    int    `json:"career"`
	Games     int    `json:"games"`
	WaitStart *int64 `json:"waitStart"`
	PlayStart *int64 `json:"playStart"`
}

type courtRecord struct {
	ID      int            `json:"id"`
	Players []playerRecord `json:"players"`
}

type stateRecord struct {
	NextID         int64          `json:"nextId"`
	WaitingPlayers []playerRecord `json:"waitingPlayers"`
	Courts         []courtRecord  `json:"courts"`
}

// Encode 序列化签到板状态
func Encode(r *models.Roster) ([]byte, error) {
	state := stateRecord{
		NextID:         r.NextID,
		WaitingPlayers: toRecords(r.Waiting),
		Courts:         make([]courtRecord, 0, len(r.Courts)),
	}
	for _, c := range r.Courts {
		state.Courts = append(state.Courts, courtRecord{ID: c.ID, Players: toRecords(c.Players)})
	}
	return json.Marshal(state)
}

// Save 保存状态到 store
func Save(ctx context.Context, store storage.Store, key string, r *models.Roster) error {
	data, err := Encode(r)
	if err != nil {
		return fmt.Errorf("序列化状态失败: %w", err)
	}
	if err := store.Set(ctx, key, data); err != nil {
		return fmt.Errorf("保存状态失败: %w", err)
	}
	return nil
}

// Load 从 store 恢复状态
//
// 键不存在、读取失败或内容无法解析时都返回新的空签到板，不会返回错误。
func Load(ctx context.Context, store storage.Store, key string, maxCourts int, now time.Time) *models.Roster {
	data, err := store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			log.Printf("读取签到板状态失败，使用空状态: %v", err)
		}
		return models.NewRoster(maxCourts)
	}

	r, err := Decode(data, maxCourts, now)
	if err != nil {
		log.Printf("签到板状态已损坏，使用空状态: %v", err)
		return models.NewRoster(maxCourts)
	}
	return r
}

// Decode 解析并修复存储的状态
//
// 每条球员记录的缺失字段按默认值补齐；球场按 1..maxCourts 对齐，未知编号丢弃；
// NextID 至少为已恢复球员最大ID加1。
func Decode(data []byte, maxCourts int, now time.Time) (*models.Roster, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("解析状态失败: %w", err)
	}
	if raw == nil {
		return nil, errors.New("状态不是JSON对象")
	}

	rep := &repairer{now: now, seen: make(map[int64]bool)}
	r := models.NewRoster(maxCourts)

	for _, p := range rep.players(raw["waitingPlayers"]) {
		p.PlayStart = nil
		r.Waiting = append(r.Waiting, p)
	}

	savedCourts, _ := raw["courts"].([]any)
	for _, court := range r.Courts {
		saved := findCourt(savedCourts, court.ID)
		if saved == nil {
			continue
		}
		for _, p := range rep.players(saved["players"]) {
			if p.PlayStart == nil {
				// 没有上场时间的记录视为仍在排队
				r.Waiting = append(r.Waiting, p)
				continue
			}
			p.WaitStart = nil
			court.Players = append(court.Players, p)
		}
	}

	rep.assignMissingIDs()

	if n, ok := idOf(raw["nextId"]); ok {
		r.NextID = n
	}
	var maxID int64
	for _, p := range r.AllPlayers() {
		if p.ID > maxID {
			maxID = p.ID
		}
	}
	if r.NextID < maxID+1 {
		r.NextID = maxID + 1
	}

	return r, nil
}

func findCourt(saved []any, id int) map[string]any {
	for _, item := range saved {
		c, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if n, ok := numberOf(c["id"]); ok && n == float64(id) {
			return c
		}
	}
	return nil
}

// repairer 修复球员记录并保证ID唯一
type repairer struct {
	now     time.Time
	seen    map[int64]bool
	missing []*models.Player
}

func (rp *repairer) players(v any) []*models.Player {
	list, _ := v.([]any)
	out := make([]*models.Player, 0, len(list))
	for _, item := range list {
		rec, ok := item.(map[string]any)
		if !ok {
			log.Printf("跳过无法识别的球员记录: %v", item)
			continue
		}
		out = append(out, rp.player(rec))
	}
	return out
}

func (rp *repairer) player(rec map[string]any) *models.Player {
	p := &models.Player{
		Name:   stringOf(rec["name"]),
		Gender: stringOf(rec["gender"]),
		Career: countOf(rec["career"]),
		Games:  countOf(rec["games"]),
	}

	if id, ok := idOf(rec["id"]); ok && !rp.seen[id] {
		p.ID = id
		rp.seen[id] = true
	} else {
		rp.missing = append(rp.missing, p)
	}

	if ts, ok := timestampOf(rec["waitStart"]); ok {
		p.WaitStart = &ts
	} else {
		now := rp.now
		p.WaitStart = &now
	}
	if ts, ok := timestampOf(rec["playStart"]); ok {
		p.PlayStart = &ts
	}
	return p
}

// assignMissingIDs 为缺少ID或ID重复的记录分配基于当前时间的新ID
func (rp *repairer) assignMissingIDs() {
	next := rp.now.UnixMilli()
	for _, p := range rp.missing {
		for rp.seen[next] {
			next++
		}
		p.ID = next
		rp.seen[next] = true
	}
}

func toRecords(players []*models.Player) []playerRecord {
	out := make([]playerRecord, 0, len(players))
	for _, p := range players {
		out = append(out, playerRecord{
			ID:        p.ID,
			Name:      p.Name,
			Gender:    p.Gender,
			Career:    p.Career,
			Games:     p.Games,
			WaitStart: millisOf(p.WaitStart),
			PlayStart: millisOf(p.PlayStart),
		})
	}
	return out
}

func millisOf(t *time.Time) *int64 {
	if t == nil {
		return nil
	}
	ms := t.UnixMilli()
	return &ms
}

// numberOf 接受JSON数字或数字字符串
func numberOf(v any) (float64, bool) {
	var n float64
	switch x := v.(type) {
	case float64:
		n = x
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		n = f
	default:
		return 0, false
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return math.Trunc(n), true
}

// idOf 接受 1 到 maxSafeID 之间的整数
func idOf(v any) (int64, bool) {
	n, ok := numberOf(v)
	if !ok || n < 1 || n > maxSafeID {
		return 0, false
	}
	return int64(n), true
}

func countOf(v any) int {
	n, ok := numberOf(v)
	if !ok || n < 0 || n > math.MaxInt32 {
		return 0
	}
	return int(n)
}

func stringOf(v any) string {
	s, _ := v.(string)
	return s
}

// timestampOf 只接受正的JSON数字（毫秒），且不超过 Date 的范围
func timestampOf(v any) (time.Time, bool) {
	n, ok := v.(float64)
	if !ok || math.IsNaN(n) || math.IsInf(n, 0) || n <= 0 || n > maxTimestampMillis {
		return time.Time{}, false
	}
	return time.UnixMilli(int64(n)), true
}
