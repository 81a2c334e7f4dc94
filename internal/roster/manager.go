// manager.go

// Package roster 管理签到板：等待队列、球场分配和状态持久化
package roster

import (
	"context"
	"log"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jacl-coder/CourtBoard-Server/internal/models"
	"github.com/jacl-coder/CourtBoard-Server/internal/storage"
)

// 单次保存的超时时间
const saveTimeout = 3 * time.Second

// Manager 签到板管理器
//
// 所有变更在同一把锁内完成并立即保存，保证按到达顺序逐个生效。
type Manager struct {
	roster *models.Roster
	mutex  sync.Mutex

	store   storage.Store
	key     string
	genders map[string]bool
	now     func() time.Time
	debug   bool
}

// Option 管理器选项
type Option func(*Manager)

// WithStore 设置持久化存储和键
func WithStore(store storage.Store, key string) Option {
	return func(m *Manager) {
		m.store = store
		m.key = key
	}
}

// WithGenders 限定可选的性别标签，为空时接受任意非空值
func WithGenders(genders []string) Option {
	return func(m *Manager) {
		m.genders = make(map[string]bool, len(genders))
		for _, g := range genders {
			m.genders[g] = true
		}
	}
}

// WithClock 替换时钟
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithDebug 记录每次变更
func WithDebug(debug bool) Option {
	return func(m *Manager) { m.debug = debug }
}

// NewManager 用已有状态创建管理器，roster 为 nil 时使用4片空球场
func NewManager(roster *models.Roster, opts ...Option) *Manager {
	if roster == nil {
		roster = models.NewRoster(4)
	}
	m := &Manager{
		roster: roster,
		key:    DefaultStorageKey,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// CheckIn 签到，新球员进入等待队列
func (m *Manager) CheckIn(name, gender, career string) (models.Player, error) {
	name = strings.TrimSpace(name)
	gender = strings.TrimSpace(gender)
	career = strings.TrimSpace(career)

	if name == "" {
		return models.Player{}, &ValidationError{Field: "name", Reason: "姓名不能为空"}
	}
	if gender == "" {
		return models.Player{}, &ValidationError{Field: "gender", Reason: "性别不能为空"}
	}
	if len(m.genders) > 0 && !m.genders[gender] {
		return models.Player{}, &ValidationError{Field: "gender", Reason: "未知的性别: " + gender}
	}
	years, err := strconv.Atoi(career)
	if err != nil {
		return models.Player{}, &ValidationError{Field: "career", Reason: "球龄必须是整数"}
	}
	if years < 0 {
		return models.Player{}, &ValidationError{Field: "career", Reason: "球龄不能为负数"}
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	p := &models.Player{
		ID:     m.roster.NextID,
		Name:   name,
		Gender: gender,
		Career: years,
	}
	m.roster.NextID++
	p.StartWaiting(m.now())
	m.roster.Waiting = append(m.roster.Waiting, p)

	if m.debug {
		log.Printf("球员 %d(%s) 签到", p.ID, p.Name)
	}
	m.save()
	return *p.Clone(), nil
}

// AssignToCourt 把排队中的球员送上指定球场
//
// 球员不在队列中或球场不存在时不做任何修改并返回 false。
func (m *Manager) AssignToCourt(playerID int64, courtID int) bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	court := m.roster.Court(courtID)
	if court == nil {
		return false
	}
	idx := indexOf(m.roster.Waiting, playerID)
	if idx == -1 {
		return false
	}

	p := m.roster.Waiting[idx]
	m.roster.Waiting = removeAt(m.roster.Waiting, idx)
	p.StartPlaying(m.now())
	court.Players = append(court.Players, p)

	if m.debug {
		log.Printf("球员 %d 进入球场 %d", p.ID, court.ID)
	}
	m.save()
	return true
}

// FinishGame 结束比赛，球员场次加1并回到等待队列
func (m *Manager) FinishGame(courtID int, playerID int64) bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	court := m.roster.Court(courtID)
	if court == nil {
		return false
	}
	idx := indexOf(court.Players, playerID)
	if idx == -1 {
		return false
	}

	p := court.Players[idx]
	court.Players = removeAt(court.Players, idx)
	p.Games++
	p.StartWaiting(m.now())
	m.roster.Waiting = append(m.roster.Waiting, p)

	if m.debug {
		log.Printf("球员 %d 在球场 %d 结束比赛，累计 %d 场", p.ID, court.ID, p.Games)
	}
	m.save()
	return true
}

// RemoveFromWaiting 从等待队列删除球员，在场上的球员不能删除
func (m *Manager) RemoveFromWaiting(playerID int64) bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	idx := indexOf(m.roster.Waiting, playerID)
	if idx == -1 {
		return false
	}
	m.roster.Waiting = removeAt(m.roster.Waiting, idx)

	if m.debug {
		log.Printf("球员 %d 离开等待队列", playerID)
	}
	m.save()
	return true
}

// Roster 当前状态的拷贝
func (m *Manager) Roster() *models.Roster {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.roster.Clone()
}

// Snapshot 生成渲染用快照：等待最久的排在前面，球场按编号排列
func (m *Manager) Snapshot(now time.Time) models.BoardSnapshot {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	snap := models.BoardSnapshot{
		Waiting:     make([]models.PlayerView, 0, len(m.roster.Waiting)),
		Courts:      make([]models.CourtView, 0, len(m.roster.Courts)),
		GeneratedAt: now,
	}

	for _, p := range m.roster.Waiting {
		mins := WaitMinutes(p, now)
		snap.Waiting = append(snap.Waiting, models.PlayerView{
			Player:      *p.Clone(),
			WaitMinutes: mins,
			WaitLevel:   WaitLevelOf(mins),
		})
	}
	sort.SliceStable(snap.Waiting, func(i, j int) bool {
		return snap.Waiting[i].WaitStart.Before(*snap.Waiting[j].WaitStart)
	})

	for _, c := range m.roster.Courts {
		view := models.CourtView{ID: c.ID, Players: make([]models.PlayerView, 0, len(c.Players))}
		for _, p := range c.Players {
			view.Players = append(view.Players, models.PlayerView{
				Player:      *p.Clone(),
				PlayMinutes: PlayMinutes(p, now),
			})
		}
		if len(view.Players) > 0 {
			view.ElapsedMinutes = view.Players[0].PlayMinutes
		}
		snap.Courts = append(snap.Courts, view)
	}
	sort.SliceStable(snap.Courts, func(i, j int) bool {
		return snap.Courts[i].ID < snap.Courts[j].ID
	})

	return snap
}

// Now 管理器使用的当前时间
func (m *Manager) Now() time.Time {
	return m.now()
}

// save 保存失败只记录日志，内存状态仍然有效
func (m *Manager) save() {
	if m.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()

	if err := Save(ctx, m.store, m.key, m.roster); err != nil {
		log.Printf("签到板状态保存失败: %v", err)
	}
}

func indexOf(players []*models.Player, id int64) int {
	for i, p := range players {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func removeAt(players []*models.Player, idx int) []*models.Player {
	return append(players[:idx], players[idx+1:]...)
}
