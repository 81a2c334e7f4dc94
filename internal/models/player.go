// player.go

package models

import (
	"time"
)

// Player 签到的球员
//
// WaitStart 与 PlayStart 任一时刻恰好有一个非空：排队中或在场上。
type Player struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Gender string `json:"gender"`
	Career int    `json:"career"` // 球龄（年）
	Games  int    `json:"games"`  // 累计完成的场次

	WaitStart *time.Time `json:"waitStart"`
	PlayStart *time.Time `json:"playStart"`
}

// IsWaiting 是否在排队
func (p *Player) IsWaiting() bool {
	return p.WaitStart != nil && p.PlayStart == nil
}

// IsPlaying 是否在场上
func (p *Player) IsPlaying() bool {
	return p.PlayStart != nil && p.WaitStart == nil
}

// StartWaiting 进入等待队列
func (p *Player) StartWaiting(now time.Time) {
	t := now
	p.WaitStart = &t
	p.PlayStart = nil
}

// StartPlaying 上场
func (p *Player) StartPlaying(now time.Time) {
	t := now
	p.PlayStart = &t
	p.WaitStart = nil
}

// Clone 深拷贝，时间指针不共享
func (p *Player) Clone() *Player {
	c := *p
	if p.WaitStart != nil {
		t := *p.WaitStart
		c.WaitStart = &t
	}
	if p.PlayStart != nil {
		t := *p.PlayStart
		c.PlayStart = &t
	}
	return &c
}
