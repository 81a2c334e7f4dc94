// board.go

package models

import "time"

// WaitLevel 等待时长分级，用于前端展示
type WaitLevel string

const (
	WaitFresh WaitLevel = "fresh" // 30分钟以内
	WaitLong  WaitLevel = "long"  // 30分钟以上
	WaitHot   WaitLevel = "hot"   // 60分钟以上
)

// PlayerView 带派生时长的球员视图
type PlayerView struct {
	Player
	WaitMinutes int       `json:"waitMinutes"`
	PlayMinutes int       `json:"playMinutes"`
	WaitLevel   WaitLevel `json:"waitLevel,omitempty"`
}

// CourtView 球场视图
type CourtView struct {
	ID             int          `json:"id"`
	ElapsedMinutes int          `json:"elapsedMinutes"`
	Players        []PlayerView `json:"players"`
}

// BoardSnapshot 渲染层使用的只读快照
type BoardSnapshot struct {
	Waiting     []PlayerView `json:"waiting"`
	Courts      []CourtView  `json:"courts"`
	GeneratedAt time.Time    `json:"generatedAt"`
}
