package roster

import (
	"time"

	"github.com/jacl-coder/CourtBoard-Server/internal/models"
)

// WaitMinutes 已等待的整分钟数，不在排队时为0
func WaitMinutes(p *models.Player, now time.Time) int {
	return minutesSince(p.WaitStart, now)
}

// PlayMinutes 已上场的整分钟数，不在场上时为0
func PlayMinutes(p *models.Player, now time.Time) int {
	return minutesSince(p.PlayStart, now)
}

// WaitLevelOf 等待时长分级
func WaitLevelOf(minutes int) models.WaitLevel {
	switch {
	case minutes >= 60:
		return models.WaitHot
	case minutes >= 30:
		return models.WaitLong
	default:
		return models.WaitFresh
	}
}

func minutesSince(ts *time.Time, now time.Time) int {
	if ts == nil {
		return 0
	}
	d := now.Sub(*ts)
	if d <= 0 {
		return 0
	}
	return int(d / time.Minute)
}
