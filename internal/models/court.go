// court.go

package models

// Court 球场，编号 1..MaxCourts，启动后固定
type Court struct {
	ID      int       `json:"id"`
	Players []*Player `json:"players"`
}

// Roster 签到板的完整状态
type Roster struct {
	NextID  int64     `json:"nextId"`
	Waiting []*Player `json:"waitingPlayers"`
	Courts  []*Court  `json:"courts"`
}

// NewRoster 创建空的签到板：空队列，球场 1..maxCourts，NextID 从1开始
func NewRoster(maxCourts int) *Roster {
	return &Roster{
		NextID:  1,
		Waiting: make([]*Player, 0),
		Courts:  NewCourts(maxCourts),
	}
}

// NewCourts 创建编号 1..n 的空球场
func NewCourts(n int) []*Court {
	courts := make([]*Court, 0, n)
	for i := 1; i <= n; i++ {
		courts = append(courts, &Court{ID: i, Players: make([]*Player, 0)})
	}
	return courts
}

// Court 按编号查找球场
func (r *Roster) Court(id int) *Court {
	for _, c := range r.Courts {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// AllPlayers 等待队列和所有球场上的球员
func (r *Roster) AllPlayers() []*Player {
	all := make([]*Player, 0, len(r.Waiting))
	all = append(all, r.Waiting...)
	for _, c := range r.Courts {
		all = append(all, c.Players...)
	}
	return all
}

// Clone 深拷贝
func (r *Roster) Clone() *Roster {
	out := &Roster{
		NextID:  r.NextID,
		Waiting: clonePlayers(r.Waiting),
		Courts:  make([]*Court, 0, len(r.Courts)),
	}
	for _, c := range r.Courts {
		out.Courts = append(out.Courts, &Court{ID: c.ID, Players: clonePlayers(c.Players)})
	}
	return out
}

func clonePlayers(list []*Player) []*Player {
	out := make([]*Player, 0, len(list))
	for _, p := range list {
		out = append(out, p.Clone())
	}
	return out
}
