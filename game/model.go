package game

import (
	"math/rand"
	"sort"
)

// Model 权威世界：唯一所有者持有全部实体。桌椅、厨房、寻路图构建后只读；
// 玩家与 Boss 只通过 ApplyEvent 修改
type Model struct {
	IDGen   IDGen          `json:"id_gen"`
	Tuning  Tuning         `json:"tuning"`
	Bounds  Rect           `json:"bounds"`
	Spawn   Vec2           `json:"spawn"`
	Players map[ID]*Player `json:"players"`
	Tables  []Table        `json:"tables"`
	Seats   []Seat         `json:"seats"`
	Kitchen []KitchenThing `json:"kitchen"`
	Boss    Boss           `json:"boss"`
	Nav     NavGraph       `json:"nav"`

	rng *rand.Rand
}

// Welcome 欢迎握手：新玩家 id + 世界完整副本（唯一的整包传输）
type Welcome struct {
	PlayerID ID     `json:"player_id"`
	Model    *Model `json:"model"`
}

// ClientMessage 客户端 → 权威端：目前只有“应用这个事件”
type ClientMessage struct {
	Event *Event `json:"event"`
}

// New 构建默认餐厅布局与寻路图
func New(t Tuning) *Model {
	return NewWithLayout(t, DefaultLayout())
}

// NewWithLayout 使用指定布局构建世界（测试可传入简化布局）
func NewWithLayout(t Tuning, l Layout) *Model {
	m := &Model{
		Tuning:  t,
		Bounds:  l.Bounds,
		Spawn:   l.Spawn,
		Players: make(map[ID]*Player),
		Tables:  l.Tables,
		Seats:   l.Seats,
		Kitchen: l.Kitchen,
		Boss: Boss{
			Position: l.BossStart,
			Radius:   t.BossRadius,
			Target:   WalkTo(l.BossStart),
		},
	}
	m.Nav = BuildNavGraph(l.Bounds, t.NavStep, m.obstacles(), t.NavMargin, t.NavLink)
	m.rng = rand.New(rand.NewSource(t.Seed))
	return m
}

// obstacles 参与建图的静态障碍：桌子与厨房设施（座位需要可达，不算）
func (m *Model) obstacles() []Obstacle {
	out := make([]Obstacle, 0, len(m.Tables)+len(m.Kitchen))
	for _, t := range m.Tables {
		out = append(out, Obstacle{Position: t.Position, Radius: t.Radius})
	}
	for _, k := range m.Kitchen {
		out = append(out, Obstacle{Position: k.Position, Radius: k.Radius})
	}
	return out
}

// Reseed 重置 Tick 使用的随机源
func (m *Model) Reseed(seed int64) {
	m.rng = rand.New(rand.NewSource(seed))
}

func (m *Model) random() *rand.Rand {
	if m.rng == nil {
		m.rng = rand.New(rand.NewSource(m.Tuning.Seed))
	}
	return m.rng
}

// Clone 深拷贝可变状态；静态几何与寻路图共享
func (m *Model) Clone() *Model {
	c := *m
	c.Players = make(map[ID]*Player, len(m.Players))
	for id, p := range m.Players {
		c.Players[id] = p.Clone()
	}
	c.Seats = make([]Seat, len(m.Seats))
	copy(c.Seats, m.Seats)
	for i := range c.Seats {
		if o := c.Seats[i].Order; o != nil {
			v := *o
			c.Seats[i].Order = &v
		}
	}
	c.rng = nil
	return &c
}

// PlayerIDs 升序 id，所有需要确定性遍历的地方都用它
func (m *Model) PlayerIDs() []ID {
	ids := make([]ID, 0, len(m.Players))
	for id := range m.Players {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// SeatOccupant 返回坐在该座位上的玩家
func (m *Model) SeatOccupant(seat int) (ID, bool) {
	for _, id := range m.PlayerIDs() {
		if s, ok := m.Players[id].Seated(); ok && s == seat {
			return id, true
		}
	}
	return 0, false
}

// SpawnPlayer 在出生点创建新玩家（初始为失业状态）
func (m *Model) SpawnPlayer(name string) (ID, []Event) {
	p := &Player{
		ID:             m.IDGen.Gen(),
		Name:           name,
		Radius:         m.Tuning.PlayerRadius,
		Position:       m.Spawn,
		UnemployedTime: floatPtr(0),
	}
	ev := PlayerJoined(p)
	m.ApplyEvent(ev)
	return p.ID, []Event{ev}
}

// Welcome 创建玩家并返回握手快照
func (m *Model) Welcome(name string) (Welcome, []Event) {
	id, events := m.SpawnPlayer(name)
	return Welcome{PlayerID: id, Model: m.Clone()}, events
}

// DropPlayer 移除玩家
func (m *Model) DropPlayer(id ID) []Event {
	ev := PlayerLeft(id)
	m.ApplyEvent(ev)
	return []Event{ev}
}

// ApplyClientMessage 玩家发起变更的唯一入口；原事件会回显给所有人（包括发送者）
func (m *Model) ApplyClientMessage(sender ID, msg ClientMessage) []Event {
	if msg.Event == nil {
		return nil
	}
	ev := *msg.Event
	m.ApplyEvent(ev)
	return []Event{ev}
}

// ApplyEvent 把一个事件折叠进状态。重复应用同一事件结果不变；同一实体后到者覆盖
func (m *Model) ApplyEvent(ev Event) {
	switch ev.Type {
	case EventPlayerJoined, EventPlayerUpdated:
		if ev.Player == nil {
			return
		}
		m.Players[ev.Player.ID] = ev.Player.Clone()
	case EventPlayerLeft:
		delete(m.Players, ev.ID)
	case EventOrder:
		seat := &m.Seats[ev.Seat]
		if ev.Order == nil {
			seat.Order = nil
		} else {
			o := *ev.Order
			seat.Order = &o
		}
	case EventBossUpdate:
		if ev.Boss != nil {
			m.Boss = *ev.Boss
		}
	case EventHire:
		p, ok := m.Players[ev.ID]
		if !ok {
			return
		}
		p.UnemployedTime = nil
		if seat, ok := p.Seated(); ok {
			p.Seat = nil
			p.Position = m.Seats[seat].LeavePosition
			p.Velocity = Vec2{}
		}
	case EventFire:
		p, ok := m.Players[ev.ID]
		if !ok {
			return
		}
		p.UnemployedTime = floatPtr(0)
		p.Pizza = nil
	case EventReset:
		m.Boss.Timer = 0
	case EventInteracted:
		// 仅供表现层动画
	default:
		// 未知事件：前向兼容，忽略
	}
}

// Extrapolate 镜像端在两次权威更新之间按最后已知速度推算其他玩家位置
func (m *Model) Extrapolate(dt float64) {
	for _, id := range m.PlayerIDs() {
		p := m.Players[id]
		if seat, ok := p.Seated(); ok {
			p.Velocity = Vec2{}
			p.Position = m.Seats[seat].Position
			continue
		}
		p.Update(dt, m.Bounds, m.Tuning)
	}
}
