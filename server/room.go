package server

import (
	"sort"
	"sync"
	"sync/atomic"

	"pizzaroyal/game"
	"pizzaroyal/journal"
	"pizzaroyal/protocol"
)

// Room 房间世界：权威状态维护在内存，单线程 Tick 推进。
// 世界只在 Tick 协程中被修改，其他协程通过通道与其交互
type Room struct {
	ID string

	model   *game.Model
	members map[game.ID]*Member

	joinChan   chan Join
	inputChan  chan Input
	leaveChan  chan game.ID
	configChan chan RoomConfig

	metrics *RoomMetrics
	journal journal.Recorder

	maxInputsPerTick int
	tickSeq          atomic.Uint64
	state            atomic.Pointer[RoomState]

	tickerStarted bool
	stop          chan struct{}
	done          chan struct{}
	stopOnce      sync.Once
}

// RoomState Tick 线程发布的只读摘要，供管理接口读取
type RoomState struct {
	Room             string         `json:"room"`
	Tick             uint64         `json:"tick"`
	Members          []MemberState  `json:"members"`
	Boss             game.Boss      `json:"boss"`
	NextFire         float64        `json:"next_fire"`
	Orders           map[int]string `json:"orders"`
	Tuning           game.Tuning    `json:"tuning"`
	MaxInputsPerTick int            `json:"max_inputs_per_tick"`
}

// NewRoom 创建房间，初始化世界与通道
func NewRoom(id string, tuning game.Tuning, rec journal.Recorder) *Room {
	if rec == nil {
		rec = journal.Nop()
	}
	r := &Room{
		ID:               id,
		model:            game.New(tuning),
		members:          make(map[game.ID]*Member),
		joinChan:         make(chan Join, 16),
		inputChan:        make(chan Input, 256), // 足够缓冲，避免网络读阻塞影响 Tick
		leaveChan:        make(chan game.ID, 64),
		configChan:       make(chan RoomConfig, 4),
		metrics:          &RoomMetrics{},
		journal:          rec,
		maxInputsPerTick: 128,
		stop:             make(chan struct{}),
		done:             make(chan struct{}),
	}
	r.publish()
	return r
}

// Metrics 房间运行指标
func (r *Room) Metrics() *RoomMetrics { return r.metrics }

// State 最近一次发布的摘要
func (r *Room) State() *RoomState { return r.state.Load() }

// RequestJoin 请求加入；阻塞到 Tick 线程分配出玩家 id，房间已停止时返回 false
func (r *Room) RequestJoin(j Join) (game.ID, bool) {
	if j.Reply == nil {
		j.Reply = make(chan game.ID, 1)
	}
	select {
	case r.joinChan <- j:
	case <-r.done:
		return 0, false
	}
	select {
	case id, ok := <-j.Reply:
		return id, ok
	case <-r.done:
		return 0, false
	}
}

// OnInput 入站消息（不立即改变世界），等下一次 Tick 处理
func (r *Room) OnInput(in Input) {
	// 不阻塞：拥塞时丢弃，保证 Tick 准时
	select {
	case r.inputChan <- in:
	default:
		r.metrics.IncChanFullDiscarded()
	}
}

// RequestLeave 请求在 Tick 线程中移除玩家，避免并发改动房间状态
func (r *Room) RequestLeave(id game.ID) {
	select {
	case r.leaveChan <- id:
	case <-r.done:
	}
}

// UpdateConfig 热更新规则，下一次 Tick 生效
func (r *Room) UpdateConfig(c RoomConfig) {
	select {
	case r.configChan <- c:
	case <-r.done:
	}
}

// ProcessInbound 处理当前帧积压的配置、离开、加入与输入（非阻塞 drain）
func (r *Room) ProcessInbound() {
	for {
		select {
		case c := <-r.configChan:
			r.applyConfig(c)
		case id := <-r.leaveChan:
			r.leave(id)
		case j := <-r.joinChan:
			r.join(j)
		default:
			r.processInputs()
			return
		}
	}
}

// processInputs 每个 Tick 最多处理 maxInputsPerTick 条，其余留到下一帧
func (r *Room) processInputs() {
	for n := 0; n < r.maxInputsPerTick; n++ {
		select {
		case in := <-r.inputChan:
			r.apply(in)
		default:
			return
		}
	}
	if len(r.inputChan) > 0 {
		r.metrics.IncRateLimited()
	}
}

func (r *Room) join(j Join) {
	w, events := r.model.Welcome(j.Name)
	m := &Member{ID: w.PlayerID, Name: j.Name, Session: j.Session, Codec: j.Codec, Conn: j.Conn}
	if m.Codec == nil {
		m.Codec = protocol.JSON
	}
	// 欢迎消息必须是该连接收到的第一条
	b, err := m.Codec.Marshal(protocol.WelcomeMessage(w))
	if err != nil {
		Log.Errorf("room=%s encode welcome for %d: %v", r.ID, m.ID, err)
		r.model.DropPlayer(m.ID)
		close(j.Reply)
		return
	}
	r.members[m.ID] = m
	r.send(m, b)
	r.metrics.IncJoined()
	j.Reply <- m.ID
	Log.Infof("room=%s player %d (%s) joined session=%s codec=%s", r.ID, m.ID, m.Name, m.Session, m.Codec.Name())
	r.broadcastExcept(events, m.ID)
}

func (r *Room) leave(id game.ID) {
	m, ok := r.members[id]
	if !ok {
		return
	}
	delete(r.members, id)
	if m.Conn != nil {
		_ = m.Conn.Close()
	}
	r.metrics.IncLeft()
	Log.Infof("room=%s player %d left session=%s", r.ID, id, m.Session)
	r.broadcast(r.model.DropPlayer(id))
}

// apply 玩家消息进入世界，回显给所有人（包括发送者）
func (r *Room) apply(in Input) {
	if _, ok := r.members[in.PlayerID]; !ok {
		return
	}
	if !r.acceptable(in.Msg.Event) {
		r.metrics.IncRejected()
		Log.Warnf("room=%s reject %v from %d", r.ID, in.Msg.Event, in.PlayerID)
		return
	}
	r.metrics.IncAccepted()
	r.broadcast(r.model.ApplyClientMessage(in.PlayerID, in.Msg.Game()))
}

// acceptable 下标越界的事件会让世界 panic，在入口处拦下
func (r *Room) acceptable(ev *game.Event) bool {
	if ev == nil {
		return false
	}
	switch ev.Type {
	case game.EventOrder:
		return ev.Seat >= 0 && ev.Seat < len(r.model.Seats)
	case game.EventInteracted:
		return ev.Kitchen >= 0 && ev.Kitchen < len(r.model.Kitchen)
	case game.EventPlayerJoined, game.EventPlayerUpdated:
		return ev.Player != nil
	}
	return true
}

// UpdateWorld 推进一步世界（Boss 等服务端逻辑）
func (r *Room) UpdateWorld() {
	r.broadcast(r.model.Tick())
}

// broadcast 一批事件发给所有成员
func (r *Room) broadcast(events []game.Event) {
	r.deliver(events, nil)
}

// broadcastExcept 发给除 except 以外的成员（新玩家已在欢迎快照中看到自己）
func (r *Room) broadcastExcept(events []game.Event, except game.ID) {
	r.deliver(events, &except)
}

// deliver 记录流水并分发；except 为 nil 表示不排除任何人。同一编码只序列化一次
func (r *Room) deliver(events []game.Event, except *game.ID) {
	if len(events) == 0 {
		return
	}
	r.metrics.AddEvents(len(events))
	if err := r.journal.Record(journal.NewEntry(r.ID, r.tickSeq.Load(), events)); err != nil {
		Log.Warnf("room=%s journal: %v", r.ID, err)
	}
	msg := protocol.EventsMessage(events)
	encoded := make(map[string][]byte, 2)
	for _, id := range r.memberIDs() {
		if except != nil && id == *except {
			continue
		}
		m := r.members[id]
		b, ok := encoded[m.Codec.Name()]
		if !ok {
			var err error
			b, err = m.Codec.Marshal(msg)
			if err != nil {
				Log.Errorf("room=%s encode %s batch: %v", r.ID, m.Codec.Name(), err)
				continue
			}
			encoded[m.Codec.Name()] = b
		}
		r.send(m, b)
	}
}

func (r *Room) send(m *Member, b []byte) {
	if m.Conn == nil {
		return
	}
	if err := m.Conn.Send(b); err != nil {
		r.metrics.IncSendDropped()
	}
}

func (r *Room) applyConfig(c RoomConfig) {
	if c.MaxInputsPerTick != nil && *c.MaxInputsPerTick > 0 {
		r.maxInputsPerTick = *c.MaxInputsPerTick
	}
	if c.FireTimer != nil && *c.FireTimer > 0 {
		r.model.Tuning.FireTimer = *c.FireTimer
	}
	if c.BossWalkSpeed != nil && *c.BossWalkSpeed > 0 {
		r.model.Tuning.BossWalkSpeed = *c.BossWalkSpeed
	}
	if c.BossRunSpeed != nil && *c.BossRunSpeed > 0 {
		r.model.Tuning.BossRunSpeed = *c.BossRunSpeed
	}
	Log.Infof("config updated: room=%s maxInputsPerTick=%d fireTimer=%.1f walk=%.2f run=%.2f",
		r.ID, r.maxInputsPerTick, r.model.Tuning.FireTimer, r.model.Tuning.BossWalkSpeed, r.model.Tuning.BossRunSpeed)
}

func (r *Room) memberIDs() []game.ID {
	ids := make([]game.ID, 0, len(r.members))
	for id := range r.members {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// publish 生成只读摘要
func (r *Room) publish() {
	st := &RoomState{
		Room:             r.ID,
		Tick:             r.tickSeq.Load(),
		Boss:             r.model.Boss,
		NextFire:         r.model.Boss.FireCountdown(r.model.Tuning),
		Orders:           make(map[int]string),
		Tuning:           r.model.Tuning,
		MaxInputsPerTick: r.maxInputsPerTick,
	}
	for _, id := range r.memberIDs() {
		m := r.members[id]
		ms := MemberState{ID: id, Name: m.Name, Session: m.Session, Codec: m.Codec.Name()}
		if p, ok := r.model.Players[id]; ok {
			ms.Score = p.Score
			ms.Employed = p.Employed()
			if seat, ok := p.Seated(); ok {
				ms.Seat = &seat
			}
			ms.Position = p.Position
		}
		st.Members = append(st.Members, ms)
	}
	for i, s := range r.model.Seats {
		if s.Order != nil {
			st.Orders[i] = s.Order.String()
		}
	}
	r.state.Store(st)
}
