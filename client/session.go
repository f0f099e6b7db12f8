package client

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"pizzaroyal/game"
	"pizzaroyal/protocol"
)

const (
	// shadowRate 平滑位置每秒向真实位置收敛的速率
	shadowRate = 5.0
	// interactWindow “刚刚被使用”的动画窗口（秒）
	interactWindow = 0.5
)

// Session 一个玩家的客户端会话：本地权威地推进自己的玩家，
// 每帧与事件流对账，并维护表现层用的平滑位置
type Session struct {
	conn Connection
	log  *zap.SugaredLogger

	model  *game.Model  // 镜像世界（本地模式下也是独立副本）
	player *game.Player // 自己的玩家，物理以此为准
	toSend []game.Event

	t          float64
	shadows    map[game.ID]game.Vec2
	bossShadow game.Vec2
	interacted map[int]float64
	closed     bool
	connErr    error
}

// NewLocalSession 在本地世界中创建玩家并开始会话
func NewLocalSession(m *game.Model, name string, log *zap.SugaredLogger) *Session {
	w, _ := m.Welcome(name)
	return newSession(w, NewLocal(m), log)
}

// NewRemoteSession 使用服务端的欢迎快照开始会话
func NewRemoteSession(w *protocol.Welcome, t Transport, log *zap.SugaredLogger) (*Session, error) {
	if w == nil || w.Model == nil {
		return nil, fmt.Errorf("remote session: empty welcome")
	}
	if _, ok := w.Model.Players[w.PlayerID]; !ok {
		return nil, fmt.Errorf("remote session: welcome lacks player %d", w.PlayerID)
	}
	return newSession(*w, NewRemote(t), log), nil
}

func newSession(w game.Welcome, conn Connection, log *zap.SugaredLogger) *Session {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	s := &Session{
		conn:       conn,
		log:        log,
		model:      w.Model,
		player:     w.Model.Players[w.PlayerID].Clone(),
		shadows:    make(map[game.ID]game.Vec2),
		bossShadow: w.Model.Boss.Position,
		interacted: make(map[int]float64),
	}
	for id, p := range s.model.Players {
		s.shadows[id] = p.Position
	}
	return s
}

// Update 每帧调用一次：收消息、发送本地事件、折叠事件、推进自己的玩家并更新平滑位置
func (s *Session) Update(dt float64, input game.Vec2) error {
	if s.closed {
		return s.lost()
	}
	s.t += dt

	// 1. 收取新到达的事件
	var batches [][]game.Event
	switch c := s.conn.(type) {
	case *Local:
		batches = c.advance(dt)
	case *Remote:
		msgs, err := c.transport.Poll()
		for _, m := range msgs {
			if m.Type == protocol.TypeEvents {
				batches = append(batches, m.Events)
			}
		}
		if err != nil {
			return s.fail(err)
		}
	}

	// 2. 有消息到达时附带自己的完整状态
	outgoing := s.toSend
	s.toSend = nil
	if len(batches) > 0 {
		outgoing = append(outgoing, game.PlayerUpdated(s.player))
	}

	// 3. 发出本地事件
	for _, ev := range outgoing {
		switch c := s.conn.(type) {
		case *Local:
			batches = append(batches, c.model.ApplyClientMessage(s.player.ID, game.ClientMessage{Event: &ev}))
		case *Remote:
			if err := c.transport.Send(protocol.EventMessage(ev)); err != nil {
				return s.fail(err)
			}
		}
	}

	// 4. 折叠所有事件
	for _, batch := range batches {
		for _, ev := range batch {
			s.fold(ev)
		}
	}

	// 5. 推进物理与平滑位置
	s.model.Extrapolate(dt)
	s.toSend = append(s.toSend, s.model.StepPlayer(s.player, input, dt)...)
	s.updateShadows(dt)
	s.model.ApplyEvent(game.PlayerUpdated(s.player))
	return nil
}

// fold 先处理与自己相关的事件，再应用到镜像世界
func (s *Session) fold(ev game.Event) {
	switch ev.Type {
	case game.EventHire:
		if ev.ID == s.player.ID {
			s.player.UnemployedTime = nil
			if seat, ok := s.player.Seated(); ok {
				s.player.Seat = nil
				s.player.Velocity = game.Vec2{}
				s.player.Position = s.model.Seats[seat].LeavePosition
				s.toSend = append(s.toSend, game.Order(seat, nil))
			}
			s.log.Debugf("player %d hired", s.player.ID)
		}
	case game.EventFire:
		if ev.ID == s.player.ID {
			zero := 0.0
			s.player.UnemployedTime = &zero
			s.player.Pizza = nil
			s.log.Debugf("player %d fired", s.player.ID)
		}
	case game.EventInteracted:
		s.interacted[ev.Kitchen] = s.t
	}
	s.model.ApplyEvent(ev)
}

func (s *Session) updateShadows(dt float64) {
	rate := math.Min(dt*shadowRate, 1)
	for id := range s.shadows {
		if _, ok := s.model.Players[id]; !ok {
			delete(s.shadows, id)
		}
	}
	for id, p := range s.model.Players {
		pos := p.Position
		if id == s.player.ID {
			pos = s.player.Position
		}
		cur, ok := s.shadows[id]
		if !ok {
			s.shadows[id] = pos
			continue
		}
		s.shadows[id] = cur.Add(pos.Sub(cur).Scale(rate))
	}
	s.bossShadow = s.bossShadow.Add(s.model.Boss.Position.Sub(s.bossShadow).Scale(rate))
}

// PlaceOrder 坐着时下单，随下一帧发出
func (s *Session) PlaceOrder(order game.IngredientSet) bool {
	evs := s.model.PlaceOrder(s.player, order)
	s.toSend = append(s.toSend, evs...)
	return len(evs) > 0
}

// Close 结束会话。远程模式会先通知服务端自己离开
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	switch c := s.conn.(type) {
	case *Local:
		c.model.DropPlayer(s.player.ID)
		return nil
	case *Remote:
		sendErr := c.transport.Send(protocol.EventMessage(game.PlayerLeft(s.player.ID)))
		if err := c.transport.Close(); err != nil {
			return err
		}
		return sendErr
	}
	return nil
}

func (s *Session) fail(err error) error {
	s.closed = true
	s.connErr = err
	s.log.Warnf("session for player %d lost its connection: %v", s.player.ID, err)
	if r, ok := s.conn.(*Remote); ok {
		_ = r.transport.Close()
	}
	return s.lost()
}

func (s *Session) lost() error {
	if s.connErr != nil {
		return fmt.Errorf("%w: %v", ErrConnectionLost, s.connErr)
	}
	return ErrConnectionLost
}

// Connection 当前连接（*Local 或 *Remote）
func (s *Session) Connection() Connection { return s.conn }

// Player 自己玩家的副本
func (s *Session) Player() *game.Player { return s.player.Clone() }

// Model 镜像世界，只读
func (s *Session) Model() *game.Model { return s.model }

// Time 会话时钟（秒）
func (s *Session) Time() float64 { return s.t }

// ShadowPosition 平滑后的玩家位置
func (s *Session) ShadowPosition(id game.ID) (game.Vec2, bool) {
	p, ok := s.shadows[id]
	return p, ok
}

// BossPosition 平滑后的 Boss 位置
func (s *Session) BossPosition() game.Vec2 { return s.bossShadow }

// RecentlyInteracted 厨房设施是否刚被使用过
func (s *Session) RecentlyInteracted(kitchen int) bool {
	at, ok := s.interacted[kitchen]
	return ok && s.t-at < interactWindow
}
