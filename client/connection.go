package client

import (
	"errors"

	"pizzaroyal/game"
	"pizzaroyal/protocol"
)

// ErrConnectionLost 连接断开，会话随之终止
var ErrConnectionLost = errors.New("client: connection lost")

// Connection 会话的连接方式，只有 *Local 与 *Remote 两种，调用处用 type switch 穷举
type Connection interface {
	connection()
}

// Local 本地模式：进程内持有权威世界，并用固定步长累加器推进
type Local struct {
	model    *game.Model
	nextTick float64
	ticks    uint64
}

func NewLocal(m *game.Model) *Local {
	return &Local{model: m}
}

// Model 本地权威世界
func (l *Local) Model() *game.Model { return l.model }

// Ticks 已推进的固定步数
func (l *Local) Ticks() uint64 { return l.ticks }

// advance 扣除本帧耗时，剩余量不为正时推进一步并补回一个周期
func (l *Local) advance(dt float64) [][]game.Event {
	var batches [][]game.Event
	l.nextTick -= dt
	for l.nextTick <= 0 {
		batches = append(batches, l.model.Tick())
		l.ticks++
		l.nextTick += l.model.Tuning.TickDuration()
	}
	return batches
}

// Remote 远程模式：世界在服务端，只持有传输句柄
type Remote struct {
	transport Transport
}

func NewRemote(t Transport) *Remote {
	return &Remote{transport: t}
}

func (*Local) connection()  {}
func (*Remote) connection() {}

// Transport 已排好序的消息流。Poll 不阻塞，返回自上次以来到达的全部消息
type Transport interface {
	Send(msg protocol.ClientMessage) error
	Poll() ([]protocol.ServerMessage, error)
	Close() error
}
