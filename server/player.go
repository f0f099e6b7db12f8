package server

import (
	"errors"

	"pizzaroyal/game"
	"pizzaroyal/protocol"
)

var errSendQueueFull = errors.New("send queue full")

// Conn 房间向客户端发送数据的出口（ClientConn 或测试替身）
type Conn interface {
	Send(frame []byte) error
	Close() error
}

// Member 房间内的一个连接：对应世界中的一名玩家
type Member struct {
	ID      game.ID
	Name    string
	Session string // 连接会话 id，仅用于日志关联
	Codec   protocol.Codec
	Conn    Conn
}

// MemberState 管理接口输出的成员信息
type MemberState struct {
	ID       game.ID   `json:"id"`
	Name     string    `json:"name"`
	Session  string    `json:"session"`
	Codec    string    `json:"codec"`
	Score    int       `json:"score"`
	Employed bool      `json:"employed"`
	Seat     *int      `json:"seat,omitempty"`
	Position game.Vec2 `json:"position"`
}
