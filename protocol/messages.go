package protocol

import "pizzaroyal/game"

// Version 协议版本，随欢迎消息下发
const Version = "1.0"

// 消息类型
const (
	TypeWelcome = "welcome" // 服务端 → 客户端：握手快照（每个连接仅一次）
	TypeEvents  = "events"  // 服务端 → 客户端：一批事件
	TypeEvent   = "event"   // 客户端 → 服务端：请求应用一个事件
)

// Welcome 与世界模型共享的握手结构
type Welcome = game.Welcome

// ServerMessage 服务端下行消息
type ServerMessage struct {
	Type    string        `json:"type"`
	Version string        `json:"version,omitempty"`
	Welcome *game.Welcome `json:"welcome,omitempty"`
	Events  []game.Event  `json:"events,omitempty"`
}

// ClientMessage 客户端上行消息
type ClientMessage struct {
	Type  string      `json:"type"`
	Event *game.Event `json:"event,omitempty"`
}

func WelcomeMessage(w game.Welcome) ServerMessage {
	return ServerMessage{Type: TypeWelcome, Version: Version, Welcome: &w}
}

func EventsMessage(events []game.Event) ServerMessage {
	return ServerMessage{Type: TypeEvents, Events: events}
}

func EventMessage(ev game.Event) ClientMessage {
	return ClientMessage{Type: TypeEvent, Event: &ev}
}

// Game 转成世界模型的入口消息
func (m ClientMessage) Game() game.ClientMessage {
	return game.ClientMessage{Event: m.Event}
}
