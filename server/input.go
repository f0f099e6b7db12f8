package server

import (
	"pizzaroyal/game"
	"pizzaroyal/protocol"
)

// Join 新连接请求加入房间，由 Tick 线程分配玩家并回复
type Join struct {
	Name    string
	Session string
	Codec   protocol.Codec
	Conn    Conn
	Reply   chan game.ID
}

// Input 客户端上行消息（已解码），在 Tick 线程中应用到世界
type Input struct {
	PlayerID game.ID
	Msg      protocol.ClientMessage
}

// RoomConfig 可在运行期热更新的房间规则
type RoomConfig struct {
	MaxInputsPerTick *int     `json:"max_inputs_per_tick,omitempty"`
	FireTimer        *float64 `json:"fire_timer,omitempty"`
	BossWalkSpeed    *float64 `json:"boss_walk_speed,omitempty"`
	BossRunSpeed     *float64 `json:"boss_run_speed,omitempty"`
}
