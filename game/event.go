package game

import "fmt"

// EventType 事件种类（封闭集合；未知类型在应用时忽略）
type EventType string

const (
	EventPlayerJoined  EventType = "player_joined"
	EventPlayerUpdated EventType = "player_updated"
	EventPlayerLeft    EventType = "player_left"
	EventOrder         EventType = "order"
	EventBossUpdate    EventType = "boss_update"
	EventHire          EventType = "hire"
	EventFire          EventType = "fire"
	EventReset         EventType = "reset"
	EventInteracted    EventType = "interacted"
)

// Event 世界状态的唯一变更通道。按 Type 使用对应字段：
//
//	player_joined / player_updated: Player（整份替换）
//	player_left / hire / fire:      ID
//	order:                          Seat + Order（nil 即清空）
//	boss_update:                    Boss（整份快照）
//	interacted:                     Kitchen（设施下标，仅用于动画）
type Event struct {
	Type    EventType      `json:"type"`
	Player  *Player        `json:"player,omitempty"`
	ID      ID             `json:"id,omitempty"`
	Seat    int            `json:"seat,omitempty"`
	Order   *IngredientSet `json:"order,omitempty"`
	Boss    *Boss          `json:"boss,omitempty"`
	Kitchen int            `json:"kitchen,omitempty"`
}

func PlayerJoined(p *Player) Event  { return Event{Type: EventPlayerJoined, Player: p.Clone()} }
func PlayerUpdated(p *Player) Event { return Event{Type: EventPlayerUpdated, Player: p.Clone()} }
func PlayerLeft(id ID) Event        { return Event{Type: EventPlayerLeft, ID: id} }
func Hire(id ID) Event              { return Event{Type: EventHire, ID: id} }
func Fire(id ID) Event              { return Event{Type: EventFire, ID: id} }
func Reset() Event                  { return Event{Type: EventReset} }
func Interacted(kitchen int) Event  { return Event{Type: EventInteracted, Kitchen: kitchen} }

// Order 设置（order 非 nil）或清空座位订单
func Order(seat int, order *IngredientSet) Event {
	ev := Event{Type: EventOrder, Seat: seat}
	if order != nil {
		o := *order
		ev.Order = &o
	}
	return ev
}

func BossUpdate(b Boss) Event { return Event{Type: EventBossUpdate, Boss: &b} }

// Subject 事件涉及的玩家（若有）
func (e Event) Subject() (ID, bool) {
	switch e.Type {
	case EventPlayerJoined, EventPlayerUpdated:
		if e.Player != nil {
			return e.Player.ID, true
		}
	case EventPlayerLeft, EventHire, EventFire:
		return e.ID, true
	}
	return 0, false
}

func (e Event) String() string {
	switch e.Type {
	case EventPlayerJoined, EventPlayerUpdated:
		if e.Player != nil {
			return fmt.Sprintf("%s(%d)", e.Type, e.Player.ID)
		}
	case EventPlayerLeft, EventHire, EventFire:
		return fmt.Sprintf("%s(%d)", e.Type, e.ID)
	case EventOrder:
		if e.Order == nil {
			return fmt.Sprintf("order(%d, none)", e.Seat)
		}
		return fmt.Sprintf("order(%d, %s)", e.Seat, e.Order)
	case EventBossUpdate:
		if e.Boss != nil {
			return fmt.Sprintf("boss_update(%s)", e.Boss.Target)
		}
	case EventInteracted:
		return fmt.Sprintf("interacted(%d)", e.Kitchen)
	}
	return string(e.Type)
}
