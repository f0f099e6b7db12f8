package game

import "fmt"

// Color 仅供表现层使用的颜色
type Color struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
}

// Table 静态桌子（障碍物）
type Table struct {
	Position Vec2    `json:"position"`
	Radius   float64 `json:"radius"`
	Color    Color   `json:"color"`
}

// Seat 座位；Order 非 nil 表示有未完成的订单，完全由事件驱动
type Seat struct {
	Position      Vec2           `json:"position"`
	Radius        float64        `json:"radius"`
	Color         Color          `json:"color"`
	LeavePosition Vec2           `json:"leave_position"`
	Order         *IngredientSet `json:"order"`
}

// KitchenKind 厨房设施类型
type KitchenKind uint8

const (
	KitchenDough KitchenKind = iota
	KitchenIngredient
	KitchenOven
	KitchenTrash
	KitchenPlates
)

func (k KitchenKind) String() string {
	switch k {
	case KitchenDough:
		return "dough"
	case KitchenIngredient:
		return "ingredient"
	case KitchenOven:
		return "oven"
	case KitchenTrash:
		return "trash"
	case KitchenPlates:
		return "plates"
	default:
		return fmt.Sprintf("kitchen(%d)", uint8(k))
	}
}

// KitchenThing 厨房设施；Ingredient 仅在 Kind == KitchenIngredient 时有效
type KitchenThing struct {
	Kind       KitchenKind `json:"kind"`
	Ingredient Ingredient  `json:"ingredient,omitempty"`
	Position   Vec2        `json:"position"`
	Radius     float64     `json:"radius"`
}

func (k KitchenThing) String() string {
	if k.Kind == KitchenIngredient {
		return k.Ingredient.String() + " box"
	}
	return k.Kind.String()
}

// TargetKind Boss 目标类型
type TargetKind uint8

const (
	TargetWalk TargetKind = iota
	TargetFire
	TargetHire
)

func (k TargetKind) String() string {
	switch k {
	case TargetWalk:
		return "walk"
	case TargetFire:
		return "fire"
	case TargetHire:
		return "hire"
	default:
		return fmt.Sprintf("target(%d)", uint8(k))
	}
}

// BossTarget 标签联合：Walk 使用 Point，Fire/Hire 使用 Player
type BossTarget struct {
	Kind   TargetKind `json:"kind"`
	Point  Vec2       `json:"point"`
	Player ID         `json:"player,omitempty"`
}

func WalkTo(p Vec2) BossTarget   { return BossTarget{Kind: TargetWalk, Point: p} }
func FireTarget(id ID) BossTarget { return BossTarget{Kind: TargetFire, Player: id} }
func HireTarget(id ID) BossTarget { return BossTarget{Kind: TargetHire, Player: id} }

func (t BossTarget) String() string {
	if t.Kind == TargetWalk {
		return fmt.Sprintf("walk(%.2f,%.2f)", t.Point.X, t.Point.Y)
	}
	return fmt.Sprintf("%s(%d)", t.Kind, t.Player)
}

// Boss 唯一的 NPC；Timer 为距上次雇佣/解雇的秒数
type Boss struct {
	Position Vec2       `json:"position"`
	Radius   float64    `json:"radius"`
	Target   BossTarget `json:"target"`
	Timer    float64    `json:"timer"`
}

// FireCountdown 距下一次可能解雇的剩余秒数（不小于 0）
func (b Boss) FireCountdown(t Tuning) float64 {
	left := t.FireTimer - b.Timer
	if left < 0 {
		return 0
	}
	return left
}

// speed 行走慢、去雇佣/解雇时跑步
func (b Boss) speed(t Tuning) float64 {
	if b.Target.Kind == TargetWalk {
		return t.BossWalkSpeed
	}
	return t.BossRunSpeed
}
