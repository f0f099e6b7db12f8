package game

// Layout 静态关卡几何
type Layout struct {
	Bounds    Rect
	Spawn     Vec2
	BossStart Vec2
	Tables    []Table
	Seats     []Seat
	Kitchen   []KitchenThing
}

const (
	tableRadius   = 0.9
	seatRadius    = 0.45
	seatOffset    = 1.4
	kitchenRadius = 0.6
)

// DefaultLayout 左侧厨房、右侧三张双人桌（座位 0..5）
func DefaultLayout() Layout {
	l := Layout{
		Bounds:    Rect{Min: V(-12, -6), Max: V(8, 6)},
		Spawn:     V(-3, 0),
		BossStart: V(-1, 0),
	}
	palette := []Color{
		{R: 0.85, G: 0.55, B: 0.35},
		{R: 0.55, G: 0.75, B: 0.45},
		{R: 0.45, G: 0.6, B: 0.85},
	}
	for i, pos := range []Vec2{V(2, 3), V(2, -3), V(6, 0)} {
		color := palette[i%len(palette)]
		l.Tables = append(l.Tables, Table{Position: pos, Radius: tableRadius, Color: color})
		// 顶部的桌子向下离座，底部的向上，中间的向上
		leave := V(0, -1)
		if pos.Y <= 0 {
			leave = V(0, 1)
		}
		for _, side := range []float64{-1, 1} {
			seatPos := pos.Add(V(side*seatOffset, 0))
			l.Seats = append(l.Seats, Seat{
				Position:      seatPos,
				Radius:        seatRadius,
				Color:         color,
				LeavePosition: seatPos.Add(leave),
			})
		}
	}
	l.Kitchen = []KitchenThing{
		{Kind: KitchenDough, Position: V(-10.5, 4.5)},
		{Kind: KitchenIngredient, Ingredient: Cheese, Position: V(-10.5, 2)},
		{Kind: KitchenIngredient, Ingredient: Tomato, Position: V(-10.5, -0.5)},
		{Kind: KitchenIngredient, Ingredient: Cucumber, Position: V(-10.5, -3)},
		{Kind: KitchenIngredient, Ingredient: Pepperoni, Position: V(-8, -4.8)},
		{Kind: KitchenOven, Position: V(-5.5, 4.5)},
		{Kind: KitchenPlates, Position: V(-5.5, -4.8)},
		{Kind: KitchenTrash, Position: V(-8, 4.8)},
	}
	for i := range l.Kitchen {
		l.Kitchen[i].Radius = kitchenRadius
	}
	return l
}
