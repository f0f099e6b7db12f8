package game

// StepPlayer 本地玩家的逐帧推进（客户端对自身实体有物理权威）：
// 失业计时、座位固定/离座、移动、与座位/桌子/厨房的碰撞与交互。
// p 是调用方持有的本地副本，不会写入 m；返回需要发送给权威端的事件
func (m *Model) StepPlayer(p *Player, input Vec2, dt float64) []Event {
	var out []Event
	p.tickUnemployed(dt)
	p.TargetVelocity = Vec2{}

	vacated := -1
	if seat, ok := p.Seated(); ok {
		if input.Len() <= m.Tuning.InputDeadzone {
			p.Velocity = Vec2{}
			p.Position = m.Seats[seat].Position
			return out
		}
		// 有移动输入：离座；同一帧内不会再坐回这个座位
		out = append(out, m.LeaveSeat(p)...)
		vacated = seat
	}

	p.SetInput(input, m.Tuning.InputDeadzone)
	p.Update(dt, m.Bounds, m.Tuning)

	for i := range m.Seats {
		if !p.Collide(m.Seats[i].Position, m.Seats[i].Radius) || i == vacated {
			continue
		}
		out = append(out, m.arriveAtSeat(p, i)...)
	}
	for _, t := range m.Tables {
		p.Collide(t.Position, t.Radius)
	}
	for i, k := range m.Kitchen {
		if !p.Collide(k.Position, k.Radius) {
			continue
		}
		if p.Employed() && useKitchen(p, k) {
			out = append(out, Interacted(i))
		}
	}

	if !p.Employed() {
		p.Pizza = nil
	}
	return out
}

// arriveAtSeat 失业者入座（座位空闲时）；在职者送上匹配的披萨完成订单。
// 入座只占用座位，不会因此被雇用：雇用只来自 Boss 的 hire 事件
func (m *Model) arriveAtSeat(p *Player, seat int) []Event {
	if !p.Employed() {
		if _, taken := m.occupantOtherThan(seat, p.ID); taken {
			return nil
		}
		if _, ok := p.Seated(); ok {
			return nil
		}
		p.Seat = intPtr(seat)
		p.Velocity = Vec2{}
		p.Position = m.Seats[seat].Position
		return nil
	}
	order := m.Seats[seat].Order
	if order == nil || p.Pizza == nil || !p.Pizza.Matches(*order) {
		return nil
	}
	p.Pizza = nil
	p.Score++
	return []Event{Order(seat, nil)}
}

func (m *Model) occupantOtherThan(seat int, self ID) (ID, bool) {
	for _, id := range m.PlayerIDs() {
		if id == self {
			continue
		}
		if s, ok := m.Players[id].Seated(); ok && s == seat {
			return id, true
		}
	}
	return 0, false
}

// useKitchen 按手上披萨状态触发设施；返回是否真的发生了交互
func useKitchen(p *Player, k KitchenThing) bool {
	switch k.Kind {
	case KitchenDough:
		if p.Pizza != nil {
			return false
		}
		p.Pizza = &Pizza{State: PizzaRaw}
		return true
	case KitchenIngredient:
		if p.Pizza == nil || p.Pizza.State != PizzaRaw || p.Pizza.Ingredients.Has(k.Ingredient) {
			return false
		}
		p.Pizza.Ingredients = p.Pizza.Ingredients.With(k.Ingredient)
		return true
	case KitchenOven:
		if p.Pizza == nil || p.Pizza.State != PizzaRaw {
			return false
		}
		p.Pizza.State = PizzaCooked
		return true
	case KitchenPlates:
		if p.Pizza == nil || p.Pizza.State != PizzaCooked {
			return false
		}
		p.Pizza.State = PizzaPlated
		return true
	case KitchenTrash:
		if p.Pizza == nil {
			return false
		}
		p.Pizza = nil
		return true
	}
	return false
}

// LeaveSeat 离座：回到座位的离开点，并清空该座位订单
func (m *Model) LeaveSeat(p *Player) []Event {
	seat, ok := p.Seated()
	if !ok {
		return nil
	}
	p.Seat = nil
	p.Velocity = Vec2{}
	p.Position = m.Seats[seat].LeavePosition
	return []Event{Order(seat, nil)}
}

// PlaceOrder 坐着的顾客下单（座位无未完成订单、配料非空）
func (m *Model) PlaceOrder(p *Player, order IngredientSet) []Event {
	seat, ok := p.Seated()
	if !ok || order.Empty() || m.Seats[seat].Order != nil {
		return nil
	}
	return []Event{Order(seat, &order)}
}
