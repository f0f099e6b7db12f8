package game

// Tick 推进一个固定步长的服务端逻辑（目前只有 Boss）。无玩家时不做任何事
func (m *Model) Tick() []Event {
	if len(m.Players) == 0 {
		return nil
	}
	dt := m.Tuning.TickDuration()
	// 在副本上计算，最后统一通过 BossUpdate 写回
	next := m.Boss
	next.Timer += dt

	var events []Event
	current, okCur := m.Nav.Nearest(next.Position)
	goal, okGoal := m.targetPosition(next.Target)
	target := -1
	if okGoal {
		target, okGoal = m.Nav.Nearest(goal)
	}

	switch {
	case !okCur || !okGoal:
		// 空图或目标玩家已离开：原地停下，下次评估重新选目标
		next.Target = WalkTo(next.Position)
	case current == target:
		events = append(events, m.chooseTarget(&next)...)
	default:
		hop, ok := m.Nav.NextHop(current, target)
		if !ok {
			next.Target = WalkTo(next.Position)
			break
		}
		step := next.speed(m.Tuning) * dt
		next.Position = next.Position.Add(m.Nav.Nodes[hop].Sub(next.Position).ClampLen(step))
	}

	update := BossUpdate(next)
	m.ApplyEvent(update)
	return append(events, update)
}

// targetPosition 解析目标的世界坐标；Fire/Hire 的玩家不存在时返回 false
func (m *Model) targetPosition(t BossTarget) (Vec2, bool) {
	if t.Kind == TargetWalk {
		return t.Point, true
	}
	p, ok := m.Players[t.Player]
	if !ok {
		return Vec2{}, false
	}
	return p.Position, true
}

// chooseTarget 到达目标节点后的决策
func (m *Model) chooseTarget(b *Boss) []Event {
	t := b.Target
	if t.Kind == TargetFire || t.Kind == TargetHire {
		action := Hire(t.Player)
		if t.Kind == TargetFire {
			action = Fire(t.Player)
		}
		events := []Event{Reset(), action}
		for _, ev := range events {
			m.ApplyEvent(ev)
		}
		b.Timer = 0
		b.Target = WalkTo(b.Position)
		return events
	}
	b.Target = m.nextGoal(*b)
	return nil
}

// nextGoal 雇佣/解雇/闲逛策略
func (m *Model) nextGoal(b Boss) BossTarget {
	ids := m.PlayerIDs()
	var employees, unemployed []*Player
	for _, id := range ids {
		p := m.Players[id]
		if p.Employed() {
			employees = append(employees, p)
		} else {
			unemployed = append(unemployed, p)
		}
	}

	if len(employees) < m.maxEmployees() {
		var pick *Player
		for _, p := range unemployed {
			if pick == nil || *p.UnemployedTime > *pick.UnemployedTime {
				pick = p
			}
		}
		if pick != nil {
			return HireTarget(pick.ID)
		}
	} else if b.Timer > m.Tuning.FireTimer && len(employees) > 0 && len(ids) >= 2 {
		var pick *Player
		for _, p := range employees {
			if pick == nil || p.Score < pick.Score {
				pick = p
			}
		}
		return FireTarget(pick.ID)
	}

	if len(m.Nav.Nodes) == 0 {
		return WalkTo(b.Position)
	}
	return WalkTo(m.Nav.Nodes[m.random().Intn(len(m.Nav.Nodes))])
}

// maxEmployees = min(上限, 玩家数/每名员工对应玩家数)，至少为 1
func (m *Model) maxEmployees() int {
	per := m.Tuning.PlayersPerWorker
	if per <= 0 {
		per = 3
	}
	n := len(m.Players) / per
	if m.Tuning.MaxEmployees > 0 && n > m.Tuning.MaxEmployees {
		n = m.Tuning.MaxEmployees
	}
	if n < 1 {
		n = 1
	}
	return n
}
