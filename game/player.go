package game

// collisionEpsilon 圆心几乎重合时不推开，避免除零
const collisionEpsilon = 1e-6

// Player 玩家实体。UnemployedTime 为 nil 表示在职；Seat 非 nil 表示坐着（不可移动）
type Player struct {
	ID             ID       `json:"id"`
	Name           string   `json:"name,omitempty"`
	Hue            float64  `json:"hue,omitempty"`
	Score          int      `json:"score"`
	Radius         float64  `json:"radius"`
	Position       Vec2     `json:"position"`
	Velocity       Vec2     `json:"velocity"`
	TargetVelocity Vec2     `json:"target_velocity"`
	UnemployedTime *float64 `json:"unemployed_time"`
	Seat           *int     `json:"seat"`
	Pizza          *Pizza   `json:"pizza"`
}

// Employed 在职员工才能做披萨、送餐
func (p *Player) Employed() bool { return p.UnemployedTime == nil }

// Seated 返回座位下标
func (p *Player) Seated() (int, bool) {
	if p.Seat == nil {
		return 0, false
	}
	return *p.Seat, true
}

// Clone 深拷贝（可选字段各自复制，避免快照之间共享指针）
func (p *Player) Clone() *Player {
	c := *p
	if p.UnemployedTime != nil {
		c.UnemployedTime = floatPtr(*p.UnemployedTime)
	}
	if p.Seat != nil {
		c.Seat = intPtr(*p.Seat)
	}
	if p.Pizza != nil {
		pz := *p.Pizza
		c.Pizza = &pz
	}
	return &c
}

// SetInput 记录方向输入；仅当模长超过死区时归一化
func (p *Player) SetInput(dir Vec2, deadzone float64) {
	if dir.Len() > deadzone {
		dir = dir.Normalize()
	}
	p.TargetVelocity = dir
}

// Update 速度以不超过 加速度*dt 的步幅逼近目标速度，再积分位置并裁剪到边界
func (p *Player) Update(dt float64, bounds Rect, t Tuning) {
	want := p.TargetVelocity.Scale(t.PlayerSpeed)
	p.Velocity = p.Velocity.Add(want.Sub(p.Velocity).ClampLen(t.PlayerAcceleration * dt))
	p.Position = bounds.Clamp(p.Position.Add(p.Velocity.Scale(dt)))
}

// Collide 圆-圆碰撞：严格重叠且不重合时沿连线推到恰好相切，返回是否发生碰撞
func (p *Player) Collide(pos Vec2, radius float64) bool {
	delta := p.Position.Sub(pos)
	dist := delta.Len()
	sum := p.Radius + radius
	if dist >= sum || dist <= collisionEpsilon {
		return false
	}
	p.Position = pos.Add(delta.Scale(sum / dist))
	return true
}

// tickUnemployed 失业计时累加
func (p *Player) tickUnemployed(dt float64) {
	if p.UnemployedTime != nil {
		p.UnemployedTime = floatPtr(*p.UnemployedTime + dt)
	}
}

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }
