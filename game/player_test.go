package game

import (
	"math"
	"testing"
)

func testBounds() Rect { return Rect{Min: V(-100, -100), Max: V(100, 100)} }

func TestPlayerVelocityConvergesWithoutOvershoot(t *testing.T) {
	tune := DefaultTuning()
	p := &Player{Radius: 0.5}
	p.SetInput(V(1, 0), tune.InputDeadzone)

	dt := tune.TickDuration()
	prev := 0.0
	for i := 0; i < 10; i++ {
		p.Update(dt, testBounds(), tune)
		if p.Velocity.X > tune.PlayerSpeed {
			t.Fatalf("step %d overshoot: vx=%f", i, p.Velocity.X)
		}
		if p.Velocity.X < prev {
			t.Fatalf("step %d velocity decreased: %f < %f", i, p.Velocity.X, prev)
		}
		prev = p.Velocity.X
	}
	if p.Velocity != V(tune.PlayerSpeed, 0) {
		t.Fatalf("velocity = %+v, want exactly (%v, 0)", p.Velocity, tune.PlayerSpeed)
	}
	p.Update(dt, testBounds(), tune)
	if p.Velocity != V(tune.PlayerSpeed, 0) {
		t.Fatalf("velocity drifted after convergence: %+v", p.Velocity)
	}
}

func TestPlayerAccelerationClampIsByMagnitude(t *testing.T) {
	tune := DefaultTuning()
	p := &Player{}
	p.SetInput(V(1, 1), tune.InputDeadzone)
	dt := tune.TickDuration()
	p.Update(dt, testBounds(), tune)
	got := p.Velocity.Len()
	want := tune.PlayerAcceleration * dt
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("|dv| = %f, want %f", got, want)
	}
	if math.Abs(p.Velocity.X-p.Velocity.Y) > 1e-12 {
		t.Fatalf("diagonal input should accelerate evenly: %+v", p.Velocity)
	}
}

func TestSetInputDeadzone(t *testing.T) {
	cases := []struct {
		name string
		in   Vec2
		want Vec2
	}{
		{"below deadzone kept raw", V(0.05, 0), V(0.05, 0)},
		{"zero", V(0, 0), V(0, 0)},
		{"normalized", V(3, 4), V(0.6, 0.8)},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			p := &Player{}
			p.SetInput(c.in, 0.1)
			if p.TargetVelocity.Dist(c.want) > 1e-12 {
				t.Fatalf("target = %+v, want %+v", p.TargetVelocity, c.want)
			}
		})
	}
}

func TestPlayerPositionClampedToBounds(t *testing.T) {
	tune := DefaultTuning()
	bounds := Rect{Min: V(0, 0), Max: V(1, 1)}
	p := &Player{Position: V(0.99, 0.5), Velocity: V(4, 0)}
	p.SetInput(V(1, 0), tune.InputDeadzone)
	p.Update(tune.TickDuration(), bounds, tune)
	if p.Position.X != 1 {
		t.Fatalf("x = %f, want clamped to 1", p.Position.X)
	}
}

func TestCollideCoincidentCentersDoNotMove(t *testing.T) {
	p := &Player{Radius: 0.5, Position: V(2, 2)}
	if p.Collide(V(2, 2), 1) {
		t.Fatalf("coincident centers must not report a collision")
	}
	if p.Position != V(2, 2) {
		t.Fatalf("player moved: %+v", p.Position)
	}
}

func TestCollidePushesToTangent(t *testing.T) {
	p := &Player{Radius: 0.5, Position: V(1.5-1e-3, 0)}
	if !p.Collide(V(0, 0), 1) {
		t.Fatalf("expected collision")
	}
	if d := p.Position.Len(); math.Abs(d-1.5) > 1e-9 {
		t.Fatalf("distance after push = %.12f, want 1.5", d)
	}
	if p.Position.Y != 0 {
		t.Fatalf("push must follow the center line: %+v", p.Position)
	}
}

func TestCollideTouchingIsNotCollision(t *testing.T) {
	p := &Player{Radius: 0.5, Position: V(0, 2)}
	if p.Collide(V(0, 0), 1) {
		t.Fatalf("separated circles must not collide")
	}
}

func TestPlayerCloneIsDeep(t *testing.T) {
	p := &Player{UnemployedTime: floatPtr(1), Seat: intPtr(2), Pizza: &Pizza{Ingredients: SetOf(Cheese)}}
	c := p.Clone()
	*c.UnemployedTime = 9
	*c.Seat = 5
	c.Pizza.State = PizzaCooked
	if *p.UnemployedTime != 1 || *p.Seat != 2 || p.Pizza.State != PizzaRaw {
		t.Fatalf("clone shares state with original: %+v", p)
	}
}
