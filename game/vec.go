package game

import "math"

// Vec2 二维向量（世界坐标，单位：格）
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func V(x, y float64) Vec2 { return Vec2{X: x, Y: y} }

func (v Vec2) Add(o Vec2) Vec2      { return Vec2{X: v.X + o.X, Y: v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2      { return Vec2{X: v.X - o.X, Y: v.Y - o.Y} }
func (v Vec2) Scale(k float64) Vec2 { return Vec2{X: v.X * k, Y: v.Y * k} }
func (v Vec2) Len() float64         { return math.Hypot(v.X, v.Y) }
func (v Vec2) Dist(o Vec2) float64  { return v.Sub(o).Len() }
func (v Vec2) IsZero() bool         { return v.X == 0 && v.Y == 0 }

// Normalize 返回单位向量；零向量原样返回
func (v Vec2) Normalize() Vec2 {
	l := v.Len()
	if l == 0 {
		return v
	}
	return Vec2{X: v.X / l, Y: v.Y / l}
}

// ClampLen 按模长裁剪（不是逐轴裁剪）
func (v Vec2) ClampLen(max float64) Vec2 {
	l := v.Len()
	if l <= max {
		return v
	}
	return v.Scale(max / l)
}

// Rect 轴对齐矩形，用于可行走区域边界
type Rect struct {
	Min Vec2 `json:"min"`
	Max Vec2 `json:"max"`
}

func (r Rect) Width() float64  { return r.Max.X - r.Min.X }
func (r Rect) Height() float64 { return r.Max.Y - r.Min.Y }

// Clamp 将点限制在矩形内
func (r Rect) Clamp(p Vec2) Vec2 {
	return Vec2{
		X: math.Min(math.Max(p.X, r.Min.X), r.Max.X),
		Y: math.Min(math.Max(p.Y, r.Min.Y), r.Max.Y),
	}
}

func (r Rect) Contains(p Vec2) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X && p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

// Overlaps 圆-圆相交测试
func Overlaps(a Vec2, ra float64, b Vec2, rb float64) bool {
	return a.Dist(b) < ra+rb
}
