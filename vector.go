package server

import "math"

// Vec2 is a 2D point in world coordinates. Value semantics; no identity.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Y: v.Y + o.Y}
}

func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{X: v.X - o.X, Y: v.Y - o.Y}
}

func (v Vec2) Dist(o Vec2) float64 {
	return math.Hypot(v.X-o.X, v.Y-o.Y)
}

// wrapCoord folds a coordinate into [0, max). Coordinates already inside the
// range come back unchanged.
func wrapCoord(value, max float64) float64 {
	if max <= 0 {
		return value
	}
	if value >= 0 && value < max {
		return value
	}
	wrapped := math.Mod(value, max)
	if wrapped < 0 {
		wrapped += max
	}
	return wrapped
}

// wrapVec folds both axes independently into the world rectangle. The world
// is a torus, not a clamped box.
func wrapVec(v Vec2, width, height float64) Vec2 {
	return Vec2{X: wrapCoord(v.X, width), Y: wrapCoord(v.Y, height)}
}
