package server

import "math"

// advanceMovement integrates every live player one tick: heading to
// velocity, head forward with toroidal wrap, then the follow-the-leader
// shift down the chain. Dead players stay frozen.
//
// Movement is fully applied for all players before any collision check runs
// so every check this tick observes the same post-movement snapshot.
func (w *World) advanceMovement() {
	for _, state := range w.players {
		if !state.Alive {
			continue
		}
		w.advancePlayer(state)
	}
}

func (w *World) advancePlayer(state *playerState) {
	if len(state.segments) == 0 {
		return
	}

	speed := baseSpeed
	if state.Boosting {
		speed *= boostMultiplier
	}

	// The heading arrives in degrees and is consumed as-is; only the
	// conversion below interprets it.
	radians := state.Angle * math.Pi / 180
	velocity := Vec2{
		X: math.Cos(radians) * speed,
		Y: math.Sin(radians) * speed,
	}

	// Shift the chain first so every trailing segment takes the position its
	// predecessor held before this tick's update.
	for i := len(state.segments) - 1; i > 0; i-- {
		state.segments[i] = state.segments[i-1]
	}

	head := wrapVec(state.segments[0].Add(velocity), w.config.Width, w.config.Height)
	state.segments[0] = head
	state.X = head.X
	state.Y = head.Y
}
