package server

import (
	"math"
	"testing"
)

func TestAdvancePlayerMovesAlongHeading(t *testing.T) {
	w := newTestWorld(testWorldConfig())
	state := addTestPlayer(w, "player-1", Vec2{X: 100, Y: 100}, 0, minSegmentCount)

	w.advanceMovement()

	if math.Abs(state.X-103) > 1e-9 || math.Abs(state.Y-100) > 1e-9 {
		t.Fatalf("expected head at (103,100), got (%v,%v)", state.X, state.Y)
	}

	state.Angle = 90
	w.advanceMovement()

	if math.Abs(state.X-103) > 1e-9 || math.Abs(state.Y-103) > 1e-9 {
		t.Fatalf("expected head at (103,103), got (%v,%v)", state.X, state.Y)
	}
}

func TestBoostDoublesPerTickDisplacement(t *testing.T) {
	w := newTestWorld(testWorldConfig())
	state := addTestPlayer(w, "player-1", Vec2{X: 200, Y: 200}, 0, minSegmentCount)
	state.Boosting = true

	w.advanceMovement()

	expected := baseSpeed * boostMultiplier
	if math.Abs(state.X-(200+expected)) > 1e-9 {
		t.Fatalf("expected boosted head at x=%v, got %v", 200+expected, state.X)
	}
}

func TestHeadWrapsAtWorldSeam(t *testing.T) {
	w := newTestWorld(WorldConfig{Width: 8000, Height: 8000})
	state := addTestPlayer(w, "player-1", Vec2{X: 7999, Y: 50}, 0, minSegmentCount)

	w.advanceMovement()

	if math.Abs(state.X-2) > 1e-9 {
		t.Fatalf("expected head to wrap to x=2, got %v", state.X)
	}
	if math.Abs(state.Y-50) > 1e-9 {
		t.Fatalf("expected y unchanged at 50, got %v", state.Y)
	}
}

func TestChainShiftsToPredecessorPositions(t *testing.T) {
	w := newTestWorld(testWorldConfig())
	state := addTestPlayer(w, "player-1", Vec2{X: 500, Y: 500}, 0, 6)

	before := make([]Vec2, len(state.segments))
	copy(before, state.segments)

	w.advanceMovement()

	for i := 1; i < len(state.segments); i++ {
		if state.segments[i] != before[i-1] {
			t.Fatalf("segment %d did not take predecessor's pre-tick position: got %+v want %+v", i, state.segments[i], before[i-1])
		}
	}
	if state.segments[0] == before[0] {
		t.Fatalf("head did not advance")
	}
}

func TestDeadPlayersStayFrozen(t *testing.T) {
	w := newTestWorld(testWorldConfig())
	state := addTestPlayer(w, "player-1", Vec2{X: 300, Y: 300}, 45, minSegmentCount)
	state.Alive = false

	before := make([]Vec2, len(state.segments))
	copy(before, state.segments)

	w.advanceMovement()

	if state.X != 300 || state.Y != 300 {
		t.Fatalf("dead player moved to (%v,%v)", state.X, state.Y)
	}
	for i := range state.segments {
		if state.segments[i] != before[i] {
			t.Fatalf("dead player's segment %d moved", i)
		}
	}
}

func TestHeadingIsConsumedUnnormalized(t *testing.T) {
	w := newTestWorld(testWorldConfig())
	state := addTestPlayer(w, "player-1", Vec2{X: 400, Y: 400}, 720+90, minSegmentCount)

	w.advanceMovement()

	if math.Abs(state.X-400) > 1e-9 || math.Abs(state.Y-403) > 1e-9 {
		t.Fatalf("expected 810 degrees to behave as 90, head at (%v,%v)", state.X, state.Y)
	}
}

func TestFreshChainTrailsBehindHeading(t *testing.T) {
	w := newTestWorld(testWorldConfig())
	state := addTestPlayer(w, "player-1", Vec2{X: 500, Y: 500}, 0, 10)

	for i := 1; i < len(state.segments); i++ {
		expectedX := 500 - float64(i)*baseSpeed
		if math.Abs(state.segments[i].X-expectedX) > 1e-9 {
			t.Fatalf("segment %d at x=%v, want %v", i, state.segments[i].X, expectedX)
		}
		if math.Abs(state.segments[i].Y-500) > 1e-9 {
			t.Fatalf("segment %d drifted off the heading line", i)
		}
	}
}
