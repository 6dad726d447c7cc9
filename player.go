package server

import (
	"math"
	"time"
)

// Player carries the replicated per-player fields. Everything here is diffed
// against the last broadcast and pushed to every client each tick; the
// segment chain deliberately is not (see patches.go).
type Player struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Angle    float64 `json:"angle"` // degrees, client-supplied and unsanitized
	Score    int     `json:"score"`
	Alive    bool    `json:"alive"`
	Boosting bool    `json:"boosting"`
	Skin     int     `json:"skin"`
	Color    string  `json:"color"`
	Kills    int     `json:"kills"`
}

// skinPalette maps skin selectors onto stable colors. The assignment must be
// deterministic so every client renders the same snake the same way.
var skinPalette = []string{
	"#e6194b",
	"#3cb44b",
	"#ffe119",
	"#4363d8",
	"#f58231",
	"#911eb4",
	"#46f0f0",
	"#f032e6",
	"#bcf60c",
	"#fabebe",
}

func colorForSkin(skin int) string {
	if skin < 0 {
		skin = -skin
	}
	return skinPalette[skin%len(skinPalette)]
}

// playerState holds the server-only fields next to the replicated struct.
// segments[0] is the head; every trailing entry follows the position history
// of its predecessor one tick behind. totalLength may exceed len(segments):
// past the sync cap only the logical length grows.
type playerState struct {
	Player
	segments    []Vec2
	totalLength int
	boostAccum  time.Duration

	lastHeartbeat time.Time
	lastRTT       time.Duration
}

// resetChain rebuilds the segment chain with the head at the given spawn
// point. Trailing segments are laid out behind the head along the opposite
// of the current heading at steady-state spacing, the configuration
// straight-line motion converges to, so a fresh chain never trips the self
// collision check before it has any history.
func (w *World) resetChain(s *playerState, spawn Vec2, length int) {
	if length < minSegmentCount {
		length = minSegmentCount
	}
	radians := s.Angle * math.Pi / 180
	step := Vec2{X: -math.Cos(radians) * baseSpeed, Y: -math.Sin(radians) * baseSpeed}
	s.segments = make([]Vec2, length)
	pos := spawn
	for i := range s.segments {
		s.segments[i] = wrapVec(pos, w.config.Width, w.config.Height)
		pos = pos.Add(step)
	}
	s.totalLength = length
	s.X = spawn.X
	s.Y = spawn.Y
}

func (s *playerState) head() Vec2 {
	if len(s.segments) == 0 {
		return Vec2{X: s.X, Y: s.Y}
	}
	return s.segments[0]
}

// grow appends count segments at the tail. Only the synced chain is bounded;
// the logical length always grows.
func (s *playerState) grow(count int) {
	if count <= 0 {
		return
	}
	s.totalLength += count
	room := syncedSegmentCap - len(s.segments)
	if room <= 0 {
		return
	}
	if count > room {
		count = room
	}
	tail := s.segments[len(s.segments)-1]
	for i := 0; i < count; i++ {
		s.segments = append(s.segments, tail)
	}
}

// shrink drops one tail segment. Logical length past the sync cap drains
// first; the synced chain only shortens once both lengths agree. Callers
// enforce the minimum floor.
func (s *playerState) shrink() {
	if s.totalLength > len(s.segments) {
		s.totalLength--
		return
	}
	if len(s.segments) > 0 {
		s.segments = s.segments[:len(s.segments)-1]
	}
	if s.totalLength > 0 {
		s.totalLength--
	}
}

func (s *playerState) snapshot() Player {
	return s.Player
}
