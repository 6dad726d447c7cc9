package server

import (
	"math/rand"
	"time"
)

func testWorldConfig() WorldConfig {
	return WorldConfig{
		Width:            1000,
		Height:           1000,
		TickRate:         10,
		TargetFoodCount:  30,
		MaxClients:       8,
		KeyframeInterval: 5,
	}
}

func newTestWorld(cfg WorldConfig) *World {
	return newWorld(cfg, rand.New(rand.NewSource(42)))
}

// addTestPlayer registers an alive player whose chain trails the spawn
// point along the negative heading direction, the same layout a join
// produces.
func addTestPlayer(w *World, id string, spawn Vec2, angle float64, length int) *playerState {
	state := &playerState{
		Player: Player{
			ID:    id,
			Angle: angle,
			Alive: true,
			Color: colorForSkin(0),
		},
		lastHeartbeat: time.Now(),
	}
	w.resetChain(state, spawn, length)
	w.players[id] = state
	return state
}
