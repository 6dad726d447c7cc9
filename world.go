package server

import (
	"fmt"
	"math/rand"
	"time"
)

// World is the authoritative aggregate for one room: players keyed by
// session id, food keyed by food id, wrap bounds, and the monotonically
// advancing tick/timestamp pair clients interpolate against. All mutation
// funnels through the owning room's handlers and tick loop; nothing outside
// that single-writer boundary touches these maps.
type World struct {
	config  WorldConfig
	players map[string]*playerState
	foods   map[string]*Food

	tick       uint64
	timestamp  int64 // unix millis, seeded at creation, advances one period per tick
	rng        *rand.Rand
	nextPlayer uint64
	nextFood   uint64
}

func newWorld(cfg WorldConfig, rng *rand.Rand) *World {
	w := &World{
		config:    cfg.normalized(),
		players:   make(map[string]*playerState),
		foods:     make(map[string]*Food),
		timestamp: time.Now().UnixMilli(),
		rng:       rng,
	}
	w.seedFood()
	return w
}

// randomSpawn picks a uniformly random point on the map.
func (w *World) randomSpawn() Vec2 {
	return Vec2{
		X: w.rng.Float64() * w.config.Width,
		Y: w.rng.Float64() * w.config.Height,
	}
}

func (w *World) nextPlayerID() string {
	w.nextPlayer++
	return fmt.Sprintf("player-%d", w.nextPlayer)
}

// nextFoodID issues a fresh identity. IDs are never reused, so a stale
// eat-claim can never resolve against a replacement item.
func (w *World) nextFoodID() string {
	w.nextFood++
	return fmt.Sprintf("food-%d", w.nextFood)
}

func (w *World) advanceClock(periodMillis int64) {
	w.tick++
	w.timestamp += periodMillis
}

func (w *World) tickPeriodMillis() int64 {
	if w.config.TickRate <= 0 {
		return 1000 / tickRate
	}
	return int64(1000 / w.config.TickRate)
}
