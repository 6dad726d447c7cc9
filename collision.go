package server

import "math"

// deathRecord captures one resolved kill for the room to announce.
type deathRecord struct {
	VictimID   string
	KillerID   string // empty for self-collisions and invariant kills
	Awarded    int    // score transferred to the killer
	CorpseFood []*Food
}

// torusDelta measures the shortest per-axis separation on the wrap boundary.
func torusDelta(a, b, max float64) float64 {
	d := math.Abs(a - b)
	if max > 0 && d > max/2 {
		d = max - d
	}
	return d
}

func (w *World) torusDist(a, b Vec2) float64 {
	dx := torusDelta(a.X, b.X, w.config.Width)
	dy := torusDelta(a.Y, b.Y, w.config.Height)
	return math.Hypot(dx, dy)
}

// detectCollisions walks every live player in map-iteration order and
// returns at most one pending kill per player. Alive flags are not mutated
// here, so two heads meeting each other's bodies in the same tick both die.
func (w *World) detectCollisions() []deathRecord {
	pending := make([]deathRecord, 0)
	for id, state := range w.players {
		if !state.Alive {
			continue
		}
		if len(state.segments) == 0 {
			// A chain can never be empty while alive. Treat it as fatal to
			// this player only rather than crashing the room.
			pending = append(pending, deathRecord{VictimID: id})
			continue
		}
		if record, ok := w.checkPlayerCollision(id, state); ok {
			pending = append(pending, record)
		}
	}
	return pending
}

// checkPlayerCollision resolves the first collision for one player this
// tick; the player cannot be killed twice, so the search exits on the first
// hit.
func (w *World) checkPlayerCollision(id string, state *playerState) (deathRecord, bool) {
	head := state.head()

	for otherID, other := range w.players {
		if otherID == id || !other.Alive {
			continue
		}
		// Skip the other head: head-on meetings resolve through body hits.
		for i := 1; i < len(other.segments); i++ {
			if w.torusDist(head, other.segments[i]) < killRadius {
				return deathRecord{VictimID: id, KillerID: otherID}, true
			}
		}
	}

	// Self check skips the head-adjacent prefix — the chain's natural
	// curvature keeps those segments inside the radius — and uses a tighter
	// radius than the inter-player check.
	for i := selfCollisionSkip; i < len(state.segments); i++ {
		if w.torusDist(head, state.segments[i]) < selfKillRadius {
			return deathRecord{VictimID: id}, true
		}
	}

	return deathRecord{}, false
}

// applyDeaths transitions each pending victim to dead, credits the killer
// with half the victim's score, and converts the corpse into scattered food.
// Dead players keep their identity, score, and frozen position until an
// explicit respawn.
func (w *World) applyDeaths(pending []deathRecord) []deathRecord {
	applied := make([]deathRecord, 0, len(pending))

	// Awards are computed from each victim's score at the moment of death.
	// Snapshot them all up front so a mutual kill cannot feed one killer's
	// award into the other victim's award, whatever the record order.
	scoreAtDeath := make(map[string]int, len(pending))
	for _, record := range pending {
		if victim, ok := w.players[record.VictimID]; ok && victim.Alive {
			scoreAtDeath[record.VictimID] = victim.Score
		}
	}

	for _, record := range pending {
		victim, ok := w.players[record.VictimID]
		if !ok || !victim.Alive {
			continue
		}
		victim.Alive = false
		victim.Boosting = false
		victim.boostAccum = 0

		if killer, ok := w.players[record.KillerID]; ok && record.KillerID != record.VictimID {
			record.Awarded = scoreAtDeath[record.VictimID] / 2
			killer.Score += record.Awarded
			killer.Kills++
		}

		record.CorpseFood = w.scatterCorpse(victim.segments)
		applied = append(applied, record)
	}
	return applied
}
