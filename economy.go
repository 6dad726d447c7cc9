package server

import "time"

// growthForValue maps a food tier to the number of appended segments. Rare
// food grows the snake proportionally harder.
func growthForValue(value int) int {
	if value < 1 {
		return 1
	}
	return value
}

// applyBoostDrain charges every boosting player for the elapsed tick.
// Sustained boosting costs one score point and one tail segment each time
// the accumulator crosses the threshold. When the chain sits at the minimum
// floor (or the score is exhausted) boosting is forced off instead of
// shrinking further.
func (w *World) applyBoostDrain(period time.Duration) {
	for _, state := range w.players {
		if !state.Alive || !state.Boosting {
			continue
		}
		state.boostAccum += period
		for state.boostAccum >= boostDrainThreshold {
			if state.totalLength-1 < minSegmentCount || state.Score < 1 {
				state.Boosting = false
				state.boostAccum = 0
				break
			}
			state.boostAccum -= boostDrainThreshold
			state.shrink()
			state.Score--
		}
	}
}

// consumeFood applies a validated eat-claim: the food's value becomes score,
// the chain grows by a value-dependent number of segments, and the item
// leaves the world. Growth never removes segments, whatever the tier.
func (w *World) consumeFood(state *playerState, food *Food) {
	state.Score += food.Value
	state.grow(growthForValue(food.Value))
	w.removeFood(food.ID)
}
