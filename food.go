package server

// Food is a static pickup. It exists in exactly one world and its identity
// is unique for the lifetime of the room.
type Food struct {
	ID    string  `json:"id"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Value int     `json:"value"` // 1 = common, >1 = rare
}

func (f *Food) position() Vec2 {
	return Vec2{X: f.X, Y: f.Y}
}

// rollFoodValue picks the value tier for a fresh spawn.
func (w *World) rollFoodValue() int {
	if w.rng.Float64() < rareFoodChance {
		return 2 + w.rng.Intn(rareFoodMaxValue-1)
	}
	return 1
}

// spawnFood creates one food item at a random position and registers it.
func (w *World) spawnFood() *Food {
	pos := w.randomSpawn()
	return w.spawnFoodAt(pos, w.rollFoodValue())
}

func (w *World) spawnFoodAt(pos Vec2, value int) *Food {
	if value < 1 {
		value = 1
	}
	food := &Food{ID: w.nextFoodID(), X: pos.X, Y: pos.Y, Value: value}
	w.foods[food.ID] = food
	return food
}

// removeFood deletes a food item by id. Idempotent.
func (w *World) removeFood(id string) {
	delete(w.foods, id)
}

// seedFood fills the world up to the target count before the first client
// joins.
func (w *World) seedFood() {
	for len(w.foods) < w.config.TargetFoodCount {
		w.spawnFood()
	}
}

// replenishFood tops the food set back up toward the target, bounded per
// tick so a mass death cannot stall the loop. Returns the fresh spawns so
// the room can announce them.
func (w *World) replenishFood() []*Food {
	deficit := w.config.TargetFoodCount - len(w.foods)
	if deficit <= 0 {
		return nil
	}
	if deficit > foodSpawnPerTick {
		deficit = foodSpawnPerTick
	}
	spawned := make([]*Food, 0, deficit)
	for i := 0; i < deficit; i++ {
		spawned = append(spawned, w.spawnFood())
	}
	return spawned
}

// scatterCorpse converts a dead snake's body into food. A bounded number of
// entries is sampled evenly along the former chain with a small jitter so
// long snakes do not flood the food set.
func (w *World) scatterCorpse(segments []Vec2) []*Food {
	if len(segments) == 0 {
		return nil
	}
	count := len(segments)
	if count > corpseFoodMax {
		count = corpseFoodMax
	}
	step := len(segments) / count
	if step < 1 {
		step = 1
	}
	spawned := make([]*Food, 0, count)
	for i := 0; i < len(segments) && len(spawned) < count; i += step {
		jittered := Vec2{
			X: segments[i].X + (w.rng.Float64()*2-1)*corpseFoodJitter,
			Y: segments[i].Y + (w.rng.Float64()*2-1)*corpseFoodJitter,
		}
		jittered = wrapVec(jittered, w.config.Width, w.config.Height)
		spawned = append(spawned, w.spawnFoodAt(jittered, 1))
	}
	return spawned
}

// foodSnapshot copies the current food set for a joining client.
func (w *World) foodSnapshot() []Food {
	foods := make([]Food, 0, len(w.foods))
	for _, food := range w.foods {
		foods = append(foods, *food)
	}
	return foods
}
