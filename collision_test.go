package server

import "testing"

func TestHeadHittingOtherBodyKillsTheRunner(t *testing.T) {
	w := newTestWorld(testWorldConfig())
	runner := addTestPlayer(w, "player-1", Vec2{X: 100, Y: 100}, 0, minSegmentCount)
	blocker := addTestPlayer(w, "player-2", Vec2{X: 400, Y: 400}, 0, minSegmentCount)
	blocker.Score = 7

	// Put the runner's head on top of the blocker's second segment.
	runner.segments[0] = blocker.segments[1]
	runner.X = runner.segments[0].X
	runner.Y = runner.segments[0].Y
	runner.Score = 9

	pending := w.detectCollisions()
	if len(pending) != 1 {
		t.Fatalf("expected one pending kill, got %d", len(pending))
	}
	if pending[0].VictimID != "player-1" || pending[0].KillerID != "player-2" {
		t.Fatalf("unexpected kill record: %+v", pending[0])
	}

	applied := w.applyDeaths(pending)
	if len(applied) != 1 {
		t.Fatalf("expected one applied death, got %d", len(applied))
	}
	if runner.Alive {
		t.Fatalf("victim still alive after applied death")
	}
	if runner.Score != 9 {
		t.Fatalf("dead player's score changed before respawn: %d", runner.Score)
	}
	if blocker.Score != 7+4 {
		t.Fatalf("expected killer score 11 (floor of half of 9 awarded), got %d", blocker.Score)
	}
	if blocker.Kills != 1 {
		t.Fatalf("expected killer kill counter 1, got %d", blocker.Kills)
	}
	if applied[0].Awarded != 4 {
		t.Fatalf("expected awarded 4 in the record, got %d", applied[0].Awarded)
	}
}

func TestOtherHeadIsNotAKillSurface(t *testing.T) {
	w := newTestWorld(testWorldConfig())
	runner := addTestPlayer(w, "player-1", Vec2{X: 100, Y: 100}, 0, minSegmentCount)
	other := addTestPlayer(w, "player-2", Vec2{X: 700, Y: 700}, 0, minSegmentCount)

	// Head-on: runner's head exactly on the other head, bodies far away.
	runner.segments[0] = other.segments[0]
	for i := 1; i < len(other.segments); i++ {
		other.segments[i] = Vec2{X: 50, Y: 50}
	}
	for i := 1; i < len(runner.segments); i++ {
		runner.segments[i] = Vec2{X: 900, Y: 900}
	}

	if pending := w.detectCollisions(); len(pending) != 0 {
		t.Fatalf("head-on overlap should not kill, got %+v", pending)
	}
}

func TestMutualKillsResolveInTheSameTick(t *testing.T) {
	w := newTestWorld(testWorldConfig())
	a := addTestPlayer(w, "player-1", Vec2{X: 100, Y: 100}, 0, minSegmentCount)
	b := addTestPlayer(w, "player-2", Vec2{X: 600, Y: 600}, 0, minSegmentCount)
	a.Score = 10
	b.Score = 10

	// Each head sits on the other's second segment.
	a.segments[0] = b.segments[1]
	b.segments[0] = a.segments[1]

	pending := w.detectCollisions()
	if len(pending) != 2 {
		t.Fatalf("expected both players pending, got %d", len(pending))
	}

	applied := w.applyDeaths(pending)
	if len(applied) != 2 {
		t.Fatalf("expected both deaths applied, got %d", len(applied))
	}
	if a.Alive || b.Alive {
		t.Fatalf("expected both players dead, alive=%v/%v", a.Alive, b.Alive)
	}
	if a.Kills != 1 || b.Kills != 1 {
		t.Fatalf("expected each player credited one kill, got %d/%d", a.Kills, b.Kills)
	}

	// Each award comes from the opponent's score at death, never from a
	// score already inflated by the other award, regardless of which record
	// the map iteration produced first.
	if a.Score != 15 || b.Score != 15 {
		t.Fatalf("mutual-kill awards corrupted the scores: a=%d b=%d, want 15/15", a.Score, b.Score)
	}
	for _, record := range applied {
		if record.Awarded != 5 {
			t.Fatalf("expected each award to be 5, got %+v", record)
		}
	}
}

func TestMutualKillAwardsIgnoreUnevenScores(t *testing.T) {
	w := newTestWorld(testWorldConfig())
	a := addTestPlayer(w, "player-1", Vec2{X: 100, Y: 100}, 0, minSegmentCount)
	b := addTestPlayer(w, "player-2", Vec2{X: 600, Y: 600}, 0, minSegmentCount)
	a.Score = 9
	b.Score = 4

	a.segments[0] = b.segments[1]
	b.segments[0] = a.segments[1]

	w.applyDeaths(w.detectCollisions())

	// a takes floor(4/2)=2, b takes floor(9/2)=4, from the at-death scores.
	if a.Score != 11 {
		t.Fatalf("expected a at 9+2=11, got %d", a.Score)
	}
	if b.Score != 8 {
		t.Fatalf("expected b at 4+4=8, got %d", b.Score)
	}
}

func TestSelfCollisionSkipsHeadAdjacentPrefix(t *testing.T) {
	w := newTestWorld(testWorldConfig())
	state := addTestPlayer(w, "player-1", Vec2{X: 500, Y: 500}, 0, 12)

	// Segments inside the skip window overlapping the head are tolerated.
	for i := 1; i < selfCollisionSkip; i++ {
		state.segments[i] = state.segments[0]
	}
	if pending := w.detectCollisions(); len(pending) != 0 {
		t.Fatalf("prefix overlap should not self-kill, got %+v", pending)
	}

	// The first segment past the prefix is lethal.
	state.segments[selfCollisionSkip] = Vec2{X: state.segments[0].X, Y: state.segments[0].Y + 5}
	pending := w.detectCollisions()
	if len(pending) != 1 {
		t.Fatalf("expected one self-kill, got %d", len(pending))
	}
	if pending[0].VictimID != "player-1" || pending[0].KillerID != "" {
		t.Fatalf("expected killerless self-kill record, got %+v", pending[0])
	}
}

func TestSelfCollisionUsesTighterRadius(t *testing.T) {
	w := newTestWorld(testWorldConfig())
	state := addTestPlayer(w, "player-1", Vec2{X: 500, Y: 500}, 0, 12)

	// Inside the inter-player radius but outside the self radius.
	state.segments[selfCollisionSkip] = Vec2{X: state.segments[0].X, Y: state.segments[0].Y + 12}
	if pending := w.detectCollisions(); len(pending) != 0 {
		t.Fatalf("distance between self and kill radius should not self-kill, got %+v", pending)
	}
}

func TestEmptyChainForceKillsOnlyThatPlayer(t *testing.T) {
	w := newTestWorld(testWorldConfig())
	broken := addTestPlayer(w, "player-1", Vec2{X: 100, Y: 100}, 0, minSegmentCount)
	bystander := addTestPlayer(w, "player-2", Vec2{X: 800, Y: 800}, 0, minSegmentCount)
	broken.segments = nil

	applied := w.applyDeaths(w.detectCollisions())
	if len(applied) != 1 {
		t.Fatalf("expected exactly one death, got %d", len(applied))
	}
	if applied[0].VictimID != "player-1" || applied[0].KillerID != "" {
		t.Fatalf("unexpected record: %+v", applied[0])
	}
	if broken.Alive {
		t.Fatalf("broken player should be force-killed")
	}
	if !bystander.Alive {
		t.Fatalf("bystander should be untouched")
	}
	if len(applied[0].CorpseFood) != 0 {
		t.Fatalf("empty chain cannot scatter corpse food, got %d entries", len(applied[0].CorpseFood))
	}
}

func TestDeathScattersBoundedCorpseFood(t *testing.T) {
	cfg := testWorldConfig()
	cfg.TargetFoodCount = 1
	w := newTestWorld(cfg)
	victim := addTestPlayer(w, "player-1", Vec2{X: 500, Y: 500}, 0, minSegmentCount)
	victim.segments = make([]Vec2, 60)
	for i := range victim.segments {
		victim.segments[i] = Vec2{X: float64(10 + i*15), Y: 500}
	}
	victim.totalLength = len(victim.segments)

	applied := w.applyDeaths([]deathRecord{{VictimID: "player-1"}})
	if len(applied) != 1 {
		t.Fatalf("expected one applied death, got %d", len(applied))
	}
	food := applied[0].CorpseFood
	if len(food) == 0 || len(food) > corpseFoodMax {
		t.Fatalf("corpse food count out of bounds: %d", len(food))
	}
	for _, f := range food {
		if f.Value != 1 {
			t.Fatalf("corpse food must be common value 1, got %d", f.Value)
		}
		if f.X < 0 || f.X >= w.config.Width || f.Y < 0 || f.Y >= w.config.Height {
			t.Fatalf("corpse food outside world bounds: (%v,%v)", f.X, f.Y)
		}
		if _, ok := w.foods[f.ID]; !ok {
			t.Fatalf("corpse food %s not registered in the world", f.ID)
		}
	}
}

func TestVictimCannotDieTwiceInOneTick(t *testing.T) {
	w := newTestWorld(testWorldConfig())
	victim := addTestPlayer(w, "player-1", Vec2{X: 100, Y: 100}, 0, minSegmentCount)
	victim.Score = 10
	killer := addTestPlayer(w, "player-2", Vec2{X: 400, Y: 400}, 0, minSegmentCount)

	// Duplicate records for the same victim must collapse to one death.
	pending := []deathRecord{
		{VictimID: "player-1", KillerID: "player-2"},
		{VictimID: "player-1", KillerID: "player-2"},
	}
	applied := w.applyDeaths(pending)
	if len(applied) != 1 {
		t.Fatalf("expected one applied death, got %d", len(applied))
	}
	if killer.Score != 5 || killer.Kills != 1 {
		t.Fatalf("killer bookkeeping corrupted: score=%d kills=%d", killer.Score, killer.Kills)
	}
}
