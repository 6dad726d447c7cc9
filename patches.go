package server

// The replicated player fields are pushed as explicit diff entries rather
// than full snapshots. The walk below is the single place that decides what
// leaves the server every tick; segment chains and the food set never pass
// through it (foods travel as discrete events, trails are reconstructed
// client-side from head history).

// PatchKind identifies the type of diff entry.
type PatchKind string

const (
	// PatchPlayerJoined introduces a full player to the client state.
	PatchPlayerJoined PatchKind = "player_joined"
	// PatchPlayerRemoved signals that a player left the world.
	PatchPlayerRemoved PatchKind = "player_removed"
	// PatchPlayerPos updates a player's head position.
	PatchPlayerPos PatchKind = "player_pos"
	// PatchPlayerAngle updates a player's heading.
	PatchPlayerAngle PatchKind = "player_angle"
	// PatchPlayerScore updates a player's score.
	PatchPlayerScore PatchKind = "player_score"
	// PatchPlayerAlive updates a player's alive flag.
	PatchPlayerAlive PatchKind = "player_alive"
	// PatchPlayerBoost updates a player's boost flag.
	PatchPlayerBoost PatchKind = "player_boost"
	// PatchPlayerKills updates a player's kill counter.
	PatchPlayerKills PatchKind = "player_kills"
)

// Patch is one diff entry applied to the client's replica.
type Patch struct {
	Kind     PatchKind `json:"kind"`
	EntityID string    `json:"entityId"`
	Payload  any       `json:"payload,omitempty"`
}

// PositionPayload carries the coordinates for a position patch.
type PositionPayload struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// AnglePayload carries the heading for an angle patch.
type AnglePayload struct {
	Angle float64 `json:"angle"`
}

// ScorePayload carries the score for a score patch.
type ScorePayload struct {
	Score int `json:"score"`
}

// AlivePayload carries the alive flag for a lifecycle patch.
type AlivePayload struct {
	Alive bool `json:"alive"`
}

// BoostPayload carries the boost flag for a boost patch.
type BoostPayload struct {
	Boosting bool `json:"boosting"`
}

// KillsPayload carries the kill counter for a kills patch.
type KillsPayload struct {
	Kills int `json:"kills"`
}

// replicaTracker remembers the last broadcast replicated fields per player
// and emits patches for whatever changed since.
type replicaTracker struct {
	lastSent map[string]Player
}

func newReplicaTracker() *replicaTracker {
	return &replicaTracker{lastSent: make(map[string]Player)}
}

// diff walks the replicated fields of every player against the previous
// broadcast and advances the baseline to the current state.
func (t *replicaTracker) diff(players map[string]*playerState) []Patch {
	patches := make([]Patch, 0)

	for id, state := range players {
		current := state.snapshot()
		previous, known := t.lastSent[id]
		if !known {
			patches = append(patches, Patch{Kind: PatchPlayerJoined, EntityID: id, Payload: current})
			t.lastSent[id] = current
			continue
		}
		if previous.X != current.X || previous.Y != current.Y {
			patches = append(patches, Patch{Kind: PatchPlayerPos, EntityID: id, Payload: PositionPayload{X: current.X, Y: current.Y}})
		}
		if previous.Angle != current.Angle {
			patches = append(patches, Patch{Kind: PatchPlayerAngle, EntityID: id, Payload: AnglePayload{Angle: current.Angle}})
		}
		if previous.Score != current.Score {
			patches = append(patches, Patch{Kind: PatchPlayerScore, EntityID: id, Payload: ScorePayload{Score: current.Score}})
		}
		if previous.Alive != current.Alive {
			patches = append(patches, Patch{Kind: PatchPlayerAlive, EntityID: id, Payload: AlivePayload{Alive: current.Alive}})
		}
		if previous.Boosting != current.Boosting {
			patches = append(patches, Patch{Kind: PatchPlayerBoost, EntityID: id, Payload: BoostPayload{Boosting: current.Boosting}})
		}
		if previous.Kills != current.Kills {
			patches = append(patches, Patch{Kind: PatchPlayerKills, EntityID: id, Payload: KillsPayload{Kills: current.Kills}})
		}
		t.lastSent[id] = current
	}

	for id := range t.lastSent {
		if _, ok := players[id]; !ok {
			patches = append(patches, Patch{Kind: PatchPlayerRemoved, EntityID: id})
			delete(t.lastSent, id)
		}
	}

	return patches
}

// forget drops the baseline for a player so a rejoin replays as a join.
func (t *replicaTracker) forget(id string) {
	delete(t.lastSent, id)
}
