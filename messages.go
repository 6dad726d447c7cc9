package server

// Wire protocol. Every outbound message carries Ver so clients can reject a
// server they no longer understand.

// joinResponse is the welcome acknowledgment for a joining client. It also
// carries the full food snapshot: food is event-replicated, so a mid-game
// joiner would otherwise permanently miss items spawned before it connected.
type joinResponse struct {
	Ver              int         `json:"ver"`
	ID               string      `json:"id"`
	X                float64     `json:"x"`
	Y                float64     `json:"y"`
	Color            string      `json:"color"`
	Players          []Player    `json:"players"`
	Foods            []Food      `json:"foods"`
	Config           WorldConfig `json:"config"`
	KeyframeInterval int         `json:"keyframeInterval"`
}

// stateMessage is the periodic diff broadcast.
type stateMessage struct {
	Ver        int     `json:"ver"`
	Type       string  `json:"type"`
	Patches    []Patch `json:"patches"`
	Tick       uint64  `json:"t"`
	Sequence   uint64  `json:"sequence"`
	ServerTime int64   `json:"serverTime"`
}

// keyframeMessage carries a full replicated snapshot.
type keyframeMessage struct {
	Ver      int         `json:"ver"`
	Type     string      `json:"type"`
	Sequence uint64      `json:"sequence"`
	Tick     uint64      `json:"t"`
	Players  []Player    `json:"players"`
	Foods    []Food      `json:"foods"`
	Config   WorldConfig `json:"config"`
	Resync   bool        `json:"resync,omitempty"`
}

// keyframeNackMessage refuses a keyframe request whose sequence has left the
// journal window.
type keyframeNackMessage struct {
	Ver      int    `json:"ver"`
	Type     string `json:"type"`
	Sequence uint64 `json:"sequence"`
	Reason   string `json:"reason"`
	Resync   bool   `json:"resync,omitempty"`
}

type foodSpawnedMessage struct {
	Ver  int    `json:"ver"`
	Type string `json:"type"`
	Food Food   `json:"food"`
}

type foodConsumedMessage struct {
	Ver      int    `json:"ver"`
	Type     string `json:"type"`
	FoodID   string `json:"foodId"`
	PlayerID string `json:"playerId"`
	Value    int    `json:"value"`
}

type playerDiedMessage struct {
	Ver      int    `json:"ver"`
	Type     string `json:"type"`
	PlayerID string `json:"playerId"`
}

type playerKilledMessage struct {
	Ver    int    `json:"ver"`
	Type   string `json:"type"`
	Killer string `json:"killer"`
	Killed string `json:"killed"`
}

// JoinOptions are the client-chosen identity fields.
type JoinOptions struct {
	Name string `json:"name"`
	Skin int    `json:"skinId"`
}

type diagnosticsPlayer struct {
	Ver           int    `json:"ver"`
	ID            string `json:"id"`
	LastHeartbeat int64  `json:"lastHeartbeat"`
	RTTMillis     int64  `json:"rttMillis"`
}
