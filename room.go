package server

import (
	"encoding/json"
	"errors"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"snakepit/server/logging"
)

// ErrRoomFull rejects joins past the capacity ceiling. The transport layer
// turns it into a capacity-exceeded response; the simulation never admits
// the player.
var ErrRoomFull = errors.New("room capacity exceeded")

// SubscriberWriter is the transport-facing handle for point-to-point
// writes on an established subscription.
type SubscriberWriter interface {
	WriteJSON(payload any) error
}

type subscriber struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (s *subscriber) WriteJSON(payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

// Room owns one world and everything attached to it: the subscriber set,
// the replication tracker, the keyframe journal, and the tick loop. Message
// handlers and the tick both run behind r.mu, so each runs to completion
// before the next event touches the world.
type Room struct {
	ID string

	mu          sync.Mutex
	world       *World
	subscribers map[string]*subscriber
	tracker     *replicaTracker
	journal     *journal
	sequence    uint64
	pending     []any // event messages queued during a tick

	telemetry *telemetryCounters
	publisher logging.Publisher

	// OnEmpty fires after the last player leaves so the owner can dispose
	// the room.
	OnEmpty func(id string)
}

func NewRoom(id string, cfg WorldConfig, publisher logging.Publisher) *Room {
	if publisher == nil {
		publisher = logging.NopPublisher()
	}
	capacity, maxAge := journalSettingsFromEnv()
	return &Room{
		ID:          id,
		world:       newWorld(cfg, rand.New(rand.NewSource(time.Now().UnixNano()))),
		subscribers: make(map[string]*subscriber),
		tracker:     newReplicaTracker(),
		journal:     newJournal(capacity, maxAge),
		pending:     make([]any, 0),
		telemetry:   newTelemetryCounters(),
		publisher:   publisher,
	}
}

// Join admits a player at a uniformly random spawn point. The response is
// both the welcome acknowledgment and the full food snapshot the joiner
// needs before it can trust incremental food events.
func (r *Room) Join(opts JoinOptions) (joinResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.world.players) >= r.world.config.MaxClients {
		return joinResponse{}, ErrRoomFull
	}

	id := r.world.nextPlayerID()
	spawn := r.world.randomSpawn()
	state := &playerState{
		Player: Player{
			ID:    id,
			Name:  opts.Name,
			Angle: r.world.rng.Float64() * 360,
			Alive: true,
			Skin:  opts.Skin,
			Color: colorForSkin(opts.Skin),
		},
		lastHeartbeat: time.Now(),
	}
	r.world.resetChain(state, spawn, initialSegmentCount)
	r.world.players[id] = state

	r.publish(eventPlayerJoined, logging.SeverityInfo, playerRef(id), nil, opts)

	return joinResponse{
		Ver:              ProtocolVersion,
		ID:               id,
		X:                spawn.X,
		Y:                spawn.Y,
		Color:            state.Color,
		Players:          r.playersSnapshotLocked(),
		Foods:            r.world.foodSnapshot(),
		Config:           r.world.config,
		KeyframeInterval: r.world.config.KeyframeInterval,
	}, nil
}

// Subscribe associates a websocket connection with an existing player.
func (r *Room) Subscribe(playerID string, conn *websocket.Conn) (SubscriberWriter, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.world.players[playerID]
	if !ok {
		return nil, false
	}
	state.lastHeartbeat = time.Now()

	if existing, ok := r.subscribers[playerID]; ok {
		existing.conn.Close()
	}
	sub := &subscriber{conn: conn}
	r.subscribers[playerID] = sub
	return sub, true
}

// Leave removes a player and closes any active connection. Idempotent; the
// next diff announces the removal to everyone else.
func (r *Room) Leave(playerID string) {
	r.mu.Lock()
	sub, subOK := r.subscribers[playerID]
	if subOK {
		delete(r.subscribers, playerID)
	}
	_, playerOK := r.world.players[playerID]
	if playerOK {
		delete(r.world.players, playerID)
		r.publish(eventPlayerLeft, logging.SeverityInfo, playerRef(playerID), nil, nil)
	}
	empty := playerOK && len(r.world.players) == 0
	r.mu.Unlock()

	if subOK {
		sub.conn.Close()
	}
	if empty && r.OnEmpty != nil {
		r.OnEmpty(r.ID)
	}
}

// SetHeading stores the client's heading verbatim. The angle is consumed
// as-is by movement; dead or unknown players are a silent no-op.
func (r *Room) SetHeading(playerID string, angle float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.world.players[playerID]
	if !ok || !state.Alive {
		return
	}
	state.Angle = angle
}

// SetBoost stores the boost intent. Boosting needs at least one score point
// to burn; without it the flag is forced off.
func (r *Room) SetBoost(playerID string, active bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.world.players[playerID]
	if !ok || !state.Alive {
		return
	}
	if active && state.Score < 1 {
		active = false
	}
	if !active {
		state.boostAccum = 0
	}
	state.Boosting = active
}

// Respawn re-enters a dead player at a fresh random spawn, decoupled from
// where it died. Alive players are a silent no-op.
func (r *Room) Respawn(playerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.world.players[playerID]
	if !ok || state.Alive {
		return
	}
	state.Alive = true
	state.Score = 0
	state.Boosting = false
	state.boostAccum = 0
	r.world.resetChain(state, r.world.randomSpawn(), initialSegmentCount)
	r.publish(eventPlayerRespawned, logging.SeverityInfo, playerRef(playerID), nil, nil)
}

// ClaimFood validates a client-asserted eat. Validation is deliberately
// generous and position-trusting: clients animate food drifting toward the
// head before claiming, so the check accepts the claimed head position
// against the food's last known server position within a wide radius. This
// is a documented trade-off, not cheat-resistant. Failures of any kind are
// silent no-ops.
func (r *Room) ClaimFood(playerID, foodID string, headX, headY float64) {
	r.mu.Lock()

	state, ok := r.world.players[playerID]
	if !ok || !state.Alive {
		r.mu.Unlock()
		return
	}
	food, ok := r.world.foods[foodID]
	if !ok {
		r.mu.Unlock()
		return
	}

	head := Vec2{X: headX, Y: headY}
	if headX == 0 && headY == 0 {
		head = state.head()
	}
	if r.world.torusDist(head, food.position()) > eatClaimRadius {
		r.mu.Unlock()
		return
	}

	value := food.Value
	r.world.consumeFood(state, food)
	replacement := r.world.spawnFood()

	r.publish(eventFoodConsumed, logging.SeverityDebug, playerRef(playerID), []logging.EntityRef{foodRef(foodID)}, ScorePayload{Score: state.Score})

	consumed := foodConsumedMessage{Ver: ProtocolVersion, Type: "foodConsumed", FoodID: foodID, PlayerID: playerID, Value: value}
	spawned := foodSpawnedMessage{Ver: ProtocolVersion, Type: "foodSpawned", Food: *replacement}
	r.mu.Unlock()

	r.broadcast(consumed)
	r.broadcast(spawned)
}

// UpdateHeartbeat records the latest liveness signal and derives an RTT.
func (r *Room) UpdateHeartbeat(playerID string, receivedAt time.Time, clientSent int64) (time.Duration, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.world.players[playerID]
	if !ok {
		return 0, false
	}
	state.lastHeartbeat = receivedAt

	if clientSent > 0 {
		clientTime := time.UnixMilli(clientSent)
		if clientTime.Before(receivedAt.Add(5 * time.Second)) {
			rtt := receivedAt.Sub(clientTime)
			if rtt < 0 {
				rtt = 0
			}
			state.lastRTT = rtt
		}
	}
	return state.lastRTT, true
}

// RequestKeyframe answers a client that fell behind the patch stream. A
// journaled frame is replayed as-is; an evicted sequence downgrades to a
// nack plus a fresh resync snapshot.
func (r *Room) RequestKeyframe(playerID string, sequence uint64) {
	r.mu.Lock()
	sub, ok := r.subscribers[playerID]
	if !ok {
		r.mu.Unlock()
		return
	}

	frame, found := r.journal.KeyframeBySequence(sequence)
	r.telemetry.RecordKeyframeRequest(found)

	var payloads []any
	if found {
		payloads = append(payloads, keyframeMessageFromFrame(frame, false))
	} else {
		payloads = append(payloads, keyframeNackMessage{
			Ver:      ProtocolVersion,
			Type:     "keyframeNack",
			Sequence: sequence,
			Reason:   "expired",
			Resync:   true,
		})
		r.sequence++
		fresh := r.snapshotKeyframeLocked()
		payloads = append(payloads, keyframeMessageFromFrame(fresh, true))
	}
	r.mu.Unlock()

	for _, payload := range payloads {
		r.sendTo(playerID, sub, payload)
	}
}

// RunSimulation drives the fixed-period tick loop until stop closes.
func (r *Room) RunSimulation(stop <-chan struct{}) {
	period := time.Second / time.Duration(r.world.config.TickRate)
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			started := time.Now()
			state, toClose := r.advance(now, period)
			for _, sub := range toClose {
				sub.conn.Close()
			}
			r.flush(state)
			r.telemetry.RecordTickDuration(time.Since(started))
		}
	}
}

// advance runs one tick in the fixed order: movement for every live player,
// then collisions against the shared post-movement snapshot, then the food
// economy, then replication.
func (r *Room) advance(now time.Time, period time.Duration) (stateMessage, []*subscriber) {
	r.mu.Lock()
	defer r.mu.Unlock()

	toClose := r.evictStaleLocked(now)

	r.world.advanceMovement()
	r.world.applyBoostDrain(period)

	deaths := r.world.applyDeaths(r.world.detectCollisions())
	for _, death := range deaths {
		r.queueDeathLocked(death)
	}

	for _, food := range r.world.replenishFood() {
		r.pending = append(r.pending, foodSpawnedMessage{Ver: ProtocolVersion, Type: "foodSpawned", Food: *food})
	}

	r.world.advanceClock(r.world.tickPeriodMillis())

	r.sequence++
	state := stateMessage{
		Ver:        ProtocolVersion,
		Type:       "state",
		Patches:    r.tracker.diff(r.world.players),
		Tick:       r.world.tick,
		Sequence:   r.sequence,
		ServerTime: r.world.timestamp,
	}

	if interval := r.world.config.KeyframeInterval; interval > 0 && r.world.tick%uint64(interval) == 0 {
		frame := r.snapshotKeyframeLocked()
		result := r.journal.RecordKeyframe(frame)
		r.telemetry.RecordKeyframeJournal(result.Size, result.OldestSequence, result.NewestSequence)
		r.pending = append(r.pending, keyframeMessageFromFrame(frame, false))
	}

	return state, toClose
}

// evictStaleLocked drops players whose transport went silent. Treated as an
// ordinary leave.
func (r *Room) evictStaleLocked(now time.Time) []*subscriber {
	toClose := make([]*subscriber, 0)
	for id, state := range r.world.players {
		if now.Sub(state.lastHeartbeat) <= disconnectAfter {
			continue
		}
		if sub, ok := r.subscribers[id]; ok {
			toClose = append(toClose, sub)
			delete(r.subscribers, id)
		}
		delete(r.world.players, id)
		r.publish(eventPlayerLeft, logging.SeverityInfo, playerRef(id), nil, "heartbeat timeout")
	}
	return toClose
}

func (r *Room) queueDeathLocked(death deathRecord) {
	r.pending = append(r.pending, playerDiedMessage{Ver: ProtocolVersion, Type: "playerDied", PlayerID: death.VictimID})
	severity := logging.SeverityInfo
	if death.KillerID == "" && len(death.CorpseFood) == 0 {
		// Empty-chain invariant kill; worth surfacing louder.
		severity = logging.SeverityError
		r.publish(eventInvariantViolation, severity, playerRef(death.VictimID), nil, "empty segment chain")
	}
	r.publish(eventPlayerDied, severity, playerRef(death.VictimID), nil, nil)

	if death.KillerID != "" {
		r.pending = append(r.pending, playerKilledMessage{Ver: ProtocolVersion, Type: "playerKilled", Killer: death.KillerID, Killed: death.VictimID})
		r.publish(eventPlayerKilled, logging.SeverityInfo, playerRef(death.KillerID), []logging.EntityRef{playerRef(death.VictimID)}, ScorePayload{Score: death.Awarded})
	}
	for _, food := range death.CorpseFood {
		r.pending = append(r.pending, foodSpawnedMessage{Ver: ProtocolVersion, Type: "foodSpawned", Food: *food})
	}
}

// flush sends the queued event messages followed by the state diff.
func (r *Room) flush(state stateMessage) {
	r.mu.Lock()
	pending := r.pending
	r.pending = make([]any, 0)
	r.mu.Unlock()

	for _, payload := range pending {
		r.broadcast(payload)
	}
	r.broadcast(state)
}

func (r *Room) snapshotKeyframeLocked() keyframe {
	return keyframe{
		Sequence: r.sequence,
		Tick:     r.world.tick,
		Players:  r.playersSnapshotLocked(),
		Foods:    r.world.foodSnapshot(),
		Config:   r.world.config,
	}
}

func keyframeMessageFromFrame(frame keyframe, resync bool) keyframeMessage {
	return keyframeMessage{
		Ver:      ProtocolVersion,
		Type:     "keyframe",
		Sequence: frame.Sequence,
		Tick:     frame.Tick,
		Players:  frame.Players,
		Foods:    frame.Foods,
		Config:   frame.Config,
		Resync:   resync,
	}
}

func (r *Room) playersSnapshotLocked() []Player {
	players := make([]Player, 0, len(r.world.players))
	for _, state := range r.world.players {
		players = append(players, state.snapshot())
	}
	return players
}

// broadcast marshals once and writes to every subscriber. A failed write
// disconnects that subscriber's player.
func (r *Room) broadcast(payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("failed to marshal broadcast message: %v", err)
		return
	}

	r.mu.Lock()
	subs := make(map[string]*subscriber, len(r.subscribers))
	for id, sub := range r.subscribers {
		subs[id] = sub
	}
	r.mu.Unlock()

	patches := 0
	if state, ok := payload.(stateMessage); ok {
		patches = len(state.Patches)
	}
	r.telemetry.RecordBroadcast(len(data)*len(subs), patches)

	for id, sub := range subs {
		sub.mu.Lock()
		sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
		err := sub.conn.WriteMessage(websocket.TextMessage, data)
		sub.mu.Unlock()
		if err != nil {
			log.Printf("failed to send update to %s: %v", id, err)
			r.Leave(id)
		}
	}
}

// sendTo writes one payload to a single subscriber.
func (r *Room) sendTo(playerID string, sub *subscriber, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("failed to marshal message for %s: %v", playerID, err)
		return
	}
	sub.mu.Lock()
	sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
	err = sub.conn.WriteMessage(websocket.TextMessage, data)
	sub.mu.Unlock()
	if err != nil {
		log.Printf("failed to send to %s: %v", playerID, err)
		r.Leave(playerID)
	}
}

// PlayerCount reports the number of registered players.
func (r *Room) PlayerCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.world.players)
}

// DiagnosticsSnapshot exposes heartbeat data for the diagnostics endpoint.
func (r *Room) DiagnosticsSnapshot() []diagnosticsPlayer {
	r.mu.Lock()
	defer r.mu.Unlock()

	players := make([]diagnosticsPlayer, 0, len(r.world.players))
	for _, state := range r.world.players {
		players = append(players, diagnosticsPlayer{
			Ver:           ProtocolVersion,
			ID:            state.ID,
			LastHeartbeat: state.lastHeartbeat.UnixMilli(),
			RTTMillis:     state.lastRTT.Milliseconds(),
		})
	}
	return players
}

// TelemetrySnapshot exposes the room's counters.
func (r *Room) TelemetrySnapshot() telemetrySnapshot {
	return r.telemetry.Snapshot()
}

// TickRate reports the simulation frequency for diagnostics.
func TickRate() int {
	return tickRate
}

// HeartbeatInterval reports the expected client heartbeat cadence.
func HeartbeatInterval() time.Duration {
	return heartbeatInterval
}
