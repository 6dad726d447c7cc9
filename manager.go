package server

import (
	"crypto/rand"
	"math/big"
	"sync"

	"snakepit/server/logging"
)

// RoomInfo is returned by the API for the room list.
type RoomInfo struct {
	ID      string `json:"id"`
	Players int    `json:"players"`
}

// Manager owns every live room. Rooms are created on first join and
// disposed when the last player leaves; each room runs its tick loop on its
// own goroutine, so rooms never contend with each other.
type Manager struct {
	mu        sync.RWMutex
	rooms     map[string]*Room
	stops     map[string]chan struct{}
	config    WorldConfig
	publisher logging.Publisher
}

func NewManager(cfg WorldConfig, publisher logging.Publisher) *Manager {
	if publisher == nil {
		publisher = logging.NopPublisher()
	}
	return &Manager{
		rooms:     make(map[string]*Room),
		stops:     make(map[string]chan struct{}),
		config:    cfg.normalized(),
		publisher: publisher,
	}
}

// GetOrCreate returns the room for the given id, spinning one up if needed.
func (m *Manager) GetOrCreate(id string) *Room {
	if id == "" {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if room, ok := m.rooms[id]; ok {
		return room
	}
	return m.startRoomLocked(id)
}

// Lookup returns the room without creating it.
func (m *Manager) Lookup(id string) (*Room, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	room, ok := m.rooms[id]
	return room, ok
}

// Create generates a unique room id and starts the room.
func (m *Manager) Create() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	for {
		id := generateRoomID(6)
		if _, exists := m.rooms[id]; exists {
			continue
		}
		m.startRoomLocked(id)
		return id
	}
}

func (m *Manager) startRoomLocked(id string) *Room {
	room := NewRoom(id, m.config, m.publisher)
	room.OnEmpty = func(emptyID string) {
		m.remove(emptyID)
	}
	stop := make(chan struct{})
	m.rooms[id] = room
	m.stops[id] = stop
	go room.RunSimulation(stop)
	return room
}

func (m *Manager) remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if stop, ok := m.stops[id]; ok {
		close(stop)
		delete(m.stops, id)
	}
	delete(m.rooms, id)
}

// Shutdown stops every room's tick loop.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, stop := range m.stops {
		close(stop)
		delete(m.stops, id)
		delete(m.rooms, id)
	}
}

// List reports every active room with its player count.
func (m *Manager) List() []RoomInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]RoomInfo, 0, len(m.rooms))
	for id, room := range m.rooms {
		out = append(out, RoomInfo{ID: id, Players: room.PlayerCount()})
	}
	return out
}

const roomIDChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

func generateRoomID(n int) string {
	b := make([]byte, n)
	max := big.NewInt(int64(len(roomIDChars)))
	for i := range b {
		idx, _ := rand.Int(rand.Reader, max)
		b[i] = roomIDChars[idx.Int64()]
	}
	return string(b)
}
