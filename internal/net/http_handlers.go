package net

import (
	"encoding/json"
	"errors"
	"log"
	nethttp "net/http"
	"time"

	"github.com/gorilla/websocket"

	"snakepit/server"
)

type HTTPHandlerConfig struct {
	Logger *log.Logger
}

// clientMessage is the inbound websocket envelope; Type selects which
// fields matter.
type clientMessage struct {
	Ver      int     `json:"ver,omitempty"`
	Type     string  `json:"type"`
	Angle    float64 `json:"angle"`
	Active   bool    `json:"active"`
	FoodID   string  `json:"foodId"`
	HeadX    float64 `json:"headX"`
	HeadY    float64 `json:"headY"`
	FoodX    float64 `json:"foodX"`
	FoodY    float64 `json:"foodY"`
	Sequence uint64  `json:"sequence"`
	SentAt   int64   `json:"sentAt"`
}

type heartbeatAck struct {
	Ver        int    `json:"ver"`
	Type       string `json:"type"`
	ServerTime int64  `json:"serverTime"`
	ClientTime int64  `json:"clientTime"`
	RTTMillis  int64  `json:"rtt"`
}

// NewHTTPHandler wires the join, websocket, and diagnostics endpoints
// around a room manager.
func NewHTTPHandler(rooms *server.Manager, cfg HTTPHandlerConfig) nethttp.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	mux := nethttp.NewServeMux()

	mux.HandleFunc("/health", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok"))
	})

	mux.HandleFunc("/rooms", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		writeJSON(w, rooms.List(), logger)
	})

	mux.HandleFunc("/diagnostics", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		roomID := r.URL.Query().Get("room")
		room, ok := rooms.Lookup(roomID)
		if !ok {
			httpError(w, "unknown room", nethttp.StatusNotFound)
			return
		}
		payload := struct {
			Status     string `json:"status"`
			ServerTime int64  `json:"serverTime"`
			Players    any    `json:"players"`
			TickRate   int    `json:"tickRate"`
			Heartbeat  int64  `json:"heartbeatMillis"`
			Telemetry  any    `json:"telemetry"`
		}{
			Status:     "ok",
			ServerTime: time.Now().UnixMilli(),
			Players:    room.DiagnosticsSnapshot(),
			TickRate:   server.TickRate(),
			Heartbeat:  server.HeartbeatInterval().Milliseconds(),
			Telemetry:  room.TelemetrySnapshot(),
		}
		writeJSON(w, payload, logger)
	})

	mux.HandleFunc("/join", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Method != nethttp.MethodPost {
			httpError(w, "method not allowed", nethttp.StatusMethodNotAllowed)
			return
		}
		roomID := r.URL.Query().Get("room")
		if roomID == "" {
			roomID = rooms.Create()
		}
		room := rooms.GetOrCreate(roomID)
		if room == nil {
			httpError(w, "invalid room", nethttp.StatusBadRequest)
			return
		}

		var opts server.JoinOptions
		if r.Body != nil {
			defer r.Body.Close()
			if err := json.NewDecoder(r.Body).Decode(&opts); err != nil {
				opts = server.JoinOptions{}
			}
		}

		resp, err := room.Join(opts)
		if errors.Is(err, server.ErrRoomFull) {
			httpError(w, "room full", nethttp.StatusServiceUnavailable)
			return
		}
		if err != nil {
			httpError(w, "join failed", nethttp.StatusInternalServerError)
			return
		}

		payload := struct {
			Room string `json:"room"`
			Data any    `json:"data"`
		}{Room: roomID, Data: resp}
		writeJSON(w, payload, logger)
	})

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *nethttp.Request) bool {
			return true
		},
	}

	mux.HandleFunc("/ws", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		roomID := r.URL.Query().Get("room")
		playerID := r.URL.Query().Get("id")
		if roomID == "" || playerID == "" {
			httpError(w, "missing room or id", nethttp.StatusBadRequest)
			return
		}
		room, ok := rooms.Lookup(roomID)
		if !ok {
			httpError(w, "unknown room", nethttp.StatusNotFound)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Printf("upgrade failed for %s: %v", playerID, err)
			return
		}

		sub, ok := room.Subscribe(playerID, conn)
		if !ok {
			message := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "unknown player")
			conn.WriteMessage(websocket.CloseMessage, message)
			conn.Close()
			return
		}

		readLoop(room, playerID, conn, sub, logger)
	})

	return mux
}

// readLoop pumps client intents into the room until the connection drops.
// Malformed or out-of-context messages are discarded without a reply.
func readLoop(room *server.Room, playerID string, conn *websocket.Conn, sub server.SubscriberWriter, logger *log.Logger) {
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			room.Leave(playerID)
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			logger.Printf("discarding malformed message from %s: %v", playerID, err)
			continue
		}

		switch msg.Type {
		case "move":
			room.SetHeading(playerID, msg.Angle)
		case "boost":
			room.SetBoost(playerID, msg.Active)
		case "respawn":
			room.Respawn(playerID)
		case "eatFood":
			room.ClaimFood(playerID, msg.FoodID, msg.HeadX, msg.HeadY)
		case "keyframeRequest":
			room.RequestKeyframe(playerID, msg.Sequence)
		case "heartbeat":
			now := time.Now()
			rtt, ok := room.UpdateHeartbeat(playerID, now, msg.SentAt)
			if !ok {
				continue
			}
			ack := heartbeatAck{
				Ver:        server.ProtocolVersion,
				Type:       "heartbeat",
				ServerTime: now.UnixMilli(),
				ClientTime: msg.SentAt,
				RTTMillis:  rtt.Milliseconds(),
			}
			if err := sub.WriteJSON(ack); err != nil {
				room.Leave(playerID)
				return
			}
		default:
			logger.Printf("unknown message type %q from %s", msg.Type, playerID)
		}
	}
}

func writeJSON(w nethttp.ResponseWriter, payload any, logger *log.Logger) {
	data, err := json.Marshal(payload)
	if err != nil {
		logger.Printf("failed to encode response: %v", err)
		httpError(w, "failed to encode", nethttp.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func httpError(w nethttp.ResponseWriter, message string, code int) {
	nethttp.Error(w, message, code)
}
