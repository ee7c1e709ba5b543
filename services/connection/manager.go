// Package connection owns the single duplex channel a game screen keeps
// open to the remote hub. It exposes typed event subscription and
// fire-and-forget invocations, and it reconnects with automatic room
// rejoin so a player who takes a phone call mid-game is not silently
// dropped from a room the server still thinks is waiting for a reply.
package connection

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	game_constants "Sobremesa/constants/game"
	models "Sobremesa/models/game"
	"Sobremesa/models/events"

	"github.com/gorilla/websocket"
)

// State of the managed channel.
type State int

const (
	Disconnected State = iota
	Connecting
	Connected
	Reconnecting
)

var stateNames = [...]string{"disconnected", "connecting", "connected", "reconnecting"}

func (s State) String() string { return stateNames[int(s)%len(stateNames)] }

// Handler receives the raw payload of one named event. Handlers are
// invoked sequentially from a single goroutine per connection.
type Handler func(payload json.RawMessage)

// StateListener observes state transitions. The message is
// user-displayable and only meaningful for error transitions.
type StateListener func(state State, message string)

const (
	writeTimeout = 10 * time.Second
	pongWait     = 60 * time.Second
	pingPeriod   = 25 * time.Second
)

// Manager is one connection with a stable identity: the screen that
// creates it passes the same handle to every call site, and the mutable
// session fields (current room, player id) live here rather than in
// closures captured at setup time.
type Manager struct {
	mu      sync.Mutex
	writeMu sync.Mutex

	hubURL string
	dialer *websocket.Dialer

	conn    *websocket.Conn
	state   State
	closing bool
	genID   int // increments per physical connection, kills stale loops

	handlers      map[string]Handler
	stateListener StateListener

	// Session identity. PlayerID is fixed for the lifetime of this
	// manager; it survives automatic reconnects so the server can
	// recognize the rejoin.
	playerID    string
	displayName string
	roomCode    string

	maxAttempts int
	baseDelay   time.Duration
	maxDelay    time.Duration
}

// NewManager builds a manager for the given hub endpoint. Nothing is
// dialed until Connect.
func NewManager(hubURL, playerID, displayName string) *Manager {
	return &Manager{
		hubURL:      hubURL,
		dialer:      websocket.DefaultDialer,
		handlers:    make(map[string]Handler),
		playerID:    playerID,
		displayName: displayName,
		maxAttempts: game_constants.RECONNECT_MAX_ATTEMPTS,
		baseDelay:   game_constants.RECONNECT_BASE_DELAY,
		maxDelay:    game_constants.RECONNECT_MAX_DELAY,
	}
}

func (m *Manager) PlayerID() string    { return m.playerID }
func (m *Manager) DisplayName() string { return m.displayName }

// State returns the current channel state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// OnStateChange registers the single state listener.
func (m *Manager) OnStateChange(l StateListener) {
	m.mu.Lock()
	m.stateListener = l
	m.mu.Unlock()
}

// CurrentRoom returns the room code being replayed on reconnect ("" when
// not seated anywhere).
func (m *Manager) CurrentRoom() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.roomCode
}

// SetCurrentRoom records the room to rejoin automatically after a
// transport loss. The lobby lifecycle calls this on join ack.
func (m *Manager) SetCurrentRoom(code string) {
	m.mu.Lock()
	m.roomCode = code
	m.mu.Unlock()
}

// ClearCurrentRoom forgets the replayed room (after leaving or being
// kicked).
func (m *Manager) ClearCurrentRoom() {
	m.mu.Lock()
	m.roomCode = ""
	m.mu.Unlock()
}

// On registers exactly one handler per event name for the connection's
// lifetime. Registration happens once, outside the reconnect loop, so
// handlers survive transport loss.
func (m *Manager) On(event string, handler Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.handlers[event]; exists {
		log.Printf("[CONN-WARN] Handler for event %s replaced", event)
	}
	m.handlers[event] = handler
}

// Connect establishes the duplex channel. It is idempotent: calls made
// while a connection attempt is in flight or already established do not
// open duplicate channels.
func (m *Manager) Connect(ctx context.Context) error {
	m.mu.Lock()
	if m.state == Connected || m.state == Connecting || m.state == Reconnecting {
		m.mu.Unlock()
		return nil
	}
	m.closing = false
	m.state = Connecting
	m.mu.Unlock()
	m.notify(Connecting, "")

	conn, _, err := m.dialer.DialContext(ctx, m.hubURL, nil)
	if err != nil {
		m.mu.Lock()
		m.state = Disconnected
		m.mu.Unlock()
		m.notify(Disconnected, "Could not reach the game server")
		return &models.TransportError{Message: "connect failed", Err: err}
	}

	m.adopt(ctx, conn)
	m.mu.Lock()
	m.state = Connected
	m.mu.Unlock()
	m.notify(Connected, "")
	log.Printf("[CONN] Connected to hub %s as player %s", m.hubURL, m.playerID)
	return nil
}

// adopt installs a freshly dialed socket and starts its read/ping loops.
// Caller updates state afterwards.
func (m *Manager) adopt(ctx context.Context, conn *websocket.Conn) {
	m.mu.Lock()
	m.conn = conn
	m.genID++
	gen := m.genID
	m.mu.Unlock()

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	go m.readLoop(ctx, conn, gen)
	go m.pingLoop(conn, gen)
}

// Invoke sends a named method invocation. Fire-and-forget: results
// arrive as later events, never as a synchronous reply.
func (m *Manager) Invoke(method string, args ...any) error {
	m.mu.Lock()
	conn := m.conn
	state := m.state
	m.mu.Unlock()

	if conn == nil || state != Connected {
		return &models.TransportError{Message: "invoke " + method + " while " + state.String()}
	}
	return m.writeFrame(conn, events.Frame{
		Type:   events.FrameInvoke,
		Method: method,
		Args:   args,
	})
}

func (m *Manager) writeFrame(conn *websocket.Conn, frame events.Frame) error {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := conn.WriteJSON(frame); err != nil {
		return &models.TransportError{Message: "write failed", Err: err}
	}
	return nil
}

// Close tears the connection down when the owning screen is discarded.
// The server is explicitly told about the departure first, so no ghost
// seat is left blocking the room's player count.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.closing {
		m.mu.Unlock()
		return
	}
	m.closing = true
	conn := m.conn
	inRoom := m.roomCode != ""
	m.conn = nil
	m.state = Disconnected
	m.roomCode = ""
	m.mu.Unlock()

	if conn != nil {
		if inRoom {
			// Best effort; the socket is going away either way
			if err := m.writeFrame(conn, events.Frame{
				Type:   events.FrameInvoke,
				Method: events.MethodLeaveRoom,
			}); err != nil {
				log.Printf("[CONN-WARN] leave_room on close failed: %v", err)
			}
		}
		m.writeMu.Lock()
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		m.writeMu.Unlock()
		conn.Close()
	}
	m.notify(Disconnected, "")
	log.Printf("[CONN] Connection closed by owner")
}

func (m *Manager) notify(state State, message string) {
	m.mu.Lock()
	l := m.stateListener
	m.mu.Unlock()
	if l != nil {
		l(state, message)
	}
}
