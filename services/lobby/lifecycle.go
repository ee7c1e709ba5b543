// Package lobby drives the room lifecycle on the client: create, join,
// leave, kick, visibility and roster tracking. The room replica is only
// ever mutated by applying server events or whole snapshots; no local
// code path writes scores or positions on its own.
package lobby

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	game_constants "Sobremesa/constants/game"
	"Sobremesa/models/events"
	models "Sobremesa/models/game"
	"Sobremesa/services/connection"
	"Sobremesa/utils"
)

// LifecycleState of the local player relative to rooms.
type LifecycleState int

const (
	NoRoom LifecycleState = iota
	Creating
	Joining
	Waiting
	Starting
	Playing
	Finished
	Void      // room dissolved under us; showing terminal message
	ForcedOut // we were the kick target; navigate out
)

var lifecycleNames = [...]string{
	"no_room", "creating", "joining", "waiting",
	"starting", "playing", "finished", "void", "forced_out",
}

func (s LifecycleState) String() string { return lifecycleNames[int(s)%len(lifecycleNames)] }

// Callbacks lets the rendering layer react without polling. All callbacks
// run on the connection's event goroutine.
type Callbacks struct {
	OnRoomChanged   func(room *models.Room)
	OnRoomError     func(code, message string) // dismissible, no transition
	OnForcedOut     func()                     // local player was kicked
	OnReturnToLobby func(message string)       // after the void grace delay
}

// Lifecycle tracks one room membership per connection.
type Lifecycle struct {
	mu   sync.Mutex
	conn *connection.Manager

	state     LifecycleState
	room      *models.Room
	isHost    bool
	voidTimer *time.Timer
	voidGrace time.Duration

	callbacks     Callbacks
	onGameStarted func(events.GameStartedPayload)
}

// OnGameStarted lets the game session observe the start event without
// registering a second connection handler for it.
func (l *Lifecycle) OnGameStarted(fn func(events.GameStartedPayload)) {
	l.mu.Lock()
	l.onGameStarted = fn
	l.mu.Unlock()
}

// MarkFinished is called by the game session when the terminal event
// arrives; the room sticks around so the end screen can show it.
func (l *Lifecycle) MarkFinished() {
	l.mu.Lock()
	if l.room != nil {
		l.room.Status = models.StatusFinished
	}
	l.state = Finished
	l.mu.Unlock()
	l.notifyRoomChanged()
}

// New wires a lifecycle to a connection. Event handlers are registered
// once here and stay valid across reconnects.
func New(conn *connection.Manager, callbacks Callbacks) *Lifecycle {
	l := &Lifecycle{
		conn:      conn,
		callbacks: callbacks,
		voidGrace: game_constants.VOID_ROOM_GRACE,
	}

	conn.On(events.EventRoomCreated, l.handleRoomCreated)
	conn.On(events.EventRoomJoined, l.handleRoomJoined)
	conn.On(events.EventRoomError, l.handleRoomError)
	conn.On(events.EventRoomVoid, l.handleRoomVoid)
	conn.On(events.EventPlayerJoined, l.handlePlayerJoined)
	conn.On(events.EventPlayerLeft, l.handlePlayerLeft)
	conn.On(events.EventPlayerKicked, l.handlePlayerKicked)
	conn.On(events.EventVisibilityChanged, l.handleVisibilityChanged)
	conn.On(events.EventGameStarted, l.handleGameStarted)

	return l
}

// State returns the current lifecycle state.
func (l *Lifecycle) State() LifecycleState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Room returns the current room replica (nil outside a room). Callers
// must treat it as read-only.
func (l *Lifecycle) Room() *models.Room {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.room
}

// IsHost reports whether the local player created the current room. Host
// status is never transferred.
func (l *Lifecycle) IsHost() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.isHost
}

// CreateRoom generates a locally unique room code and asks the server to
// create the room. The caller becomes host on acknowledgment.
func (l *Lifecycle) CreateRoom(settings models.GameSettings) (string, error) {
	if settings.MaxPlayers <= 0 {
		settings.MaxPlayers = game_constants.DEFAULT_MAX_PLAYERS
	}
	if settings.Rounds <= 0 {
		settings.Rounds = game_constants.DEFAULT_ROUNDS
	}

	code := utils.RoomCode(game_constants.ROOM_CODE_LENGTH)

	l.mu.Lock()
	l.state = Creating
	l.mu.Unlock()

	err := l.conn.Invoke(events.MethodCreateRoom, code, settings,
		l.conn.PlayerID(), l.conn.DisplayName())
	if err != nil {
		l.mu.Lock()
		l.state = NoRoom
		l.mu.Unlock()
		return "", err
	}
	log.Printf("[LOBBY] create_room invoked, code %s", code)
	return code, nil
}

// JoinRoom asks the server to seat us in an existing room. The server
// answers with either a fresh join or a reconnect join (see
// handleRoomJoined).
func (l *Lifecycle) JoinRoom(code string) error {
	l.mu.Lock()
	l.state = Joining
	l.mu.Unlock()

	err := l.conn.Invoke(events.MethodJoinRoom, code,
		l.conn.PlayerID(), l.conn.DisplayName())
	if err != nil {
		l.mu.Lock()
		l.state = NoRoom
		l.mu.Unlock()
		return err
	}
	log.Printf("[LOBBY] join_room invoked for %s", code)
	return nil
}

// Leave exits the room voluntarily: pending room timers are cancelled and
// the server is told before the local state is forgotten.
func (l *Lifecycle) Leave() error {
	l.mu.Lock()
	if l.room == nil {
		l.mu.Unlock()
		return models.ErrNoRoom
	}
	l.stopVoidTimerLocked()
	l.room = nil
	l.isHost = false
	l.state = NoRoom
	l.mu.Unlock()

	l.conn.ClearCurrentRoom()
	if err := l.conn.Invoke(events.MethodLeaveRoom); err != nil {
		log.Printf("[LOBBY-WARN] leave_room invoke failed: %v", err)
		return err
	}
	log.Printf("[LOBBY] Left room")
	return nil
}

// KickPlayer is host-only. Non-host calls are silently ignored (the UI
// does not even expose the control), matching the server's own guard.
func (l *Lifecycle) KickPlayer(targetID string) error {
	l.mu.Lock()
	host := l.isHost
	l.mu.Unlock()
	if !host {
		log.Printf("[LOBBY-WARN] Ignoring kick attempt from non-host")
		return nil
	}
	return l.conn.Invoke(events.MethodKickPlayer, targetID)
}

// SetVisibility toggles public-lobby discovery. Host-only, and sent to
// the server immediately: players change their mind before a second
// player ever joins.
func (l *Lifecycle) SetVisibility(public bool) error {
	l.mu.Lock()
	host := l.isHost
	l.mu.Unlock()
	if !host {
		return models.ErrNotHost
	}
	return l.conn.Invoke(events.MethodSetVisibility, public)
}

// Start begins the game. Host-only, and gated on the per-game minimum
// roster size so the UI can explain why the button is disabled.
func (l *Lifecycle) Start() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.isHost {
		return models.ErrNotHost
	}
	if l.room == nil {
		return models.ErrNoRoom
	}
	if len(l.room.Players) < game_constants.MinPlayers(l.room.Settings.GameType) {
		return models.ErrNotEnoughPlayers
	}
	return l.conn.Invoke(events.MethodStartGame)
}

// CanStart mirrors Start's gate for the UI.
func (l *Lifecycle) CanStart() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.isHost && l.room != nil &&
		len(l.room.Players) >= game_constants.MinPlayers(l.room.Settings.GameType)
}

func (l *Lifecycle) stopVoidTimerLocked() {
	if l.voidTimer != nil {
		l.voidTimer.Stop()
		l.voidTimer = nil
	}
}

func (l *Lifecycle) notifyRoomChanged() {
	l.mu.Lock()
	room := l.room
	cb := l.callbacks.OnRoomChanged
	l.mu.Unlock()
	if cb != nil {
		cb(room)
	}
}

// stateForStatus maps a snapshot's room status to the lifecycle state,
// used on (re)joins so a reconnecting player lands in the game in
// progress instead of a waiting screen.
func stateForStatus(status models.RoomStatus) LifecycleState {
	switch status {
	case models.StatusStarting:
		return Starting
	case models.StatusPlaying:
		return Playing
	case models.StatusFinished:
		return Finished
	default:
		return Waiting
	}
}

// unmarshalPayload decodes an event payload, logging and reporting
// failure so the caller can drop the single event.
func unmarshalPayload(payload json.RawMessage, v any, event string) bool {
	if err := json.Unmarshal(payload, v); err != nil {
		log.Printf("[LOBBY-ERROR] Malformed %s payload, ignoring event: %v", event, err)
		return false
	}
	return true
}
