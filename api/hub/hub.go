// Package hub is an in-process double of the authoritative game hub,
// used by integration tests and by the hubsim command for local play.
// It speaks the same invoke/event frame protocol as the production hub
// and enforces the same room rules, but referees simplified games.
package hub

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	game_constants "Sobremesa/constants/game"
	"Sobremesa/models/events"
	models "Sobremesa/models/game"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// client is one websocket attachment. A player can reattach with a new
// socket after a drop; the seat survives, the client does not.
type client struct {
	hub  *Hub
	conn *websocket.Conn

	writeMu sync.Mutex

	playerID string
	roomCode string
}

// Hub owns every room and every attached client.
type Hub struct {
	mu      sync.Mutex
	rooms   map[string]*hubRoom
	clients map[string]*client // player id -> live attachment
}

func New() *Hub {
	return &Hub{
		rooms:   make(map[string]*hubRoom),
		clients: make(map[string]*client),
	}
}

// HandleWS upgrades the request and serves frames until the socket dies.
func (h *Hub) HandleWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[HUB-ERROR] Upgrade failed: %v", err)
		return
	}
	cl := &client{hub: h, conn: conn}
	cl.readLoop()
}

// PublicRooms snapshots the joinable public rooms for one venue.
func (h *Hub) PublicRooms(venueCode string) []models.Room {
	h.mu.Lock()
	defer h.mu.Unlock()
	rooms := make([]models.Room, 0)
	for _, room := range h.rooms {
		if room.state.Public && room.state.Status == models.StatusWaiting &&
			(venueCode == "" || room.state.VenueCode == venueCode) {
			rooms = append(rooms, *room.state)
		}
	}
	return rooms
}

func (cl *client) readLoop() {
	defer cl.hub.detach(cl)
	for {
		_, raw, err := cl.conn.ReadMessage()
		if err != nil {
			return
		}
		var frame events.Frame
		if err := json.Unmarshal(raw, &frame); err != nil {
			log.Printf("[HUB-WARN] Dropping malformed frame: %v", err)
			continue
		}
		if frame.Type != events.FrameInvoke {
			continue
		}
		cl.hub.dispatch(cl, frame)
	}
}

func (cl *client) send(event string, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		log.Printf("[HUB-ERROR] Could not encode %s payload: %v", event, err)
		return
	}
	frame := events.Frame{Type: events.FrameEvent, Event: event, Payload: raw}
	cl.writeMu.Lock()
	defer cl.writeMu.Unlock()
	if err := cl.conn.WriteJSON(frame); err != nil {
		log.Printf("[HUB-WARN] Write to %s failed: %v", cl.playerID, err)
	}
}

func (h *Hub) dispatch(cl *client, frame events.Frame) {
	h.mu.Lock()
	defer h.mu.Unlock()

	switch frame.Method {
	case events.MethodCreateRoom:
		h.createRoom(cl, frame.Args)
	case events.MethodJoinRoom:
		h.joinRoom(cl, frame.Args)
	case events.MethodLeaveRoom:
		h.leaveRoom(cl)
	case events.MethodKickPlayer:
		h.kickPlayer(cl, frame.Args)
	case events.MethodSetVisibility:
		h.setVisibility(cl, frame.Args)
	case events.MethodStartGame:
		h.startGame(cl)
	case events.MethodSubmitMove:
		h.submitMove(cl, frame.Args)
	default:
		log.Printf("[HUB-WARN] Unknown method %q from %s", frame.Method, cl.playerID)
	}
}

// createRoom args: [code, settings, playerID, name]
func (h *Hub) createRoom(cl *client, args []any) {
	var code, playerID, name string
	var settings models.GameSettings
	if !decodeArg(args, 0, &code) || !decodeArg(args, 1, &settings) ||
		!decodeArg(args, 2, &playerID) || !decodeArg(args, 3, &name) {
		return
	}
	if _, exists := h.rooms[code]; exists {
		cl.send(events.EventRoomError, events.RoomErrorPayload{
			Code: "room_exists", Message: "That code is already in use",
		})
		return
	}

	room := newHubRoom(code, playerID, settings)
	room.seat(&models.Player{ID: playerID, Name: name, Connected: true})
	h.rooms[code] = room
	h.attach(cl, playerID, code)

	cl.send(events.EventRoomCreated, events.RoomCreatedPayload{Room: *room.state})
	log.Printf("[HUB] Room %s created by %s", code, playerID)
}

// joinRoom args: [code, playerID, name]
func (h *Hub) joinRoom(cl *client, args []any) {
	var code, playerID, name string
	if !decodeArg(args, 0, &code) || !decodeArg(args, 1, &playerID) || !decodeArg(args, 2, &name) {
		return
	}
	room, ok := h.rooms[code]
	if !ok {
		cl.send(events.EventRoomError, events.RoomErrorPayload{
			Code: models.RoomErrNotFound, Message: "No such room",
		})
		return
	}

	// A known player id is a reconnect: the seat was kept
	if player := room.state.FindPlayer(playerID); player != nil {
		player.Connected = true
		h.attach(cl, playerID, code)
		cl.send(events.EventRoomJoined, events.RoomJoinedPayload{
			Room: *room.state, PlayerID: playerID, Rejoin: true,
		})
		h.broadcastExcept(room, playerID, events.EventPlayerJoined,
			events.PlayerJoinedPayload{Player: *player})
		log.Printf("[HUB] %s rejoined %s", playerID, code)
		return
	}

	if room.state.Status != models.StatusWaiting {
		cl.send(events.EventRoomError, events.RoomErrorPayload{
			Code: models.RoomErrStarted, Message: "The game already started",
		})
		return
	}
	if room.state.IsFull() {
		cl.send(events.EventRoomError, events.RoomErrorPayload{
			Code: models.RoomErrFull, Message: "The room is full",
		})
		return
	}

	player := &models.Player{ID: playerID, Name: name, Connected: true}
	room.seat(player)
	h.attach(cl, playerID, code)

	cl.send(events.EventRoomJoined, events.RoomJoinedPayload{
		Room: *room.state, PlayerID: playerID, Rejoin: false,
	})
	h.broadcastExcept(room, playerID, events.EventPlayerJoined,
		events.PlayerJoinedPayload{Player: *player})
	log.Printf("[HUB] %s joined %s", playerID, code)
}

func (h *Hub) leaveRoom(cl *client) {
	room := h.roomOf(cl)
	if room == nil {
		return
	}
	playerID := cl.playerID
	room.unseat(playerID)
	delete(h.clients, playerID)
	cl.roomCode = ""

	if playerID == room.state.HostID || len(room.state.Players) == 0 {
		// Host leaving dissolves the room for everyone left behind
		h.broadcast(room, events.EventRoomVoid, events.RoomVoidPayload{
			Message: "The host closed the table",
		})
		delete(h.rooms, room.state.Code)
		log.Printf("[HUB] Room %s dissolved", room.state.Code)
		return
	}
	h.broadcast(room, events.EventPlayerLeft, events.PlayerLeftPayload{
		PlayerID: playerID, Reason: "left",
	})
}

// kickPlayer args: [targetID]
func (h *Hub) kickPlayer(cl *client, args []any) {
	var targetID string
	if !decodeArg(args, 0, &targetID) {
		return
	}
	room := h.roomOf(cl)
	if room == nil || cl.playerID != room.state.HostID || targetID == room.state.HostID {
		return
	}
	if room.state.FindPlayer(targetID) == nil {
		return
	}
	h.broadcast(room, events.EventPlayerKicked, events.PlayerKickedPayload{
		TargetID: targetID, ByID: cl.playerID,
	})
	room.unseat(targetID)
	delete(h.clients, targetID)
	log.Printf("[HUB] %s kicked from %s", targetID, room.state.Code)
}

// setVisibility args: [public]
func (h *Hub) setVisibility(cl *client, args []any) {
	var public bool
	if !decodeArg(args, 0, &public) {
		return
	}
	room := h.roomOf(cl)
	if room == nil || cl.playerID != room.state.HostID {
		return
	}
	room.state.Public = public
	h.broadcast(room, events.EventVisibilityChanged,
		events.VisibilityChangedPayload{Public: public})
}

func (h *Hub) startGame(cl *client) {
	room := h.roomOf(cl)
	if room == nil || cl.playerID != room.state.HostID {
		return
	}
	if len(room.state.Players) < game_constants.MinPlayers(room.state.Settings.GameType) {
		cl.send(events.EventRoomError, events.RoomErrorPayload{
			Code: "not_enough_players", Message: "Waiting for more players",
		})
		return
	}

	room.begin()
	h.broadcast(room, events.EventGameStarted, events.GameStartedPayload{
		Settings: room.state.Settings, TurnOrder: room.turnOrder,
	})
	h.broadcast(room, events.EventRoundStarted, events.RoundStartedPayload{
		Round: room.round, Seconds: room.state.Settings.TurnSeconds,
	})

	switch room.state.Settings.GameType {
	case game_constants.GAME_RPS:
		// Simultaneous choices, no turn pointer
	case game_constants.GAME_DRAWING:
		h.announceTurn(room)
		h.offerWords(room)
	case game_constants.GAME_OKEY:
		h.broadcast(room, events.EventIndicatorSet, events.IndicatorSetPayload{
			Indicator: events.TilePayload{
				Color: room.indicator.Color, Number: room.indicator.Number,
			},
		})
		h.announceTurn(room)
	default:
		h.announceTurn(room)
	}
	log.Printf("[HUB] Game started in %s", room.state.Code)
}

// submitMove args: [playerID, verb, verb args...]
func (h *Hub) submitMove(cl *client, args []any) {
	room := h.roomOf(cl)
	if room == nil {
		return
	}
	var playerID, verb string
	if !decodeArg(args, 0, &playerID) || !decodeArg(args, 1, &verb) {
		return
	}
	if playerID != cl.playerID {
		cl.send(events.EventMoveRejected, events.MoveRejectedPayload{Reason: "identity_mismatch"})
		return
	}
	h.referee(cl, room, verb, args[2:])
}

func (h *Hub) announceTurn(room *hubRoom) {
	h.broadcast(room, events.EventTurnChanged, events.TurnChangedPayload{
		PlayerID: room.currentTurn(), Seconds: room.state.Settings.TurnSeconds,
	})
}

// ---------------------------------------------------------------
// attachment plumbing, all under h.mu
// ---------------------------------------------------------------

func (h *Hub) attach(cl *client, playerID, roomCode string) {
	cl.playerID = playerID
	cl.roomCode = roomCode
	h.clients[playerID] = cl
}

// detach handles a dead socket: the seat is kept so the player can
// rejoin, but the roster shows them disconnected.
func (h *Hub) detach(cl *client) {
	cl.conn.Close()
	h.mu.Lock()
	defer h.mu.Unlock()
	if cl.playerID == "" || h.clients[cl.playerID] != cl {
		return
	}
	delete(h.clients, cl.playerID)
	room := h.roomOf(cl)
	if room == nil {
		return
	}
	if player := room.state.FindPlayer(cl.playerID); player != nil {
		player.Connected = false
	}
	h.broadcast(room, events.EventPlayerLeft, events.PlayerLeftPayload{
		PlayerID: cl.playerID, Reason: "disconnected",
	})
}

func (h *Hub) roomOf(cl *client) *hubRoom {
	if cl.roomCode == "" {
		return nil
	}
	return h.rooms[cl.roomCode]
}

func (h *Hub) broadcast(room *hubRoom, event string, payload any) {
	h.broadcastExcept(room, "", event, payload)
}

func (h *Hub) broadcastExcept(room *hubRoom, skipID, event string, payload any) {
	for _, player := range room.state.Players {
		if player.ID == skipID {
			continue
		}
		if cl, ok := h.clients[player.ID]; ok {
			cl.send(event, payload)
		}
	}
}

// decodeArg re-decodes one loosely typed invoke argument into its
// concrete shape via a JSON round trip.
func decodeArg(args []any, index int, v any) bool {
	if index >= len(args) {
		log.Printf("[HUB-WARN] Invoke missing argument %d", index)
		return false
	}
	raw, err := json.Marshal(args[index])
	if err != nil {
		return false
	}
	if err := json.Unmarshal(raw, v); err != nil {
		log.Printf("[HUB-WARN] Bad invoke argument %d: %v", index, err)
		return false
	}
	return true
}
