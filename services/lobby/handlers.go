package lobby

import (
	"encoding/json"
	"log"
	"time"

	"Sobremesa/models/events"
	models "Sobremesa/models/game"
)

func (l *Lifecycle) handleRoomCreated(payload json.RawMessage) {
	var p events.RoomCreatedPayload
	if !unmarshalPayload(payload, &p, events.EventRoomCreated) {
		return
	}

	l.mu.Lock()
	room := p.Room
	l.room = &room
	l.isHost = room.HostID == l.conn.PlayerID()
	l.state = Waiting
	l.mu.Unlock()

	l.conn.SetCurrentRoom(room.Code)
	log.Printf("[LOBBY-SUCCESS] Room %s created, host=%v", room.Code, l.isHost)
	l.notifyRoomChanged()
}

// handleRoomJoined applies the full room snapshot the server sent back.
// Two outcomes: a fresh join lands in Waiting; a reconnect join (server
// recognized our player id as already seated) restores the room's actual
// status so the player does not appear to "restart" a game in progress.
func (l *Lifecycle) handleRoomJoined(payload json.RawMessage) {
	var p events.RoomJoinedPayload
	if !unmarshalPayload(payload, &p, events.EventRoomJoined) {
		return
	}

	l.mu.Lock()
	room := p.Room
	l.room = &room
	l.isHost = room.HostID == l.conn.PlayerID()
	if p.Rejoin {
		l.state = stateForStatus(room.Status)
	} else {
		l.state = Waiting
	}
	state := l.state
	l.mu.Unlock()

	l.conn.SetCurrentRoom(room.Code)
	if p.Rejoin {
		log.Printf("[LOBBY-SUCCESS] Reconnect join to %s, restored state %s", room.Code, state)
	} else {
		log.Printf("[LOBBY-SUCCESS] Joined room %s", room.Code)
	}
	l.notifyRoomChanged()
}

// handleRoomError surfaces a server rejection (room full, not found...)
// as a dismissible message. If we were mid create/join the state reverts;
// an established room is untouched.
func (l *Lifecycle) handleRoomError(payload json.RawMessage) {
	var p events.RoomErrorPayload
	if !unmarshalPayload(payload, &p, events.EventRoomError) {
		return
	}

	l.mu.Lock()
	if l.state == Creating || l.state == Joining {
		l.state = NoRoom
	}
	cb := l.callbacks.OnRoomError
	l.mu.Unlock()

	log.Printf("[LOBBY-ERROR] Server rejected: %s (%s)", p.Message, p.Code)
	if cb != nil {
		cb(p.Code, p.Message)
	}
}

// handlePlayerJoined appends a roster entry. Duplicate delivery for the
// same id must not append twice: the entry is refreshed instead.
func (l *Lifecycle) handlePlayerJoined(payload json.RawMessage) {
	var p events.PlayerJoinedPayload
	if !unmarshalPayload(payload, &p, events.EventPlayerJoined) {
		return
	}

	l.mu.Lock()
	if l.room == nil {
		l.mu.Unlock()
		return
	}
	if existing := l.room.FindPlayer(p.Player.ID); existing != nil {
		// Idempotent: repeated join (or a reconnect) updates in place
		existing.Name = p.Player.Name
		existing.Icon = p.Player.Icon
		existing.Connected = true
		l.mu.Unlock()
		log.Printf("[LOBBY] Duplicate player_joined for %s, roster unchanged", p.Player.ID)
		l.notifyRoomChanged()
		return
	}
	if l.room.IsFull() {
		// Snapshot events keep the roster within bounds; a full room
		// join should have been rejected server-side
		l.mu.Unlock()
		log.Printf("[LOBBY-WARN] player_joined for full room dropped")
		return
	}
	player := p.Player
	l.room.Players = append(l.room.Players, &player)
	l.mu.Unlock()

	log.Printf("[LOBBY] Player %s (%s) joined", player.Name, player.ID)
	l.notifyRoomChanged()
}

func (l *Lifecycle) handlePlayerLeft(payload json.RawMessage) {
	var p events.PlayerLeftPayload
	if !unmarshalPayload(payload, &p, events.EventPlayerLeft) {
		return
	}

	l.mu.Lock()
	if l.room == nil {
		l.mu.Unlock()
		return
	}
	for i, player := range l.room.Players {
		if player.ID == p.PlayerID {
			if p.Reason == "disconnected" && l.room.Status == models.StatusPlaying {
				// Mid-game disconnects keep the seat so a rejoin can
				// reclaim it; the roster entry is just flagged
				player.Connected = false
			} else {
				l.room.Players = append(l.room.Players[:i], l.room.Players[i+1:]...)
			}
			break
		}
	}
	dissolved := l.roomDissolvedLocked()
	l.mu.Unlock()

	log.Printf("[LOBBY] Player %s left (%s)", p.PlayerID, p.Reason)
	if dissolved {
		l.beginVoid("Not enough players left, returning to the lobby")
	}
	l.notifyRoomChanged()
}

// roomDissolvedLocked: a room is void when the roster is empty, or when a
// game in progress has lost all but one connected player.
func (l *Lifecycle) roomDissolvedLocked() bool {
	if l.room == nil || l.state == Void {
		return false
	}
	if len(l.room.Players) == 0 {
		return true
	}
	return l.room.Status == models.StatusPlaying && l.room.ConnectedCount() <= 1
}

func (l *Lifecycle) handlePlayerKicked(payload json.RawMessage) {
	var p events.PlayerKickedPayload
	if !unmarshalPayload(payload, &p, events.EventPlayerKicked) {
		return
	}

	if p.TargetID == l.conn.PlayerID() {
		// We are the kicked target: force-navigate out of the game
		l.mu.Lock()
		l.stopVoidTimerLocked()
		l.room = nil
		l.isHost = false
		l.state = ForcedOut
		cb := l.callbacks.OnForcedOut
		l.mu.Unlock()

		l.conn.ClearCurrentRoom()
		log.Printf("[LOBBY] We were kicked from the room")
		if cb != nil {
			cb()
		}
		return
	}

	l.mu.Lock()
	if l.room != nil {
		for i, player := range l.room.Players {
			if player.ID == p.TargetID {
				l.room.Players = append(l.room.Players[:i], l.room.Players[i+1:]...)
				break
			}
		}
	}
	l.mu.Unlock()
	log.Printf("[LOBBY] Player %s was kicked by host", p.TargetID)
	l.notifyRoomChanged()
}

func (l *Lifecycle) handleVisibilityChanged(payload json.RawMessage) {
	var p events.VisibilityChangedPayload
	if !unmarshalPayload(payload, &p, events.EventVisibilityChanged) {
		return
	}

	l.mu.Lock()
	if l.room != nil {
		l.room.Public = p.Public
	}
	l.mu.Unlock()
	log.Printf("[LOBBY] Room visibility changed, public=%v", p.Public)
	l.notifyRoomChanged()
}

func (l *Lifecycle) handleGameStarted(payload json.RawMessage) {
	var p events.GameStartedPayload
	if !unmarshalPayload(payload, &p, events.EventGameStarted) {
		return
	}

	l.mu.Lock()
	if l.room == nil {
		l.mu.Unlock()
		return
	}
	l.room.Status = models.StatusPlaying
	l.room.Settings = p.Settings
	l.state = Playing
	hook := l.onGameStarted
	l.mu.Unlock()

	log.Printf("[LOBBY] Game started with %d players", len(p.TurnOrder))
	if hook != nil {
		hook(p)
	}
	l.notifyRoomChanged()
}

// handleRoomVoid: the server dissolved the room under us.
func (l *Lifecycle) handleRoomVoid(payload json.RawMessage) {
	var p events.RoomVoidPayload
	if !unmarshalPayload(payload, &p, events.EventRoomVoid) {
		return
	}
	message := p.Message
	if message == "" {
		message = "The room no longer exists"
	}
	l.beginVoid(message)
}

// beginVoid shows the terminal message and returns to the lobby after a
// short grace delay (not immediately, so the message can be read).
func (l *Lifecycle) beginVoid(message string) {
	l.mu.Lock()
	if l.state == Void {
		l.mu.Unlock()
		return
	}
	l.state = Void
	l.stopVoidTimerLocked()
	l.voidTimer = time.AfterFunc(l.voidGrace, func() {
		l.mu.Lock()
		if l.state != Void {
			l.mu.Unlock()
			return
		}
		l.room = nil
		l.isHost = false
		l.state = NoRoom
		cb := l.callbacks.OnReturnToLobby
		l.mu.Unlock()

		l.conn.ClearCurrentRoom()
		if cb != nil {
			cb(message)
		}
	})
	l.mu.Unlock()
	log.Printf("[LOBBY] Room is void: %s", message)
}
