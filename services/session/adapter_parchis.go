package session

import (
	"encoding/json"
	"log"

	game_constants "Sobremesa/constants/game"
	"Sobremesa/models/events"
	"Sobremesa/services/games/parchis"
)

// ParchisAdapter replicates the race-board state. The board is only
// mutated by applying piece_moved echoes from the server; the local rule
// engine is used to render and to pre-validate before submitting.
type ParchisAdapter struct {
	session *Session

	Board       *parchis.Board
	colorOf     map[string]int // player id -> seat color
	LastDice    int
	LastRoller  string
	FinishOrder []string
}

func NewParchisAdapter() *ParchisAdapter {
	return &ParchisAdapter{
		Board:   parchis.NewBoard(game_constants.PARCHIS_MAX_COLORS, game_constants.PARCHIS_PIECES),
		colorOf: make(map[string]int),
	}
}

func (a *ParchisAdapter) GameType() string { return game_constants.GAME_PARCHIS }

func (a *ParchisAdapter) Bind(s *Session) {
	a.session = s
	s.conn.On(events.EventDiceRolled, a.handleDiceRolled)
	s.conn.On(events.EventPieceMoved, a.handlePieceMoved)
}

// ColorOf resolves a player's seat color from the roster order.
func (a *ParchisAdapter) ColorOf(playerID string) int {
	if color, ok := a.colorOf[playerID]; ok {
		return color
	}
	if room := a.session.rooms.Room(); room != nil {
		if seat := room.SeatOf(playerID); seat >= 0 {
			a.colorOf[playerID] = seat
			return seat
		}
	}
	return -1
}

// RollDice submits the local player's roll. The value arrives back as a
// dice_rolled event; nothing moves until the server says so.
func (a *ParchisAdapter) RollDice() error {
	return a.session.SubmitMove(nil, "roll")
}

// MovePiece submits a piece move after pre-validating it with the same
// rule engine the server runs, so obviously illegal drags never leave
// the device.
func (a *ParchisAdapter) MovePiece(piece int) error {
	color := a.ColorOf(a.session.conn.PlayerID())
	if color < 0 {
		return a.session.SubmitMove(nil, "move", piece)
	}
	if _, err := parchis.Advance(a.Board.Pieces[color][piece], a.LastDice); err != nil {
		return err
	}
	return a.session.SubmitMove(nil, "move", piece)
}

// HasLegalMove reports whether the local player can move at all with the
// last rolled value (the server will confirm a pass otherwise).
func (a *ParchisAdapter) HasLegalMove() bool {
	color := a.ColorOf(a.session.conn.PlayerID())
	return color >= 0 && a.Board.HasLegalMove(color, a.LastDice)
}

func (a *ParchisAdapter) handleDiceRolled(payload json.RawMessage) {
	var p events.DiceRolledPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		log.Printf("[PARCHIS-ERROR] Malformed dice_rolled, ignoring: %v", err)
		return
	}
	a.LastDice = p.Value
	a.LastRoller = p.PlayerID
	log.Printf("[PARCHIS] %s rolled a %d", p.PlayerID, p.Value)
}

// handlePieceMoved applies the authoritative move echo: the new progress,
// any capture (victim back to its holding area) and finish ranking.
func (a *ParchisAdapter) handlePieceMoved(payload json.RawMessage) {
	var p events.PieceMovedPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		log.Printf("[PARCHIS-ERROR] Malformed piece_moved, ignoring: %v", err)
		return
	}
	if p.Color < 0 || p.Color >= len(a.Board.Pieces) ||
		p.Piece < 0 || p.Piece >= len(a.Board.Pieces[p.Color]) {
		log.Printf("[PARCHIS-ERROR] piece_moved out of range (%d,%d), ignoring", p.Color, p.Piece)
		return
	}

	a.Board.Pieces[p.Color][p.Piece] = p.Progress
	if p.Captured != nil {
		a.Board.Pieces[p.Captured.Color][p.Captured.Piece] = parchis.AtHome
		log.Printf("[PARCHIS] Capture: color %d piece %d sent home", p.Captured.Color, p.Captured.Piece)
	}
	if p.Finished && a.Board.AllFinished(p.Color) {
		a.recordFinish(p.PlayerID, p.Rank)
	}

	if p.PlayerID == a.session.conn.PlayerID() {
		a.session.confirmPending()
	}
}

// recordFinish appends a player whose last piece just came home. The
// server's rank wins when present; a duplicate echo must not rank twice.
func (a *ParchisAdapter) recordFinish(playerID string, rank int) {
	for _, id := range a.FinishOrder {
		if id == playerID {
			return
		}
	}
	a.FinishOrder = append(a.FinishOrder, playerID)
	if rank <= 0 {
		rank = len(a.FinishOrder)
	}
	if room := a.session.rooms.Room(); room != nil {
		if player := room.FindPlayer(playerID); player != nil {
			player.FinishedRank = rank
		}
	}
	log.Printf("[PARCHIS] %s finished in position %d", playerID, rank)
}
