package session

import (
	"encoding/json"
	"log"

	game_constants "Sobremesa/constants/game"
	"Sobremesa/models/events"
	"Sobremesa/services/games/rps"
)

// RPSAdapter handles the simultaneous-choice game against another human.
// Both choices are revealed by the server's round_result; the local rule
// engine only re-derives the outcome to render it, using the exact same
// evaluator the bot referee uses (bot.go).
type RPSAdapter struct {
	session *Session

	LastRound  events.RoundResultPayload
	LastResult rps.Result
	hasResult  bool
}

func NewRPSAdapter() *RPSAdapter { return &RPSAdapter{} }

func (a *RPSAdapter) GameType() string { return game_constants.GAME_RPS }

func (a *RPSAdapter) Bind(s *Session) {
	a.session = s
	s.conn.On(events.EventRoundResult, a.handleRoundResult)
}

// Play submits the local choice. Both players answer simultaneously, so
// there is no turn gate, only the phase check. The player entry is
// marked optimistically so the UI can show "locked in", and unmarked on
// rejection.
func (a *RPSAdapter) Play(choice rps.Choice) error {
	localID := a.session.conn.PlayerID()
	return a.session.submitSimultaneous(func() (revert func()) {
		room := a.session.rooms.Room()
		if room == nil {
			return func() {}
		}
		if player := room.FindPlayer(localID); player != nil {
			player.Choice = choice.String()
			return func() { player.Choice = "" }
		}
		return func() {}
	}, "choose", choice.String())
}

func (a *RPSAdapter) handleRoundResult(payload json.RawMessage) {
	var p events.RoundResultPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		log.Printf("[RPS-ERROR] Malformed round_result, ignoring: %v", err)
		return
	}

	a.LastRound = p
	a.hasResult = true
	a.session.confirmPending()

	// Re-derive the outcome with the shared evaluator; a mismatch with
	// the server would mean the mirrored rule drifted
	if len(p.Choices) == 2 {
		ids := make([]string, 0, 2)
		for id := range p.Choices {
			ids = append(ids, id)
		}
		first, err1 := rps.ParseChoice(p.Choices[ids[0]])
		second, err2 := rps.ParseChoice(p.Choices[ids[1]])
		if err1 == nil && err2 == nil {
			a.LastResult = rps.Outcome(first, second)
			draw := a.LastResult == rps.Draw
			if draw != p.Draw {
				log.Printf("[RPS-WARN] Local outcome disagrees with server for round %d", p.Round)
			}
		}
	}
	log.Printf("[RPS] Round %d result, winner %q draw=%v", p.Round, p.WinnerID, p.Draw)
}
