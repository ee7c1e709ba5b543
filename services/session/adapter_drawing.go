package session

import (
	"encoding/json"
	"log"

	game_constants "Sobremesa/constants/game"
	"Sobremesa/models/events"
	models "Sobremesa/models/game"
	"Sobremesa/services/games/drawing"
)

// DrawingAdapter tracks the guessing game: who draws, the word options
// offered to the drawer, and the masked hint state. The mask is updated
// only by explicit server hint events, never inferred from guesses.
type DrawingAdapter struct {
	session *Session

	DrawerID    string
	WordOptions []string
	Hint        *drawing.HintState
	Word        string // only populated when we are the drawer
}

func NewDrawingAdapter() *DrawingAdapter { return &DrawingAdapter{} }

func (a *DrawingAdapter) GameType() string { return game_constants.GAME_DRAWING }

func (a *DrawingAdapter) Bind(s *Session) {
	a.session = s
	s.conn.On(events.EventWordOptions, a.handleWordOptions)
	s.conn.On(events.EventWordChosen, a.handleWordChosen)
	s.conn.On(events.EventHintRevealed, a.handleHintRevealed)
	s.conn.On(events.EventGuessResult, a.handleGuessResult)
}

// IsDrawer reports whether the local player draws this round.
func (a *DrawingAdapter) IsDrawer() bool {
	return a.DrawerID == a.session.conn.PlayerID()
}

// ChooseWord is the drawer's pick from the offered options. It happens
// during the selecting phase, before the playing gate opens, so it goes
// straight to the hub.
func (a *DrawingAdapter) ChooseWord(word string) error {
	if a.session.Phase() != PhaseSelecting || !a.IsDrawer() {
		return &models.ValidationRejection{Reason: "not selecting a word"}
	}
	return a.session.conn.Invoke(events.MethodSubmitMove,
		a.session.conn.PlayerID(), "choose_word", word)
}

// Guess submits a guess. Guessing is open to every non-drawer while the
// round runs, so it bypasses the turn gate and only checks the phase.
func (a *DrawingAdapter) Guess(guess string) error {
	if a.IsDrawer() {
		return nil
	}
	return a.session.submitSimultaneous(nil, "guess", guess)
}

func (a *DrawingAdapter) handleWordOptions(payload json.RawMessage) {
	var p events.WordOptionsPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		log.Printf("[DRAWING-ERROR] Malformed word_options, ignoring: %v", err)
		return
	}
	// Options are dealt only to the round's drawer, so receiving them IS
	// the drawer assignment
	a.DrawerID = a.session.conn.PlayerID()
	a.WordOptions = p.Words
	a.session.setPhase(PhaseSelecting)
	log.Printf("[DRAWING] %d word options, %ds to pick", len(p.Words), p.Seconds)
}

func (a *DrawingAdapter) handleWordChosen(payload json.RawMessage) {
	var p events.WordChosenPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		log.Printf("[DRAWING-ERROR] Malformed word_chosen, ignoring: %v", err)
		return
	}
	a.DrawerID = p.DrawerID
	a.Word = p.Word
	a.WordOptions = nil
	a.Hint = drawing.NewHintState(p.WordLength)
	// Word settled: everyone, drawer included, moves on to the round
	a.session.setPhase(PhasePlaying)
	log.Printf("[DRAWING] %s is drawing a %d-letter word", p.DrawerID, p.WordLength)
}

func (a *DrawingAdapter) handleHintRevealed(payload json.RawMessage) {
	var p events.HintRevealedPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		log.Printf("[DRAWING-ERROR] Malformed hint_revealed, ignoring: %v", err)
		return
	}
	if a.Hint == nil {
		log.Printf("[DRAWING-WARN] Hint before word_chosen, dropped")
		return
	}
	letter := []rune(p.Letter)
	if len(letter) != 1 {
		log.Printf("[DRAWING-ERROR] Bad hint letter %q, ignoring", p.Letter)
		return
	}
	if err := a.Hint.ApplyHint(p.Index, letter[0]); err != nil {
		log.Printf("[DRAWING-ERROR] Hint out of range, ignoring: %v", err)
	}
}

func (a *DrawingAdapter) handleGuessResult(payload json.RawMessage) {
	var p events.GuessResultPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		log.Printf("[DRAWING-ERROR] Malformed guess_result, ignoring: %v", err)
		return
	}
	room := a.session.rooms.Room()
	if room == nil {
		return
	}
	if player := room.FindPlayer(p.PlayerID); player != nil && p.Correct {
		player.HasGuessed = true
		player.Score += p.Points
	}
}
