package hub

import (
	"log"
	"sort"

	game_constants "Sobremesa/constants/game"
	"Sobremesa/models/events"
	models "Sobremesa/models/game"
	"Sobremesa/services/games/parchis"
	"Sobremesa/services/games/rps"
)

// referee applies one submitted move and broadcasts its consequences.
// Called under h.mu.
func (h *Hub) referee(cl *client, room *hubRoom, verb string, args []any) {
	switch verb {
	case "roll":
		h.refereeRoll(cl, room)
	case "move":
		h.refereeMove(cl, room, args)
	case "draw":
		h.refereeDraw(cl, room, args)
	case "discard":
		h.refereeDiscard(cl, room, args)
	case "choose":
		h.refereeChoice(cl, room, args)
	case "choose_word":
		h.refereeWordChoice(cl, room, args)
	case "guess":
		h.refereeGuess(cl, room, args)
	default:
		cl.send(events.EventMoveRejected, events.MoveRejectedPayload{Reason: "unknown_move"})
	}
}

func (h *Hub) requireTurn(cl *client, room *hubRoom) bool {
	if room.currentTurn() != cl.playerID {
		cl.send(events.EventMoveRejected, events.MoveRejectedPayload{Reason: "not_your_turn"})
		return false
	}
	return true
}

func (h *Hub) refereeRoll(cl *client, room *hubRoom) {
	if !h.requireTurn(cl, room) {
		return
	}
	value := room.rng.Intn(6) + 1
	room.lastDice[cl.playerID] = value
	h.broadcast(room, events.EventDiceRolled, events.DiceRolledPayload{
		PlayerID: cl.playerID, Value: value,
	})

	// No legal move passes the turn immediately
	color := room.seatColor(cl.playerID)
	if room.board != nil && color >= 0 && !room.board.HasLegalMove(color, value) {
		room.advanceTurn()
		h.announceTurn(room)
	}
}

func (h *Hub) refereeMove(cl *client, room *hubRoom, args []any) {
	if !h.requireTurn(cl, room) {
		return
	}
	var piece int
	if !decodeArg(args, 0, &piece) {
		cl.send(events.EventMoveRejected, events.MoveRejectedPayload{Reason: "bad_piece"})
		return
	}
	color := room.seatColor(cl.playerID)
	dice := room.lastDice[cl.playerID]
	if room.board == nil || color < 0 ||
		piece < 0 || piece >= len(room.board.Pieces[color]) {
		cl.send(events.EventMoveRejected, events.MoveRejectedPayload{Reason: "bad_piece"})
		return
	}

	next, err := parchis.Advance(room.board.Pieces[color][piece], dice)
	if err != nil {
		cl.send(events.EventMoveRejected, events.MoveRejectedPayload{Reason: err.Error()})
		return
	}
	captured, hasCapture := room.board.FindCapture(color, next)
	room.board.Pieces[color][piece] = next
	if hasCapture {
		room.board.Pieces[captured.Color][captured.Piece] = parchis.AtHome
	}
	finished := next == parchis.FinishedProgress
	allHome := finished && room.board.AllFinished(color)
	if allHome {
		room.finished++
	}

	payload := events.PieceMovedPayload{
		PlayerID: cl.playerID,
		Color:    color,
		Piece:    piece,
		Progress: next,
		Finished: finished,
	}
	if allHome {
		payload.Rank = room.finished
	}
	if hasCapture {
		payload.Captured = &events.CapturedPiece{Color: captured.Color, Piece: captured.Piece}
	}
	h.broadcast(room, events.EventPieceMoved, payload)

	// A six earns another turn; otherwise rotate
	if dice != 6 {
		room.advanceTurn()
	}
	if allHome {
		h.finishGame(room)
		return
	}
	h.announceTurn(room)
}

func (h *Hub) refereeDraw(cl *client, room *hubRoom, args []any) {
	if !h.requireTurn(cl, room) {
		return
	}
	if len(room.deck) == 0 {
		// An exhausted pile ends the round: no tiles means no more plays
		h.finishGame(room)
		return
	}
	tile := room.deck[0]
	room.deck = room.deck[1:]

	face := events.TilePayload{Color: tile.Color, Number: tile.Number, FakeJoker: tile.FakeJoker}
	cl.send(events.EventTileDrawn, events.TileDrawnPayload{
		PlayerID: cl.playerID, Tile: &face, FromPile: true,
	})
	h.broadcastExcept(room, cl.playerID, events.EventTileDrawn, events.TileDrawnPayload{
		PlayerID: cl.playerID, FromPile: true,
	})
}

func (h *Hub) refereeDiscard(cl *client, room *hubRoom, args []any) {
	if !h.requireTurn(cl, room) {
		return
	}
	var tile events.TilePayload
	if !decodeArg(args, 0, &tile) {
		cl.send(events.EventMoveRejected, events.MoveRejectedPayload{Reason: "bad_tile"})
		return
	}
	h.broadcast(room, events.EventTileDiscarded, events.TileDiscardedPayload{
		PlayerID: cl.playerID, Tile: tile,
	})
	room.advanceTurn()
	h.announceTurn(room)
}

// refereeChoice collects simultaneous choices; the round resolves when
// every seated player has answered.
func (h *Hub) refereeChoice(cl *client, room *hubRoom, args []any) {
	var raw string
	if !decodeArg(args, 0, &raw) {
		cl.send(events.EventMoveRejected, events.MoveRejectedPayload{Reason: "bad_choice"})
		return
	}
	choice, err := rps.ParseChoice(raw)
	if err != nil {
		cl.send(events.EventMoveRejected, events.MoveRejectedPayload{Reason: "bad_choice"})
		return
	}
	if _, dup := room.choices[cl.playerID]; dup {
		cl.send(events.EventMoveRejected, events.MoveRejectedPayload{Reason: "already_chosen"})
		return
	}
	room.choices[cl.playerID] = choice
	if len(room.choices) < len(room.turnOrder) {
		return
	}

	first, second := room.turnOrder[0], room.turnOrder[1]
	outcome := rps.Outcome(room.choices[first], room.choices[second])
	winnerID := ""
	switch outcome {
	case rps.FirstWins:
		winnerID = first
	case rps.SecondWins:
		winnerID = second
	}
	if winnerID != "" {
		room.scores[winnerID]++
	}

	wire := make(map[string]string, len(room.choices))
	for id, c := range room.choices {
		wire[id] = c.String()
	}
	h.broadcast(room, events.EventRoundResult, events.RoundResultPayload{
		Round: room.round, Choices: wire, WinnerID: winnerID, Draw: outcome == rps.Draw,
	})
	h.broadcast(room, events.EventRoundEnded, events.RoundEndedPayload{
		Round: room.round, Scores: copyScores(room.scores),
	})
	room.choices = make(map[string]rps.Choice)

	if room.round >= room.state.Settings.Rounds {
		h.finishGame(room)
		return
	}
	room.round++
	h.broadcast(room, events.EventRoundStarted, events.RoundStartedPayload{
		Round: room.round, Seconds: room.state.Settings.TurnSeconds,
	})
}

func (h *Hub) refereeWordChoice(cl *client, room *hubRoom, args []any) {
	if !h.requireTurn(cl, room) {
		return
	}
	var word string
	if !decodeArg(args, 0, &word) || word == "" {
		cl.send(events.EventMoveRejected, events.MoveRejectedPayload{Reason: "bad_word"})
		return
	}
	room.word = word
	room.hintIdx = 0
	room.guessed = make(map[string]bool)

	cl.send(events.EventWordChosen, events.WordChosenPayload{
		DrawerID: cl.playerID, WordLength: len([]rune(word)), Word: word,
	})
	h.broadcastExcept(room, cl.playerID, events.EventWordChosen, events.WordChosenPayload{
		DrawerID: cl.playerID, WordLength: len([]rune(word)),
	})
}

var wordBank = []string{
	"paella", "tenedor", "camarero", "tortilla", "servilleta", "botella",
}

// offerWords deals three word options to the current drawer.
func (h *Hub) offerWords(room *hubRoom) {
	picks := room.rng.Perm(len(wordBank))[:3]
	options := make([]string, 0, 3)
	for _, i := range picks {
		options = append(options, wordBank[i])
	}
	if cl, ok := h.clients[room.currentTurn()]; ok {
		cl.send(events.EventWordOptions, events.WordOptionsPayload{
			Words:   options,
			Seconds: int(game_constants.WORD_SELECT_TIMEOUT.Seconds()),
		})
	}
}

func (h *Hub) refereeGuess(cl *client, room *hubRoom, args []any) {
	var guess string
	if !decodeArg(args, 0, &guess) {
		return
	}
	if cl.playerID == room.currentTurn() || room.guessed[cl.playerID] {
		cl.send(events.EventMoveRejected, events.MoveRejectedPayload{Reason: "cannot_guess"})
		return
	}
	correct := room.word != "" && guess == room.word
	points := 0
	if correct {
		points = 100
		room.guessed[cl.playerID] = true
		room.scores[cl.playerID] += points
	}
	payload := events.GuessResultPayload{PlayerID: cl.playerID, Correct: correct, Points: points}
	if !correct {
		payload.Guess = guess
	}
	h.broadcast(room, events.EventGuessResult, payload)

	if !correct && room.word != "" {
		h.revealHint(room)
		return
	}
	if correct && room.allGuessed() {
		h.endDrawingRound(room)
	}
}

// revealHint uncovers the next letter after a wrong guess. At least one
// letter always stays hidden.
func (h *Hub) revealHint(room *hubRoom) {
	letters := []rune(room.word)
	if room.hintIdx >= len(letters)-1 {
		return
	}
	h.broadcast(room, events.EventHintRevealed, events.HintRevealedPayload{
		Index:  room.hintIdx,
		Letter: string(letters[room.hintIdx]),
	})
	room.hintIdx++
}

// endDrawingRound closes a round once every guesser found the word, then
// either rotates the drawer for the next round or finishes the game.
func (h *Hub) endDrawingRound(room *hubRoom) {
	h.broadcast(room, events.EventRoundEnded, events.RoundEndedPayload{
		Round: room.round, Scores: copyScores(room.scores),
	})
	if room.round >= room.state.Settings.Rounds {
		h.finishGame(room)
		return
	}
	room.round++
	room.word = ""
	room.hintIdx = 0
	room.guessed = make(map[string]bool)
	room.advanceTurn()
	h.broadcast(room, events.EventRoundStarted, events.RoundStartedPayload{
		Round: room.round, Seconds: room.state.Settings.TurnSeconds,
	})
	h.announceTurn(room)
	h.offerWords(room)
}

// finishGame ranks the scoreboard and broadcasts the terminal event.
func (h *Hub) finishGame(room *hubRoom) {
	room.state.Status = models.StatusFinished

	ranking := make([]models.PlayerScore, 0, len(room.state.Players))
	for _, player := range room.state.Players {
		ranking = append(ranking, models.PlayerScore{
			PlayerID: player.ID, Name: player.Name, Score: room.scores[player.ID],
		})
	}
	sort.SliceStable(ranking, func(i, j int) bool { return ranking[i].Score > ranking[j].Score })
	winnerID := ""
	for i := range ranking {
		ranking[i].Rank = i + 1
		if i > 0 && ranking[i].Score == ranking[i-1].Score {
			ranking[i].Rank = ranking[i-1].Rank
		}
	}
	if len(ranking) > 0 && (len(ranking) == 1 || ranking[0].Score > ranking[1].Score) {
		winnerID = ranking[0].PlayerID
	}

	h.broadcast(room, events.EventGameFinished, events.GameFinishedPayload{
		Result: models.GameResult{
			GameType: room.state.Settings.GameType,
			WinnerID: winnerID,
			Ranking:  ranking,
		},
	})
	log.Printf("[HUB-SUCCESS] Game in %s finished, winner %q", room.state.Code, winnerID)
}

func copyScores(scores map[string]int) map[string]int {
	out := make(map[string]int, len(scores))
	for id, score := range scores {
		out[id] = score
	}
	return out
}
