package hub

import (
	"math/rand"

	game_constants "Sobremesa/constants/game"
	models "Sobremesa/models/game"
	"Sobremesa/services/games/okey"
	"Sobremesa/services/games/parchis"
	"Sobremesa/services/games/rps"
)

// hubRoom is the hub-side record of one table: the shared room snapshot
// plus the referee state for whichever game is being played.
type hubRoom struct {
	state *models.Room

	turnOrder []string
	turn      int
	round     int
	rng       *rand.Rand

	// parchis
	board    *parchis.Board
	lastDice map[string]int
	finished int

	// okey
	deck      []okey.Tile
	indicator okey.Tile

	// rps
	choices map[string]rps.Choice
	scores  map[string]int

	// drawing
	hintIdx int
	word    string
	guessed map[string]bool
}

func newHubRoom(code, hostID string, settings models.GameSettings) *hubRoom {
	if settings.MaxPlayers <= 0 {
		settings.MaxPlayers = game_constants.DEFAULT_MAX_PLAYERS
	}
	if settings.Rounds <= 0 {
		settings.Rounds = game_constants.DEFAULT_ROUNDS
	}
	if settings.TurnSeconds <= 0 {
		settings.TurnSeconds = int(game_constants.TURN_TIMEOUT.Seconds())
	}
	return &hubRoom{
		state: &models.Room{
			Code:     code,
			HostID:   hostID,
			Status:   models.StatusWaiting,
			Settings: settings,
		},
		rng:      rand.New(rand.NewSource(int64(len(code)) + 42)),
		lastDice: make(map[string]int),
		choices:  make(map[string]rps.Choice),
		scores:   make(map[string]int),
		guessed:  make(map[string]bool),
	}
}

func (r *hubRoom) seat(player *models.Player) {
	r.state.Players = append(r.state.Players, player)
}

func (r *hubRoom) unseat(playerID string) {
	for i, player := range r.state.Players {
		if player.ID == playerID {
			r.state.Players = append(r.state.Players[:i], r.state.Players[i+1:]...)
			return
		}
	}
}

// begin freezes the turn order to the seat order and sets up the game
// specific referee state.
func (r *hubRoom) begin() {
	r.state.Status = models.StatusPlaying
	r.round = 1
	r.turn = 0
	r.turnOrder = r.turnOrder[:0]
	for _, player := range r.state.Players {
		r.turnOrder = append(r.turnOrder, player.ID)
		r.scores[player.ID] = 0
	}

	switch r.state.Settings.GameType {
	case game_constants.GAME_PARCHIS:
		r.board = parchis.NewBoard(len(r.turnOrder), game_constants.PARCHIS_PIECES)
	case game_constants.GAME_OKEY:
		r.deck = freshDeck(r.rng)
		r.indicator = r.deck[0]
		r.deck = r.deck[1:]
	}
}

func (r *hubRoom) currentTurn() string {
	if len(r.turnOrder) == 0 {
		return ""
	}
	return r.turnOrder[r.turn%len(r.turnOrder)]
}

func (r *hubRoom) advanceTurn() {
	if len(r.turnOrder) > 0 {
		r.turn = (r.turn + 1) % len(r.turnOrder)
	}
}

// allGuessed reports whether every non-drawer found the word.
func (r *hubRoom) allGuessed() bool {
	for _, player := range r.state.Players {
		if player.ID == r.currentTurn() {
			continue
		}
		if !r.guessed[player.ID] {
			return false
		}
	}
	return true
}

func (r *hubRoom) seatColor(playerID string) int {
	for i, id := range r.turnOrder {
		if id == playerID {
			return i
		}
	}
	return -1
}

// freshDeck builds the full 106-tile set: two of each color/number plus
// the two printed jokers, shuffled.
func freshDeck(rng *rand.Rand) []okey.Tile {
	deck := make([]okey.Tile, 0, 106)
	for copies := 0; copies < 2; copies++ {
		for color := 0; color < game_constants.OKEY_COLORS; color++ {
			for number := game_constants.OKEY_MIN_NUMBER; number <= game_constants.OKEY_MAX_NUMBER; number++ {
				deck = append(deck, okey.Tile{Color: color, Number: number})
			}
		}
		deck = append(deck, okey.Tile{FakeJoker: true})
	}
	rng.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })
	return deck
}
