package session

import (
	"log"
	"math/rand"
	"sync"
	"time"

	game_constants "Sobremesa/constants/game"
	models "Sobremesa/models/game"
	"Sobremesa/services/games/rps"
)

// BotGame is the fully local bot-opponent variant of the two-choice game.
// There is no server: the client owns the bot's deterministic
// pseudo-random choice, computes each round with the SAME rule function
// used for human-vs-human play, applies a short artificial delay so the
// answer does not look automated, and advances rounds itself. This is
// the single place in the session layer where local code is
// authoritative over game state.
type BotGame struct {
	mu sync.Mutex

	phase       Phase
	round       int
	totalRounds int

	PlayerScore int
	BotScore    int
	LastPlayer  rps.Choice
	LastBot     rps.Choice
	LastResult  rps.Result

	chooser   *rps.BotChooser
	delayRNG  *rand.Rand
	minDelay  time.Duration
	maxDelay  time.Duration
	pauseTime time.Duration

	resultTimer *time.Timer
	startedAt   time.Time

	playerID   string
	playerName string
	submitter  ResultSubmitter
	callbacks  Callbacks
}

// NewBotGame seeds the bot explicitly so games are reproducible in tests.
func NewBotGame(playerID, playerName string, rounds int, seed int64,
	submitter ResultSubmitter, callbacks Callbacks) *BotGame {
	if rounds <= 0 {
		rounds = game_constants.DEFAULT_ROUNDS
	}
	return &BotGame{
		phase:       PhasePlaying,
		round:       1,
		totalRounds: rounds,
		chooser:     rps.NewBotChooser(seed),
		delayRNG:    rand.New(rand.NewSource(seed + 1)),
		minDelay:    game_constants.BOT_MIN_DELAY,
		maxDelay:    game_constants.BOT_MAX_DELAY,
		pauseTime:   game_constants.RESULT_PAUSE,
		startedAt:   time.Now(),
		playerID:    playerID,
		playerName:  playerName,
		submitter:   submitter,
		callbacks:   callbacks,
	}
}

func (g *BotGame) Phase() Phase {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.phase
}

func (g *BotGame) Round() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.round
}

// Play resolves one round against the bot. The outcome is computed
// immediately but surfaced after the artificial delay.
func (g *BotGame) Play(choice rps.Choice) error {
	g.mu.Lock()
	if g.phase != PhasePlaying {
		g.mu.Unlock()
		return &models.ValidationRejection{Reason: "round not in progress"}
	}
	botChoice := g.chooser.Choose()
	outcome := rps.Outcome(choice, botChoice)

	g.LastPlayer = choice
	g.LastBot = botChoice
	g.LastResult = outcome
	switch outcome {
	case rps.FirstWins:
		g.PlayerScore++
	case rps.SecondWins:
		g.BotScore++
	}
	g.phase = PhaseResult
	delay := g.minDelay
	if g.maxDelay > g.minDelay {
		delay += time.Duration(g.delayRNG.Int63n(int64(g.maxDelay - g.minDelay)))
	}
	cb := g.callbacks.OnPhaseChange
	g.mu.Unlock()

	log.Printf("[BOT] Round %d: %s vs %s -> %d", g.Round(), choice, botChoice, outcome)
	if cb != nil {
		cb(PhaseResult)
	}

	g.mu.Lock()
	g.resultTimer = time.AfterFunc(delay+g.pauseTime, g.nextRound)
	g.mu.Unlock()
	return nil
}

// nextRound advances the loop or finishes the game; unlike the remote
// session this IS allowed to self-advance, being the local authority.
func (g *BotGame) nextRound() {
	g.mu.Lock()
	if g.phase != PhaseResult {
		g.mu.Unlock()
		return
	}
	if g.round >= g.totalRounds {
		g.mu.Unlock()
		g.finish()
		return
	}
	g.round++
	g.phase = PhasePlaying
	cb := g.callbacks.OnPhaseChange
	g.mu.Unlock()
	if cb != nil {
		cb(PhasePlaying)
	}
}

func (g *BotGame) finish() {
	g.mu.Lock()
	g.phase = PhaseFinished
	winnerID := g.playerID
	if g.BotScore > g.PlayerScore {
		winnerID = "bot"
	} else if g.BotScore == g.PlayerScore {
		winnerID = ""
	}
	result := models.GameResult{
		GameType: game_constants.GAME_RPS,
		WinnerID: winnerID,
		Ranking: rankTwo(
			models.PlayerScore{PlayerID: g.playerID, Name: g.playerName, Score: g.PlayerScore},
			models.PlayerScore{PlayerID: "bot", Name: "Maquinista", Score: g.BotScore},
		),
		DurationSeconds: int(time.Since(g.startedAt).Seconds()),
	}
	submitter := g.submitter
	onFinished := g.callbacks.OnFinished
	phaseCb := g.callbacks.OnPhaseChange
	g.mu.Unlock()

	log.Printf("[BOT-SUCCESS] Bot game finished %d-%d", result.Ranking[0].Score, result.Ranking[1].Score)
	if phaseCb != nil {
		phaseCb(PhaseFinished)
	}
	if submitter != nil {
		submitter.SubmitResult(result)
	}
	if onFinished != nil {
		onFinished(result)
	}
}

// Close cancels the pending round transition.
func (g *BotGame) Close() {
	g.mu.Lock()
	if g.resultTimer != nil {
		g.resultTimer.Stop()
		g.resultTimer = nil
	}
	g.mu.Unlock()
}

func rankTwo(a, b models.PlayerScore) []models.PlayerScore {
	if b.Score > a.Score {
		a, b = b, a
	}
	a.Rank = 1
	b.Rank = 2
	if a.Score == b.Score {
		b.Rank = 1
	}
	return []models.PlayerScore{a, b}
}
