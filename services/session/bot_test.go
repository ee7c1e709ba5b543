package session

import (
	"testing"
	"time"

	game_constants "Sobremesa/constants/game"
	models "Sobremesa/models/game"
	"Sobremesa/services/games/rps"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFastBotGame(rounds int, seed int64, submitter ResultSubmitter, callbacks Callbacks) *BotGame {
	g := NewBotGame("local-player", "Ana", rounds, seed, submitter, callbacks)
	g.minDelay = 0
	g.maxDelay = 0
	g.pauseTime = 5 * time.Millisecond
	return g
}

func TestBotGameIsDeterministicForASeed(t *testing.T) {
	first := newFastBotGame(1, 7, nil, Callbacks{})
	second := newFastBotGame(1, 7, nil, Callbacks{})
	defer first.Close()
	defer second.Close()

	require.NoError(t, first.Play(rps.Rock))
	require.NoError(t, second.Play(rps.Rock))

	assert.Equal(t, first.LastBot, second.LastBot)
	assert.Equal(t, first.LastResult, second.LastResult)
}

func TestBotGameUsesSharedEvaluator(t *testing.T) {
	g := newFastBotGame(1, 3, nil, Callbacks{})
	defer g.Close()

	require.NoError(t, g.Play(rps.Paper))
	assert.Equal(t, rps.Outcome(rps.Paper, g.LastBot), g.LastResult)
}

func TestBotGamePlaysAllRoundsAndSubmitsOnce(t *testing.T) {
	submitter := &fakeSubmitter{}
	done := make(chan models.GameResult, 1)
	g := newFastBotGame(3, 11, submitter, Callbacks{
		OnFinished: func(r models.GameResult) { done <- r },
	})
	defer g.Close()

	for round := 1; round <= 3; round++ {
		assert.Eventually(t, func() bool { return g.Phase() == PhasePlaying && g.Round() == round },
			time.Second, time.Millisecond)
		require.NoError(t, g.Play(rps.Scissors))
	}

	var result models.GameResult
	select {
	case result = <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("bot game never finished")
	}

	assert.Equal(t, PhaseFinished, g.Phase())
	assert.Equal(t, game_constants.GAME_RPS, result.GameType)
	require.Len(t, result.Ranking, 2)
	assert.Equal(t, g.PlayerScore+g.BotScore,
		result.Ranking[0].Score+result.Ranking[1].Score)
	assert.Equal(t, 1, submitter.count())
}

func TestBotGameRejectsPlayOutsidePlayingPhase(t *testing.T) {
	g := newFastBotGame(2, 5, nil, Callbacks{})
	defer g.Close()

	require.NoError(t, g.Play(rps.Rock))
	// Result is on screen; a second answer for the same round is refused
	err := g.Play(rps.Paper)
	var rejection *models.ValidationRejection
	require.ErrorAs(t, err, &rejection)
}

func TestRankTwoOrdersByScore(t *testing.T) {
	ranking := rankTwo(
		models.PlayerScore{PlayerID: "local-player", Score: 1},
		models.PlayerScore{PlayerID: "bot", Score: 2},
	)
	assert.Equal(t, "bot", ranking[0].PlayerID)
	assert.Equal(t, 1, ranking[0].Rank)
	assert.Equal(t, 2, ranking[1].Rank)

	tied := rankTwo(
		models.PlayerScore{PlayerID: "local-player", Score: 2},
		models.PlayerScore{PlayerID: "bot", Score: 2},
	)
	assert.Equal(t, 1, tied[0].Rank)
	assert.Equal(t, 1, tied[1].Rank, "a tie shares first place")
}
