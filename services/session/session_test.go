package session

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"Sobremesa/models/events"
	models "Sobremesa/models/game"
	"Sobremesa/services/connection"
	"Sobremesa/services/lobby"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSubmitter struct {
	mu      sync.Mutex
	results []models.GameResult
}

func (f *fakeSubmitter) SubmitResult(result models.GameResult) {
	f.mu.Lock()
	f.results = append(f.results, result)
	f.mu.Unlock()
}

func (f *fakeSubmitter) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.results)
}

func newTestSession(t *testing.T, submitter ResultSubmitter, callbacks Callbacks) *Session {
	t.Helper()
	conn := connection.NewManager("ws://unused.invalid/ws", "local-player", "Ana")
	rooms := lobby.New(conn, lobby.Callbacks{})
	return New(conn, rooms, nil, submitter, callbacks)
}

func marshal(t *testing.T, v any) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return raw
}

func TestTurnPointerMovesOnlyOnServerEvent(t *testing.T) {
	s := newTestSession(t, nil, Callbacks{})
	s.mu.Lock()
	s.phase = PhasePlaying
	s.mu.Unlock()

	s.handleTurnChanged(marshal(t, events.TurnChangedPayload{PlayerID: "p2", Seconds: 0}))
	assert.Equal(t, "p2", s.TurnPlayerID())

	// Unrelated events leave the pointer alone
	s.handleRoundEnded(marshal(t, events.RoundEndedPayload{Round: 1}))
	s.handleRoundStarted(marshal(t, events.RoundStartedPayload{Round: 2}))
	assert.Equal(t, "p2", s.TurnPlayerID())

	s.handleTurnChanged(marshal(t, events.TurnChangedPayload{PlayerID: "local-player"}))
	assert.Equal(t, "local-player", s.TurnPlayerID())
	s.Close()
}

func TestTimerExpiryNeverAdvancesState(t *testing.T) {
	expired := make(chan struct{}, 1)
	s := newTestSession(t, nil, Callbacks{
		OnTimerExpired: func() { expired <- struct{}{} },
	})
	s.mu.Lock()
	s.phase = PhasePlaying
	s.mu.Unlock()
	s.handleTurnChanged(marshal(t, events.TurnChangedPayload{PlayerID: "p2", Seconds: 0}))

	s.turnTimerExpired()

	select {
	case <-expired:
	case <-time.After(time.Second):
		t.Fatal("timer expiry callback never fired")
	}
	assert.True(t, s.TimerExpired())
	assert.Equal(t, "p2", s.TurnPlayerID(), "expiry must not move the turn pointer")
	assert.Equal(t, PhasePlaying, s.Phase(), "expiry must not change phase")

	// The next server turn event clears the flag
	s.handleTurnChanged(marshal(t, events.TurnChangedPayload{PlayerID: "p3"}))
	assert.False(t, s.TimerExpired())
	s.Close()
}

func TestResultPhaseFlipsBackAfterPause(t *testing.T) {
	s := newTestSession(t, nil, Callbacks{})
	s.resultPause = 20 * time.Millisecond
	s.mu.Lock()
	s.phase = PhasePlaying
	s.mu.Unlock()

	s.handleRoundEnded(marshal(t, events.RoundEndedPayload{Round: 1}))
	assert.Equal(t, PhaseResult, s.Phase())

	assert.Eventually(t, func() bool { return s.Phase() == PhasePlaying },
		time.Second, 5*time.Millisecond)
	s.Close()
}

func TestGameFinishedCancelsPendingResultFlip(t *testing.T) {
	s := newTestSession(t, nil, Callbacks{})
	s.resultPause = 20 * time.Millisecond
	s.mu.Lock()
	s.phase = PhasePlaying
	s.mu.Unlock()

	s.handleRoundEnded(marshal(t, events.RoundEndedPayload{Round: 3}))
	require.Equal(t, PhaseResult, s.Phase())

	s.handleGameFinished(marshal(t, events.GameFinishedPayload{
		Result: models.GameResult{GameType: "rps", WinnerID: "p2"},
	}))
	assert.Equal(t, PhaseFinished, s.Phase())

	// Wait out the pause; the cancelled timer must not flip back
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, PhaseFinished, s.Phase())
	s.Close()
}

func TestDuplicateGameFinishedSubmitsOnce(t *testing.T) {
	submitter := &fakeSubmitter{}
	finished := 0
	s := newTestSession(t, submitter, Callbacks{
		OnFinished: func(models.GameResult) { finished++ },
	})
	s.mu.Lock()
	s.phase = PhasePlaying
	s.mu.Unlock()

	payload := marshal(t, events.GameFinishedPayload{
		Result: models.GameResult{GameType: "okey", WinnerID: "local-player", DurationSeconds: 90},
	})
	s.handleGameFinished(payload)
	s.handleGameFinished(payload)

	assert.Equal(t, 1, submitter.count(), "duplicate terminal event must not resubmit")
	assert.Equal(t, 1, finished)
	require.NotNil(t, s.Result())
	assert.Equal(t, "local-player", s.Result().WinnerID)
	s.Close()
}

func TestMoveRejectedRollsBackPending(t *testing.T) {
	var reason string
	s := newTestSession(t, nil, Callbacks{
		OnMoveRejected: func(r string) { reason = r },
	})

	reverted := false
	s.mu.Lock()
	s.pending = &pendingMove{revert: func() { reverted = true }}
	s.mu.Unlock()

	s.handleMoveRejected(marshal(t, events.MoveRejectedPayload{Reason: "not_your_turn"}))

	assert.True(t, reverted, "rejection must undo the optimistic mutation")
	assert.Equal(t, "not_your_turn", reason)
	s.mu.Lock()
	assert.Nil(t, s.pending)
	s.mu.Unlock()
}

func TestMoveRejectedWithoutPendingIsHarmless(t *testing.T) {
	s := newTestSession(t, nil, Callbacks{})
	s.handleMoveRejected(marshal(t, events.MoveRejectedPayload{Reason: "late"}))
	assert.Equal(t, PhaseConnecting, s.Phase())
}

func TestSubmitMoveGatedOnTurn(t *testing.T) {
	s := newTestSession(t, nil, Callbacks{})

	// Not playing yet
	err := s.SubmitMove(nil, "roll")
	var rejection *models.ValidationRejection
	require.ErrorAs(t, err, &rejection)

	// Playing, but it is someone else's turn
	s.mu.Lock()
	s.phase = PhasePlaying
	s.turnPlayerID = "p2"
	s.mu.Unlock()
	err = s.SubmitMove(nil, "roll")
	require.ErrorAs(t, err, &rejection)
	assert.False(t, s.CanAct())
}

func TestSubmitMoveRollsBackWhenInvokeFails(t *testing.T) {
	s := newTestSession(t, nil, Callbacks{})
	s.mu.Lock()
	s.phase = PhasePlaying
	s.turnPlayerID = "local-player"
	s.mu.Unlock()
	require.True(t, s.CanAct())

	reverted := false
	// The manager was never connected, so the invoke fails locally
	err := s.SubmitMove(func() (revert func()) {
		return func() { reverted = true }
	}, "discard")
	require.Error(t, err)
	assert.True(t, reverted, "a move that never left the device must roll back")
}

func TestMalformedSessionPayloadsAreIgnored(t *testing.T) {
	s := newTestSession(t, nil, Callbacks{})
	s.mu.Lock()
	s.phase = PhasePlaying
	s.turnPlayerID = "p2"
	s.mu.Unlock()

	bad := json.RawMessage(`{"player_id": 42`)
	s.handleTurnChanged(bad)
	s.handleRoundStarted(bad)
	s.handleRoundEnded(bad)
	s.handleGameFinished(bad)
	s.handleMoveRejected(bad)

	assert.Equal(t, "p2", s.TurnPlayerID())
	assert.Equal(t, PhasePlaying, s.Phase())
}
