// Package session is the per-game-type state machine replicated from the
// authoritative server. Transitions are driven by server-pushed events;
// the client only runs cancelable local timers for countdowns and the
// post-result pause. The bot-opponent variant (bot.go) is the single
// exception where the client is authoritative.
package session

import (
	"log"
	"sync"
	"time"

	game_constants "Sobremesa/constants/game"
	"Sobremesa/models/events"
	models "Sobremesa/models/game"
	"Sobremesa/services/connection"
	"Sobremesa/services/lobby"
)

// Phase of the generic game state machine.
type Phase int

const (
	PhaseConnecting Phase = iota
	PhaseWaiting
	PhaseStarting
	PhaseSelecting // drawing game: drawer picking a word
	PhasePlaying
	PhaseResult
	PhaseFinished
)

var phaseNames = [...]string{
	"connecting", "waiting", "starting", "selecting",
	"playing", "result", "finished",
}

func (p Phase) String() string { return phaseNames[int(p)%len(phaseNames)] }

// Adapter binds one game type's event names and payloads to the generic
// session. Bind is called exactly once, during New.
type Adapter interface {
	GameType() string
	Bind(s *Session)
}

// ResultSubmitter is satisfied by the leaderboard submitter; it owns the
// at-most-once guarantee.
type ResultSubmitter interface {
	SubmitResult(result models.GameResult)
}

// Callbacks for the rendering layer. Invoked on the event goroutine.
type Callbacks struct {
	OnPhaseChange  func(phase Phase)
	OnTurnChanged  func(playerID string, seconds int)
	OnTimerExpired func() // visual only, the turn is NOT over
	OnMoveRejected func(reason string)
	OnFinished     func(result models.GameResult)
}

// pendingMove tracks one optimistic local mutation so a server rejection
// can roll it back instead of assuming success.
type pendingMove struct {
	revert func()
}

// Session replicates the server's view of one running game.
type Session struct {
	mu    sync.Mutex
	conn  *connection.Manager
	rooms *lobby.Lifecycle

	phase        Phase
	round        int
	totalRounds  int
	turnPlayerID string
	timerExpired bool
	startedAt    time.Time

	turnTimer   *time.Timer
	resultTimer *time.Timer
	resultPause time.Duration

	pending   *pendingMove
	result    *models.GameResult
	submitter ResultSubmitter
	callbacks Callbacks
}

// New builds a session on top of an established connection and lobby.
// All generic handlers are registered here, once, outside any reconnect
// loop; the adapter then registers the game-specific ones.
func New(conn *connection.Manager, rooms *lobby.Lifecycle, adapter Adapter,
	submitter ResultSubmitter, callbacks Callbacks) *Session {
	s := &Session{
		conn:        conn,
		rooms:       rooms,
		phase:       PhaseConnecting,
		resultPause: game_constants.RESULT_PAUSE,
		submitter:   submitter,
		callbacks:   callbacks,
	}

	conn.On(events.EventTurnChanged, s.handleTurnChanged)
	conn.On(events.EventRoundStarted, s.handleRoundStarted)
	conn.On(events.EventRoundEnded, s.handleRoundEnded)
	conn.On(events.EventGameFinished, s.handleGameFinished)
	conn.On(events.EventMoveRejected, s.handleMoveRejected)

	rooms.OnGameStarted(s.handleGameStarted)

	if adapter != nil {
		adapter.Bind(s)
	}
	return s
}

func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

func (s *Session) Round() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.round
}

// TurnPlayerID returns the turn pointer: the server-declared id of the
// player currently allowed to act.
func (s *Session) TurnPlayerID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.turnPlayerID
}

// TimerExpired reports whether the local countdown ran out. The server's
// next event is still the source of truth: an expired timer keeps
// waiting, it never self-advances the turn.
func (s *Session) TimerExpired() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timerExpired
}

// Result returns the final ranking once the game finished.
func (s *Session) Result() *models.GameResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// CanAct is a UX convenience: move controls are disabled while it is
// false. Correctness is guaranteed by the server re-validating every
// move; this gate is never a security boundary.
func (s *Session) CanAct() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase == PhasePlaying && s.turnPlayerID == s.conn.PlayerID()
}

// SubmitMove sends a move with an optional optimistic local mutation.
// The optimistic func applies the change and returns its revert; the
// revert runs if the server answers with move_rejected.
func (s *Session) SubmitMove(optimistic func() (revert func()), args ...any) error {
	if !s.CanAct() {
		return &models.ValidationRejection{Reason: "not your turn"}
	}

	s.mu.Lock()
	if optimistic != nil {
		s.pending = &pendingMove{revert: optimistic()}
	}
	s.mu.Unlock()

	invokeArgs := append([]any{s.conn.PlayerID()}, args...)
	if err := s.conn.Invoke(events.MethodSubmitMove, invokeArgs...); err != nil {
		// The move never left the device; roll back right away
		s.rollbackPending("invoke failed")
		return err
	}
	return nil
}

// submitSimultaneous sends a move outside the turn gate, for games where
// every player acts at once and no turn pointer exists. The playing
// phase is still required.
func (s *Session) submitSimultaneous(optimistic func() (revert func()), args ...any) error {
	if s.Phase() != PhasePlaying {
		return &models.ValidationRejection{Reason: "round not in progress"}
	}

	s.mu.Lock()
	if optimistic != nil {
		s.pending = &pendingMove{revert: optimistic()}
	}
	s.mu.Unlock()

	invokeArgs := append([]any{s.conn.PlayerID()}, args...)
	if err := s.conn.Invoke(events.MethodSubmitMove, invokeArgs...); err != nil {
		s.rollbackPending("invoke failed")
		return err
	}
	return nil
}

// confirmPending is called by adapters when the server echoes our move.
func (s *Session) confirmPending() {
	s.mu.Lock()
	s.pending = nil
	s.mu.Unlock()
}

func (s *Session) rollbackPending(reason string) {
	s.mu.Lock()
	pending := s.pending
	s.pending = nil
	s.mu.Unlock()
	if pending != nil && pending.revert != nil {
		log.Printf("[SESSION] Rolling back optimistic move: %s", reason)
		pending.revert()
	}
}

func (s *Session) setPhase(phase Phase) {
	s.mu.Lock()
	if s.phase == phase {
		s.mu.Unlock()
		return
	}
	s.phase = phase
	cb := s.callbacks.OnPhaseChange
	s.mu.Unlock()
	log.Printf("[SESSION] Phase -> %s", phase)
	if cb != nil {
		cb(phase)
	}
}

// stopTimersLocked cancels both local timers; must hold s.mu.
func (s *Session) stopTimersLocked() {
	if s.turnTimer != nil {
		s.turnTimer.Stop()
		s.turnTimer = nil
	}
	if s.resultTimer != nil {
		s.resultTimer.Stop()
		s.resultTimer = nil
	}
}

// Close releases the session's timers; the connection teardown itself is
// owned by the screen via the connection manager.
func (s *Session) Close() {
	s.mu.Lock()
	s.stopTimersLocked()
	s.mu.Unlock()
}
