package session

import (
	"encoding/json"
	"log"
	"time"

	"Sobremesa/models/events"
)

func (s *Session) handleGameStarted(p events.GameStartedPayload) {
	s.mu.Lock()
	s.totalRounds = p.Settings.Rounds
	s.round = 0
	s.startedAt = time.Now()
	s.mu.Unlock()
	s.setPhase(PhaseStarting)
}

// handleTurnChanged is the ONLY place the turn pointer moves (outside
// bot mode). It also seeds the client-local visual countdown.
func (s *Session) handleTurnChanged(payload json.RawMessage) {
	var p events.TurnChangedPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		log.Printf("[SESSION-ERROR] Malformed turn_changed, ignoring: %v", err)
		return
	}

	s.mu.Lock()
	s.turnPlayerID = p.PlayerID
	s.timerExpired = false
	if s.turnTimer != nil {
		s.turnTimer.Stop()
	}
	if p.Seconds > 0 {
		s.turnTimer = time.AfterFunc(time.Duration(p.Seconds)*time.Second, s.turnTimerExpired)
	}
	cb := s.callbacks.OnTurnChanged
	s.mu.Unlock()

	log.Printf("[SESSION] Turn -> %s (%ds)", p.PlayerID, p.Seconds)
	if cb != nil {
		cb(p.PlayerID, p.Seconds)
	}
}

// turnTimerExpired marks the countdown as over for display purposes.
// Expiry does not end the turn: the server's subsequent event is still
// the source of truth, so the client keeps waiting.
func (s *Session) turnTimerExpired() {
	s.mu.Lock()
	if s.phase == PhaseFinished {
		s.mu.Unlock()
		return
	}
	s.timerExpired = true
	cb := s.callbacks.OnTimerExpired
	s.mu.Unlock()
	log.Printf("[SESSION] Local turn timer expired, waiting for the server")
	if cb != nil {
		cb()
	}
}

func (s *Session) handleRoundStarted(payload json.RawMessage) {
	var p events.RoundStartedPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		log.Printf("[SESSION-ERROR] Malformed round_started, ignoring: %v", err)
		return
	}

	s.mu.Lock()
	s.round = p.Round
	s.timerExpired = false
	if s.resultTimer != nil {
		s.resultTimer.Stop()
		s.resultTimer = nil
	}
	s.mu.Unlock()

	if room := s.rooms.Room(); room != nil {
		for _, player := range room.Players {
			player.ResetTransient()
		}
	}

	log.Printf("[SESSION] Round %d started", p.Round)
	s.setPhase(PhasePlaying)
}

// handleRoundEnded shows the result feedback window, then automatically
// returns to playing after a fixed pause, unless a terminal finished
// event cancels the pending flip first.
func (s *Session) handleRoundEnded(payload json.RawMessage) {
	var p events.RoundEndedPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		log.Printf("[SESSION-ERROR] Malformed round_ended, ignoring: %v", err)
		return
	}

	// Whole-snapshot score application: the server owns every score
	if room := s.rooms.Room(); room != nil {
		for _, player := range room.Players {
			if score, ok := p.Scores[player.ID]; ok {
				player.Score = score
			}
		}
	}

	s.setPhase(PhaseResult)

	s.mu.Lock()
	if s.resultTimer != nil {
		s.resultTimer.Stop()
	}
	s.resultTimer = time.AfterFunc(s.resultPause, func() {
		s.mu.Lock()
		if s.phase != PhaseResult {
			// A finished event won the race; do not flip back
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()
		s.setPhase(PhasePlaying)
	})
	s.mu.Unlock()
	log.Printf("[SESSION] Round %d ended", p.Round)
}

// handleGameFinished is terminal and idempotent: duplicate delivery must
// not resubmit the result or flip state twice. Any pending local timer is
// cleared so no stray transition fires after the game has ended.
func (s *Session) handleGameFinished(payload json.RawMessage) {
	var p events.GameFinishedPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		log.Printf("[SESSION-ERROR] Malformed game_finished, ignoring: %v", err)
		return
	}

	s.mu.Lock()
	s.stopTimersLocked()
	alreadyFinished := s.phase == PhaseFinished
	result := p.Result
	if result.DurationSeconds == 0 && !s.startedAt.IsZero() {
		result.DurationSeconds = int(time.Since(s.startedAt).Seconds())
	}
	s.result = &result
	submitter := s.submitter
	onFinished := s.callbacks.OnFinished
	s.mu.Unlock()

	s.setPhase(PhaseFinished)
	if alreadyFinished {
		log.Printf("[SESSION] Duplicate game_finished ignored")
		return
	}

	s.rooms.MarkFinished()
	log.Printf("[SESSION-SUCCESS] Game finished, winner %s", result.WinnerID)

	// The submitter owns the at-most-once guard; even so, duplicate
	// terminal events never reach it twice
	if submitter != nil {
		submitter.SubmitResult(result)
	}
	if onFinished != nil {
		onFinished(result)
	}
}

func (s *Session) handleMoveRejected(payload json.RawMessage) {
	var p events.MoveRejectedPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		log.Printf("[SESSION-ERROR] Malformed move_rejected, ignoring: %v", err)
		return
	}

	s.rollbackPending(p.Reason)

	s.mu.Lock()
	cb := s.callbacks.OnMoveRejected
	s.mu.Unlock()
	log.Printf("[SESSION] Server rejected our move: %s", p.Reason)
	if cb != nil {
		cb(p.Reason)
	}
}
