package game

import (
	"errors"
	"fmt"
)

// Error taxonomy for the session layer. Each class maps to a different UI
// treatment, so callers should branch with errors.As.

// TransportError: channel never established, or dropped and not
// recoverable. Blocking message with a manual retry/back action.
type TransportError struct {
	Message string
	Err     error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transport error: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("transport error: %s", e.Message)
}

func (e *TransportError) Unwrap() error { return e.Err }

// RoomError: the server rejected a create/join (room full, room not
// found...). Dismissible message, no state transition.
type RoomError struct {
	Code    string
	Message string
}

func (e *RoomError) Error() string {
	return fmt.Sprintf("room error (%s): %s", e.Code, e.Message)
}

// ValidationRejection: the server declined a submitted move. The client
// reverts any optimistic local change.
type ValidationRejection struct {
	Reason string
}

func (e *ValidationRejection) Error() string {
	return fmt.Sprintf("move rejected: %s", e.Reason)
}

// SubmissionError: leaderboard write failure. Logged, never surfaced.
type SubmissionError struct {
	Err error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("leaderboard submission failed: %v", e.Err)
}

func (e *SubmissionError) Unwrap() error { return e.Err }

// Room error codes the server is known to return
const (
	RoomErrFull     = "room_full"
	RoomErrNotFound = "room_not_found"
	RoomErrStarted  = "room_started"
)

var (
	ErrNotHost          = errors.New("only the host can do that")
	ErrNotEnoughPlayers = errors.New("not enough players to start the game")
	ErrNoRoom           = errors.New("not currently in a room")
	ErrNotConnected     = errors.New("connection is not established")
)
