package game_constants

import "time"

// Game type identifiers, shared between invokes, events and the leaderboard
const (
	GAME_PARCHIS = "parchis"
	GAME_OKEY    = "okey"
	GAME_RPS     = "rps"
	GAME_DRAWING = "drawing"
)

// ---------------------------------------------------------------
// TIMEOUTS (client-local visual countdowns; the server is still the
// source of truth for every transition)
// ---------------------------------------------------------------
const (
	TURN_TIMEOUT        = 30 * time.Second
	WORD_SELECT_TIMEOUT = 15 * time.Second
	RESULT_PAUSE        = 4 * time.Second
	VOID_ROOM_GRACE     = 3 * time.Second
)

// Reconnection tuning
const (
	RECONNECT_MAX_ATTEMPTS = 6
	RECONNECT_BASE_DELAY   = 500 * time.Millisecond
	RECONNECT_MAX_DELAY    = 8 * time.Second
)

// Bot-opponent pacing: an instantaneous answer looks automated, so the
// bot waits a short interval before responding
const (
	BOT_MIN_DELAY = 600 * time.Millisecond
	BOT_MAX_DELAY = 1800 * time.Millisecond
)

// Room limits
const (
	ROOM_CODE_LENGTH    = 6
	DEFAULT_MAX_PLAYERS = 4
	DEFAULT_ROUNDS      = 3
)

// Parchis board geometry. The shared track is circular; each color enters
// at its own offset and finishes through a private home stretch.
const (
	PARCHIS_TRACK_LENGTH  = 52
	PARCHIS_HOME_STRETCH  = 6
	PARCHIS_ENTRY_SPACING = 13
	PARCHIS_PIECES        = 4
	PARCHIS_MAX_COLORS    = 4
)

// Okey tile ranges
const (
	OKEY_MIN_NUMBER = 1
	OKEY_MAX_NUMBER = 13
	OKEY_COLORS     = 4
)

// MinPlayers returns the per-game minimum roster size required before the
// host is allowed to start.
func MinPlayers(gameType string) int {
	switch gameType {
	case GAME_DRAWING:
		return 3 // one drawer plus at least two guessers
	default:
		return 2
	}
}
