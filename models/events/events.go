package events

import (
	"encoding/json"

	models "Sobremesa/models/game"
)

// The hub protocol carries named method invocations (client to server)
// and named events (server to client) as JSON frames over one duplex
// websocket per game screen.

const (
	FrameInvoke = "invoke"
	FrameEvent  = "event"
)

// Frame is the single wire envelope for both directions.
type Frame struct {
	Type    string          `json:"type"`
	Method  string          `json:"method,omitempty"`  // invoke only
	Args    []any           `json:"args,omitempty"`    // invoke only
	Event   string          `json:"event,omitempty"`   // event only
	Payload json.RawMessage `json:"payload,omitempty"` // event only
}

// ---------------------------------------------------------------
// Client -> server method names
// ---------------------------------------------------------------
const (
	MethodCreateRoom    = "create_room"
	MethodJoinRoom      = "join_room"
	MethodLeaveRoom     = "leave_room"
	MethodKickPlayer    = "kick_player"
	MethodSetVisibility = "set_visibility"
	MethodStartGame     = "start_game"
	MethodSubmitMove    = "submit_move"
)

// ---------------------------------------------------------------
// Server -> client event names
// ---------------------------------------------------------------
const (
	EventRoomCreated       = "room_created"
	EventRoomJoined        = "room_joined"
	EventRoomError         = "room_error"
	EventRoomVoid          = "room_void"
	EventPlayerJoined      = "player_joined"
	EventPlayerLeft        = "player_left"
	EventPlayerKicked      = "player_kicked"
	EventVisibilityChanged = "visibility_changed"
	EventGameStarted       = "game_started"
	EventTurnChanged       = "turn_changed"
	EventRoundStarted      = "round_started"
	EventRoundEnded        = "round_ended"
	EventGameFinished      = "game_finished"
	EventMoveRejected      = "move_rejected"

	// Game-specific events
	EventDiceRolled    = "dice_rolled"
	EventPieceMoved    = "piece_moved"
	EventIndicatorSet  = "indicator_set"
	EventTileDrawn     = "tile_drawn"
	EventTileDiscarded = "tile_discarded"
	EventRoundResult   = "round_result"
	EventWordOptions   = "word_options"
	EventWordChosen    = "word_chosen"
	EventHintRevealed  = "hint_revealed"
	EventGuessResult   = "guess_result"
)

// ---------------------------------------------------------------
// Payloads
// ---------------------------------------------------------------

type RoomCreatedPayload struct {
	Room models.Room `json:"room"`
}

// RoomJoinedPayload carries the full current room snapshot. Rejoin is true
// when the server recognized the player id as already seated; in that case
// the snapshot restores the in-progress state instead of resetting to
// waiting.
type RoomJoinedPayload struct {
	Room     models.Room `json:"room"`
	PlayerID string      `json:"player_id"`
	Rejoin   bool        `json:"rejoin"`
}

type RoomErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type RoomVoidPayload struct {
	Message string `json:"message"`
}

type PlayerJoinedPayload struct {
	Player models.Player `json:"player"`
}

type PlayerLeftPayload struct {
	PlayerID string `json:"player_id"`
	Reason   string `json:"reason"` // "left", "disconnected", "kicked"
}

type PlayerKickedPayload struct {
	TargetID string `json:"target_id"`
	ByID     string `json:"by_id"`
}

type VisibilityChangedPayload struct {
	Public bool `json:"public"`
}

type GameStartedPayload struct {
	Settings  models.GameSettings `json:"settings"`
	TurnOrder []string            `json:"turn_order"` // player ids, seat order
}

type TurnChangedPayload struct {
	PlayerID string `json:"player_id"`
	Seconds  int    `json:"seconds"` // seed for the client-local countdown
}

type RoundStartedPayload struct {
	Round   int `json:"round"`
	Seconds int `json:"seconds"`
}

type RoundEndedPayload struct {
	Round  int            `json:"round"`
	Scores map[string]int `json:"scores"` // player id -> total score
}

type GameFinishedPayload struct {
	Result models.GameResult `json:"result"`
}

type MoveRejectedPayload struct {
	Reason string `json:"reason"`
}

// Parchis

type DiceRolledPayload struct {
	PlayerID string `json:"player_id"`
	Value    int    `json:"value"`
}

type CapturedPiece struct {
	Color int `json:"color"`
	Piece int `json:"piece"`
}

type PieceMovedPayload struct {
	PlayerID string         `json:"player_id"`
	Color    int            `json:"color"`
	Piece    int            `json:"piece"`
	Progress int            `json:"progress"`
	Captured *CapturedPiece `json:"captured,omitempty"`
	Finished bool           `json:"finished"`
	Rank     int            `json:"rank,omitempty"`
}

// Okey

type TilePayload struct {
	Color     int  `json:"color"`
	Number    int  `json:"number"`
	FakeJoker bool `json:"fake_joker,omitempty"`
}

type IndicatorSetPayload struct {
	Indicator TilePayload `json:"indicator"`
}

type TileDrawnPayload struct {
	PlayerID string       `json:"player_id"`
	Tile     *TilePayload `json:"tile,omitempty"` // nil for opponents' draws
	FromPile bool         `json:"from_pile"`
}

type TileDiscardedPayload struct {
	PlayerID string      `json:"player_id"`
	Tile     TilePayload `json:"tile"`
}

// RPS

type RoundResultPayload struct {
	Round    int               `json:"round"`
	Choices  map[string]string `json:"choices"` // player id -> choice
	WinnerID string            `json:"winner_id"`
	Draw     bool              `json:"draw"`
}

// Drawing

type WordOptionsPayload struct {
	Words   []string `json:"words"`
	Seconds int      `json:"seconds"`
}

type WordChosenPayload struct {
	DrawerID   string `json:"drawer_id"`
	WordLength int    `json:"word_length"`
	Word       string `json:"word,omitempty"` // only sent to the drawer
}

type HintRevealedPayload struct {
	Index  int    `json:"index"`
	Letter string `json:"letter"`
}

type GuessResultPayload struct {
	PlayerID string `json:"player_id"`
	Correct  bool   `json:"correct"`
	Guess    string `json:"guess,omitempty"` // hidden when correct
	Points   int    `json:"points"`
}
