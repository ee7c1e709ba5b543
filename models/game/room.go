package game

// RoomStatus mirrors the status the server tracks for a room. The client
// never invents transitions: it only applies the statuses it is pushed.
type RoomStatus string

const (
	StatusWaiting  RoomStatus = "waiting"
	StatusStarting RoomStatus = "starting"
	StatusPlaying  RoomStatus = "playing"
	StatusFinished RoomStatus = "finished"
	StatusVoid     RoomStatus = "void"
)

// GameSettings is chosen by the host at creation time. Difficulty is only
// meaningful for the drawing game (word list selection).
type GameSettings struct {
	GameType    string `json:"game_type"`
	Rounds      int    `json:"rounds"`
	TurnSeconds int    `json:"turn_seconds"`
	Difficulty  string `json:"difficulty,omitempty"`
	MaxPlayers  int    `json:"max_players"`
}

// Room is the client's local replica of a server-tracked room. It is
// mutated only by applying server events or whole snapshots, with the
// single exception of the fully local bot-opponent mode.
type Room struct {
	Code       string       `json:"code"`    // short shareable id
	HostID     string       `json:"host_id"` // never transferred
	Public     bool         `json:"public"`  // discoverable in the venue lobby list
	VenueCode  string       `json:"venue_code,omitempty"`
	Status     RoomStatus   `json:"status"`
	Players    []*Player    `json:"players"` // order defines turn order and seat/color
	Settings   GameSettings `json:"settings"`
}

// FindPlayer returns the roster entry for the given id, or nil.
func (r *Room) FindPlayer(id string) *Player {
	for _, p := range r.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// SeatOf returns the roster index of the given player id (-1 if absent).
// The seat index doubles as the piece color in the parchis game.
func (r *Room) SeatOf(id string) int {
	for i, p := range r.Players {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// ConnectedCount counts roster entries whose connection is alive.
func (r *Room) ConnectedCount() int {
	n := 0
	for _, p := range r.Players {
		if p.Connected {
			n++
		}
	}
	return n
}

// IsFull reports whether the roster reached the configured bound.
func (r *Room) IsFull() bool {
	return r.Settings.MaxPlayers > 0 && len(r.Players) >= r.Settings.MaxPlayers
}
