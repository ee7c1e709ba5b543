package game

// Player represents one seat in a room. The id is stable for the lifetime
// of one connection (it survives automatic reconnects so the server can
// recognize a rejoin) but it is NOT a persistent account id.
type Player struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Icon      int    `json:"icon"`
	Score     int    `json:"score"`
	Connected bool   `json:"connected"`

	// Per-game transient fields, reset between rounds
	Choice       string `json:"choice,omitempty"`        // rps: pending categorical choice
	FinishedRank int    `json:"finished_rank,omitempty"` // parchis: 1-based finish order, 0 = still racing
	HasGuessed   bool   `json:"has_guessed,omitempty"`   // drawing: guessed the word this round
}

// ResetTransient clears the per-round fields without touching the score.
func (p *Player) ResetTransient() {
	p.Choice = ""
	p.HasGuessed = false
}
