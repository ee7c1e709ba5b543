package game

import "encoding/json"

// PlayerScore is one row of the final ranking.
type PlayerScore struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Score    int    `json:"score"`
	Rank     int    `json:"rank"` // 1-based
}

// GameResult is produced exactly once per room when it reaches the
// finished status. It triggers exactly one leaderboard submission for the
// local player.
type GameResult struct {
	GameType        string          `json:"game_type"`
	WinnerID        string          `json:"winner_id"`
	Ranking         []PlayerScore   `json:"ranking"`
	DurationSeconds int             `json:"duration_seconds"`
	GameData        json.RawMessage `json:"game_data,omitempty"`
}

// LocalScore returns the ranking entry for the given player id, or nil.
func (r *GameResult) LocalScore(playerID string) *PlayerScore {
	for i := range r.Ranking {
		if r.Ranking[i].PlayerID == playerID {
			return &r.Ranking[i]
		}
	}
	return nil
}
