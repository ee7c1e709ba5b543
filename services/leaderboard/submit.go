// Package leaderboard posts finished-game results to the venue's REST
// leaderboard. Submission is strictly at most once per game: losing a
// score to a flaky network is acceptable, double-counting one is not.
package leaderboard

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	models "Sobremesa/models/game"
)

const submitTimeout = 10 * time.Second

// Entry is the REST payload the venue backend expects.
type Entry struct {
	GameType        string          `json:"gameType"`
	PlayerName      string          `json:"playerName"`
	Score           int             `json:"score"`
	VenueCode       string          `json:"venueCode"`
	DurationSeconds int             `json:"durationSeconds"`
	GameData        json.RawMessage `json:"gameData,omitempty"`
}

// Submitter sends one result and refuses every subsequent attempt.
type Submitter struct {
	mu        sync.Mutex
	submitted bool

	client     *http.Client
	url        string
	venueCode  string
	playerID   string
	playerName string
}

// NewSubmitter builds a submitter for one game session.
func NewSubmitter(url, venueCode, playerID, playerName string) *Submitter {
	return &Submitter{
		client:     &http.Client{Timeout: submitTimeout},
		url:        url,
		venueCode:  venueCode,
		playerID:   playerID,
		playerName: playerName,
	}
}

// SubmitResult posts the local player's score. The submitted flag is set
// BEFORE the request goes out: if the POST fails we do not retry, because
// a timed-out request may still have been recorded server-side and a
// retry would double-count it. Failures are logged and swallowed; a lost
// score never blocks the end-of-game screen.
func (s *Submitter) SubmitResult(result models.GameResult) {
	s.mu.Lock()
	if s.submitted {
		s.mu.Unlock()
		log.Printf("[LEADERBOARD-WARN] Result already submitted, ignoring")
		return
	}
	s.submitted = true
	s.mu.Unlock()

	if s.url == "" {
		log.Printf("[LEADERBOARD] No leaderboard configured, skipping submission")
		return
	}

	score := 0
	if row := result.LocalScore(s.playerID); row != nil {
		score = row.Score
	}
	entry := Entry{
		GameType:        result.GameType,
		PlayerName:      s.playerName,
		Score:           score,
		VenueCode:       s.venueCode,
		DurationSeconds: result.DurationSeconds,
		GameData:        result.GameData,
	}
	if err := s.post(entry); err != nil {
		log.Printf("[LEADERBOARD-ERROR] Submission failed, score lost: %v", err)
		return
	}
	log.Printf("[LEADERBOARD-SUCCESS] Submitted %s score %d for %s",
		entry.GameType, entry.Score, entry.PlayerName)
}

// Submitted reports whether a submission attempt was already made.
func (s *Submitter) Submitted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submitted
}

func (s *Submitter) post(entry Entry) error {
	body, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encoding entry: %w", err)
	}

	resp, err := s.client.Post(s.url, "application/json", bytes.NewReader(body))
	if err != nil {
		return &models.SubmissionError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &models.SubmissionError{
			Err: fmt.Errorf("leaderboard answered %s", resp.Status),
		}
	}
	return nil
}
