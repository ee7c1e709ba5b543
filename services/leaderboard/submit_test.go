package leaderboard

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	models "Sobremesa/models/game"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult() models.GameResult {
	return models.GameResult{
		GameType: "parchis",
		WinnerID: "p1",
		Ranking: []models.PlayerScore{
			{PlayerID: "p1", Name: "Ana", Score: 42, Rank: 1},
			{PlayerID: "p2", Name: "Bea", Score: 17, Rank: 2},
		},
		DurationSeconds: 300,
	}
}

func TestSubmitPostsLocalPlayerScore(t *testing.T) {
	var mu sync.Mutex
	var received []Entry
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var entry Entry
		require.NoError(t, json.Unmarshal(body, &entry))
		mu.Lock()
		received = append(received, entry)
		mu.Unlock()
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	s := NewSubmitter(server.URL, "CAFE01", "p2", "Bea")
	s.SubmitResult(sampleResult())

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, received, 1)
	assert.Equal(t, "parchis", received[0].GameType)
	assert.Equal(t, "Bea", received[0].PlayerName)
	assert.Equal(t, 17, received[0].Score, "must submit the LOCAL player's score, not the winner's")
	assert.Equal(t, "CAFE01", received[0].VenueCode)
	assert.Equal(t, 300, received[0].DurationSeconds)
}

func TestSubmitIsAtMostOnce(t *testing.T) {
	var mu sync.Mutex
	posts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		posts++
		mu.Unlock()
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	s := NewSubmitter(server.URL, "CAFE01", "p1", "Ana")
	s.SubmitResult(sampleResult())
	s.SubmitResult(sampleResult())
	s.SubmitResult(sampleResult())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, posts)
	assert.True(t, s.Submitted())
}

func TestFailedSubmissionIsNotRetried(t *testing.T) {
	var mu sync.Mutex
	posts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		posts++
		mu.Unlock()
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	s := NewSubmitter(server.URL, "CAFE01", "p1", "Ana")
	s.SubmitResult(sampleResult())
	// A timed-out or failed POST may still have been recorded by the
	// server, so a second call must not go out
	s.SubmitResult(sampleResult())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, posts)
	assert.True(t, s.Submitted())
}

func TestUnreachableLeaderboardIsSwallowed(t *testing.T) {
	s := NewSubmitter("http://127.0.0.1:1/leaderboard", "CAFE01", "p1", "Ana")
	// Must not panic or block the caller
	s.SubmitResult(sampleResult())
	assert.True(t, s.Submitted())
}

func TestNoLeaderboardConfiguredSkips(t *testing.T) {
	s := NewSubmitter("", "CAFE01", "p1", "Ana")
	s.SubmitResult(sampleResult())
	assert.True(t, s.Submitted())
}
