package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	models "Sobremesa/models/game"
	"Sobremesa/services/connection"
	"Sobremesa/services/games/rps"
	"Sobremesa/services/leaderboard"
	"Sobremesa/services/lobby"
	"Sobremesa/services/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testClient bundles the full client stack of one player.
type testClient struct {
	conn    *connection.Manager
	rooms   *lobby.Lifecycle
	adapter session.Adapter
	session *session.Session
	done    chan models.GameResult
}

func newTestClient(t *testing.T, wsURL, apiURL, playerID, name string, adapter session.Adapter) *testClient {
	t.Helper()
	tc := &testClient{done: make(chan models.GameResult, 1)}
	tc.conn = connection.NewManager(wsURL, playerID, name)
	tc.rooms = lobby.New(tc.conn, lobby.Callbacks{})
	tc.adapter = adapter
	submitter := leaderboard.NewSubmitter(apiURL+"/api/v1/leaderboard", "CAFE01", playerID, name)
	tc.session = session.New(tc.conn, tc.rooms, tc.adapter, submitter, session.Callbacks{
		OnFinished: func(r models.GameResult) { tc.done <- r },
	})

	require.NoError(t, tc.conn.Connect(context.Background()))
	t.Cleanup(func() {
		tc.session.Close()
		tc.conn.Close()
	})
	return tc
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestFullGameIntegration(t *testing.T) {
	fmt.Println("\n=== HUB SIMULATOR INTEGRATION TEST ===")

	server := httptest.NewServer(NewServer())
	defer server.Close()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"

	// --- Host creates a room ---
	hostRPS := session.NewRPSAdapter()
	host := newTestClient(t, wsURL, server.URL, "host-player", "Ana", hostRPS)
	code, err := host.rooms.CreateRoom(models.GameSettings{
		GameType: "rps", Rounds: 1, MaxPlayers: 2, TurnSeconds: 30,
	})
	require.NoError(t, err)
	waitFor(t, "host in waiting room", func() bool {
		return host.rooms.State() == lobby.Waiting
	})
	require.True(t, host.rooms.IsHost())

	// --- Visibility on, room shows in the venue lobby list ---
	require.NoError(t, host.rooms.SetVisibility(true))
	waitFor(t, "room listed publicly", func() bool {
		return len(fetchLobbies(t, server.URL)) == 1
	})
	lobbies := fetchLobbies(t, server.URL)
	assert.Equal(t, code, lobbies[0].Code)

	// --- Guest joins by code ---
	guestRPS := session.NewRPSAdapter()
	guest := newTestClient(t, wsURL, server.URL, "guest-player", "Bea", guestRPS)
	require.NoError(t, guest.rooms.JoinRoom(code))
	waitFor(t, "guest seated", func() bool {
		return guest.rooms.State() == lobby.Waiting
	})
	waitFor(t, "host sees the guest", func() bool {
		room := host.rooms.Room()
		return room != nil && len(room.Players) == 2
	})

	// --- A third player bounces off the full room ---
	lateErr := make(chan string, 1)
	lateConn := connection.NewManager(wsURL, "late-player", "Carlos")
	lateRooms := lobby.New(lateConn, lobby.Callbacks{
		OnRoomError: func(code, _ string) { lateErr <- code },
	})
	require.NoError(t, lateConn.Connect(context.Background()))
	defer lateConn.Close()
	require.NoError(t, lateRooms.JoinRoom(code))
	select {
	case errCode := <-lateErr:
		assert.Equal(t, models.RoomErrFull, errCode)
	case <-time.After(5 * time.Second):
		t.Fatal("late join was never rejected")
	}
	assert.Equal(t, lobby.NoRoom, lateRooms.State())

	// --- Host starts, both play one round ---
	require.NoError(t, host.rooms.Start())
	waitFor(t, "both clients playing", func() bool {
		return host.session.Phase() == session.PhasePlaying &&
			guest.session.Phase() == session.PhasePlaying
	})

	require.NoError(t, hostRPS.Play(rps.Rock))
	require.NoError(t, guestRPS.Play(rps.Paper))

	var hostResult, guestResult models.GameResult
	select {
	case hostResult = <-host.done:
	case <-time.After(5 * time.Second):
		t.Fatal("host never saw game_finished")
	}
	select {
	case guestResult = <-guest.done:
	case <-time.After(5 * time.Second):
		t.Fatal("guest never saw game_finished")
	}

	// Paper beats rock: the guest wins on both screens
	assert.Equal(t, "guest-player", hostResult.WinnerID)
	assert.Equal(t, "guest-player", guestResult.WinnerID)
	assert.Equal(t, session.PhaseFinished, host.session.Phase())

	// --- Both submitters posted to the venue leaderboard ---
	waitFor(t, "leaderboard entries", func() bool {
		return len(fetchLeaderboard(t, server.URL)) == 2
	})
	entries := fetchLeaderboard(t, server.URL)
	scores := map[string]int{}
	for _, e := range entries {
		scores[e.PlayerName] = e.Score
	}
	assert.Equal(t, 1, scores["Bea"])
	assert.Equal(t, 0, scores["Ana"])

	fmt.Println("\n=== RESULT ===")
	fmt.Println("Hub simulator integration test completed successfully")
}

// A full drawing round over the wire: the drawer picks from the offered
// words, a wrong guess uncovers a hint, and the game finishes once every
// guesser has the word.
func TestDrawingGameIntegration(t *testing.T) {
	server := httptest.NewServer(NewServer())
	defer server.Close()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"

	hostDraw := session.NewDrawingAdapter()
	host := newTestClient(t, wsURL, server.URL, "host-player", "Ana", hostDraw)
	code, err := host.rooms.CreateRoom(models.GameSettings{
		GameType: "drawing", Rounds: 1, MaxPlayers: 3, TurnSeconds: 60,
	})
	require.NoError(t, err)
	waitFor(t, "host seated", func() bool { return host.rooms.State() == lobby.Waiting })

	guess1 := session.NewDrawingAdapter()
	g1 := newTestClient(t, wsURL, server.URL, "guest-one", "Bea", guess1)
	require.NoError(t, g1.rooms.JoinRoom(code))

	guess2 := session.NewDrawingAdapter()
	g2 := newTestClient(t, wsURL, server.URL, "guest-two", "Carla", guess2)
	require.NoError(t, g2.rooms.JoinRoom(code))

	waitFor(t, "all three seated", func() bool {
		room := host.rooms.Room()
		return room != nil && len(room.Players) == 3
	})

	// --- Start: the host draws first and gets the word options ---
	require.NoError(t, host.rooms.Start())
	waitFor(t, "host offered words", func() bool {
		return host.session.Phase() == session.PhaseSelecting &&
			hostDraw.IsDrawer() && len(hostDraw.WordOptions) == 3
	})

	word := hostDraw.WordOptions[0]
	require.NoError(t, hostDraw.ChooseWord(word))
	waitFor(t, "guessers see the masked word", func() bool {
		return guess1.Hint != nil && guess2.Hint != nil
	})
	assert.False(t, guess1.IsDrawer())

	// --- A wrong guess buys everyone a hint ---
	require.NoError(t, guess1.Guess("definitely-not-it"))
	waitFor(t, "first letter revealed", func() bool {
		return guess1.Hint.RevealedCount() == 1
	})

	// --- Both guessers find the word, the single round ends the game ---
	require.NoError(t, guess1.Guess(word))
	require.NoError(t, guess2.Guess(word))

	for _, tc := range []*testClient{host, g1, g2} {
		select {
		case result := <-tc.done:
			assert.Equal(t, "", result.WinnerID, "two perfect guessers tie")
		case <-time.After(5 * time.Second):
			t.Fatal("a client never saw game_finished")
		}
	}
	assert.Equal(t, session.PhaseFinished, host.session.Phase())

	waitFor(t, "leaderboard entries", func() bool {
		return len(fetchLeaderboard(t, server.URL)) == 3
	})
	scores := map[string]int{}
	for _, e := range fetchLeaderboard(t, server.URL) {
		scores[e.PlayerName] = e.Score
	}
	assert.Equal(t, 100, scores["Bea"])
	assert.Equal(t, 100, scores["Carla"])
	assert.Equal(t, 0, scores["Ana"])
}

func TestKickedPlayerIsForcedOut(t *testing.T) {
	server := httptest.NewServer(NewServer())
	defer server.Close()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"

	host := newTestClient(t, wsURL, server.URL, "host-player", "Ana", session.NewRPSAdapter())
	code, err := host.rooms.CreateRoom(models.GameSettings{
		GameType: "rps", Rounds: 1, MaxPlayers: 4,
	})
	require.NoError(t, err)
	waitFor(t, "host seated", func() bool { return host.rooms.State() == lobby.Waiting })

	forcedOut := make(chan struct{}, 1)
	guestConn := connection.NewManager(wsURL, "guest-player", "Bea")
	guestRooms := lobby.New(guestConn, lobby.Callbacks{
		OnForcedOut: func() { forcedOut <- struct{}{} },
	})
	require.NoError(t, guestConn.Connect(context.Background()))
	defer guestConn.Close()

	require.NoError(t, guestRooms.JoinRoom(code))
	waitFor(t, "guest seated", func() bool { return guestRooms.State() == lobby.Waiting })

	require.NoError(t, host.rooms.KickPlayer("guest-player"))
	select {
	case <-forcedOut:
	case <-time.After(5 * time.Second):
		t.Fatal("kicked player never saw the kick")
	}
	assert.Equal(t, lobby.ForcedOut, guestRooms.State())

	waitFor(t, "host roster shrinks", func() bool {
		room := host.rooms.Room()
		return room != nil && len(room.Players) == 1
	})
}

type lobbyListing struct {
	Code string `json:"code"`
}

func fetchLobbies(t *testing.T, apiURL string) []lobbyListing {
	t.Helper()
	resp, err := http.Get(apiURL + "/api/v1/lobbies")
	require.NoError(t, err)
	defer resp.Body.Close()
	var body struct {
		Lobbies []lobbyListing `json:"lobbies"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body.Lobbies
}

type leaderboardListing struct {
	PlayerName string `json:"playerName"`
	Score      int    `json:"score"`
}

func fetchLeaderboard(t *testing.T, apiURL string) []leaderboardListing {
	t.Helper()
	resp, err := http.Get(apiURL + "/api/v1/leaderboard?venue=CAFE01")
	require.NoError(t, err)
	defer resp.Body.Close()
	var body struct {
		Leaderboard []leaderboardListing `json:"leaderboard"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body.Leaderboard
}
