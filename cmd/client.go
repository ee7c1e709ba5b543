package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"Sobremesa/config"
	models "Sobremesa/models/game"
	"Sobremesa/services/connection"
	"Sobremesa/services/games/rps"
	"Sobremesa/services/identity"
	"Sobremesa/services/joinlink"
	"Sobremesa/services/leaderboard"
	"Sobremesa/services/lobby"
	"Sobremesa/services/session"
	"Sobremesa/utils"

	"github.com/spf13/cobra"
)

func newClientCmd(opts *rootOptions, cfg *config.Config) *cobra.Command {
	var gameType string
	var joinCode string
	var botMode bool
	var botSeed int64

	cmd := &cobra.Command{
		Use:   "client",
		Short: "Play at the table from a terminal.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := opts.name
			if name == "" {
				name = identity.DisplayNameFromToken(cfg.IdentityToken)
			}
			if name == "" {
				name = utils.GuestName()
			}
			if botMode {
				return runBotClient(name, opts, botSeed)
			}
			return runClient(cmd.Context(), name, gameType, joinCode, cfg.Rounds, opts)
		},
	}

	cmd.Flags().StringVarP(&gameType, "game", "g", "rps", "game to host: parchis, okey, rps or drawing")
	cmd.Flags().StringVarP(&joinCode, "join", "j", "", "join an existing room instead of hosting")
	cmd.Flags().BoolVar(&botMode, "bot", false, "play rps against the local bot, no hub needed")
	cmd.Flags().Int64Var(&botSeed, "bot-seed", 0, "seed for the bot's choices, 0 for random")
	return cmd
}

func adapterFor(gameType string) session.Adapter {
	switch gameType {
	case "parchis":
		return session.NewParchisAdapter()
	case "okey":
		return session.NewOkeyAdapter()
	case "drawing":
		return session.NewDrawingAdapter()
	default:
		return session.NewRPSAdapter()
	}
}

func runClient(ctx context.Context, name, gameType, joinCode string, rounds int, opts *rootOptions) error {
	playerID := utils.PlayerID()
	conn := connection.NewManager(opts.hubURL, playerID, name)

	rooms := lobby.New(conn, lobby.Callbacks{
		OnRoomChanged: func(room *models.Room) {
			if room == nil {
				return
			}
			fmt.Printf("Room %s: %d/%d players\n",
				room.Code, len(room.Players), room.Settings.MaxPlayers)
		},
		OnRoomError: func(code, message string) {
			fmt.Printf("Room error (%s): %s\n", code, message)
		},
		OnForcedOut: func() {
			fmt.Println("You were removed from the table")
		},
		OnReturnToLobby: func(message string) {
			fmt.Println(message)
		},
	})

	adapter := adapterFor(gameType)
	submitter := leaderboard.NewSubmitter(opts.leaderboardURL, opts.venueCode, playerID, name)
	sess := session.New(conn, rooms, adapter, submitter, session.Callbacks{
		OnPhaseChange: func(phase session.Phase) {
			fmt.Printf("-- %s --\n", phase)
		},
		OnTurnChanged: func(turnID string, seconds int) {
			if turnID == playerID {
				fmt.Printf("Your turn (%ds)\n", seconds)
			} else {
				fmt.Printf("Waiting for %s\n", turnID)
			}
		},
		OnTimerExpired: func() {
			fmt.Println("Time is up, waiting for the server...")
		},
		OnMoveRejected: func(reason string) {
			fmt.Printf("Move rejected: %s\n", reason)
		},
		OnFinished: func(result models.GameResult) {
			fmt.Printf("Game over, winner: %s\n", result.WinnerID)
			for _, entry := range result.Ranking {
				fmt.Printf("  %d. %s  %d\n", entry.Rank, entry.Name, entry.Score)
			}
		},
	})
	defer sess.Close()

	if err := conn.Connect(ctx); err != nil {
		return err
	}
	defer conn.Close()
	fmt.Printf("¡Bienvenido, %s!\n", name)

	if joinCode != "" {
		if err := rooms.JoinRoom(strings.ToUpper(joinCode)); err != nil {
			return err
		}
	} else {
		code, err := rooms.CreateRoom(models.GameSettings{GameType: gameType, Rounds: rounds})
		if err != nil {
			return err
		}
		if link, err := joinlink.Build(opts.joinBaseURL, code, opts.venueCode); err == nil {
			fmt.Printf("Share to join: %s\n", link)
		}
	}

	return repl(rooms, sess, adapter)
}

// repl reads one command per line until quit or EOF.
func repl(rooms *lobby.Lifecycle, sess *session.Session, adapter session.Adapter) error {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		var err error
		switch fields[0] {
		case "start":
			err = rooms.Start()
		case "public":
			err = rooms.SetVisibility(true)
		case "private":
			err = rooms.SetVisibility(false)
		case "kick":
			if len(fields) > 1 {
				err = rooms.KickPlayer(fields[1])
			}
		case "rock", "paper", "scissors":
			if a, ok := adapter.(*session.RPSAdapter); ok {
				choice, _ := rps.ParseChoice(fields[0])
				err = a.Play(choice)
			}
		case "roll":
			if a, ok := adapter.(*session.ParchisAdapter); ok {
				err = a.RollDice()
			}
		case "move":
			if a, ok := adapter.(*session.ParchisAdapter); ok && len(fields) > 1 {
				var piece int
				if _, scanErr := fmt.Sscanf(fields[1], "%d", &piece); scanErr == nil {
					err = a.MovePiece(piece)
				}
			}
		case "guess":
			if a, ok := adapter.(*session.DrawingAdapter); ok && len(fields) > 1 {
				err = a.Guess(strings.Join(fields[1:], " "))
			}
		case "word":
			if a, ok := adapter.(*session.DrawingAdapter); ok && len(fields) > 1 {
				err = a.ChooseWord(fields[1])
			}
		case "leave":
			err = rooms.Leave()
		case "quit":
			return nil
		default:
			fmt.Println("Commands: start public private kick rock paper scissors roll move guess word leave quit")
		}
		if err != nil {
			fmt.Printf("Error: %v\n", err)
		}
	}
	return scanner.Err()
}

// runBotClient plays a local rps match against the bot; no hub involved.
func runBotClient(name string, opts *rootOptions, seed int64) error {
	playerID := utils.PlayerID()
	if seed == 0 {
		seed = int64(os.Getpid())
	}
	submitter := leaderboard.NewSubmitter(opts.leaderboardURL, opts.venueCode, playerID, name)

	done := make(chan struct{})
	game := session.NewBotGame(playerID, name, 0, seed, submitter, session.Callbacks{
		OnPhaseChange: func(phase session.Phase) {
			if phase == session.PhasePlaying {
				fmt.Println("rock, paper or scissors?")
			}
		},
		OnFinished: func(result models.GameResult) {
			yours, house := finalScores(result)
			fmt.Printf("Final score %d-%d\n", yours, house)
			close(done)
		},
	})
	defer game.Close()

	fmt.Printf("Playing against the house, %s. rock, paper or scissors?\n", name)
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		choice, err := rps.ParseChoice(strings.TrimSpace(scanner.Text()))
		if err != nil {
			fmt.Println("rock, paper or scissors?")
			continue
		}
		if err := game.Play(choice); err != nil {
			fmt.Printf("Error: %v\n", err)
			continue
		}
		fmt.Printf("You: %s  House: %s\n", game.LastPlayer, game.LastBot)
		select {
		case <-done:
			return nil
		default:
		}
	}
	return scanner.Err()
}

func finalScores(result models.GameResult) (int, int) {
	if len(result.Ranking) < 2 {
		return 0, 0
	}
	return result.Ranking[0].Score, result.Ranking[1].Score
}
