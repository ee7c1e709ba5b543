// Package cmd wires the command line surface: the table client itself,
// the local hub simulator and the join-QR generator.
package cmd

import (
	"fmt"
	"strings"

	"Sobremesa/config"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type rootOptions struct {
	hubURL         string
	leaderboardURL string
	joinBaseURL    string
	venueCode      string
	name           string
}

// NewRootCmd builds the CLI tree. Flags override env vars, env vars
// override the .env defaults.
func NewRootCmd() *cobra.Command {
	cfg := config.Load()
	opts := &rootOptions{}

	v := viper.New()
	v.SetEnvPrefix("SOBREMESA")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "sobremesa",
		Short:         "Real-time table games for the wait between ordering and eating.",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	fs := cmd.PersistentFlags()
	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVar(&opts.hubURL, "hub-url", cfg.HubURL, "websocket hub endpoint (env: SOBREMESA_HUB_URL)")
	fs.StringVar(&opts.leaderboardURL, "leaderboard-url", cfg.LeaderboardURL, "leaderboard endpoint (env: SOBREMESA_LEADERBOARD_URL)")
	fs.StringVar(&opts.joinBaseURL, "join-base-url", cfg.JoinBaseURL, "base URL for shareable join links (env: SOBREMESA_JOIN_BASE_URL)")
	fs.StringVar(&opts.venueCode, "venue", cfg.VenueCode, "venue code for listings and scores (env: SOBREMESA_VENUE_CODE)")
	fs.StringVar(&opts.name, "name", "", "display name, defaults to the identity token's or a guest name")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.AddCommand(newClientCmd(opts, cfg))
	cmd.AddCommand(newHubsimCmd())
	cmd.AddCommand(newQRCmd(opts))
	return cmd
}

// Execute runs the CLI.
func Execute() {
	cobra.CheckErr(NewRootCmd().Execute())
}
