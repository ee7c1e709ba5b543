package cmd

import (
	"fmt"
	"log"

	"Sobremesa/api"

	"github.com/spf13/cobra"
)

func newHubsimCmd() *cobra.Command {
	var bind string
	var port int

	cmd := &cobra.Command{
		Use:   "hubsim",
		Short: "Run the local hub simulator for development and demos.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr := fmt.Sprintf("%s:%d", bind, port)
			log.Printf("[HUBSIM] Listening on %s", addr)
			return api.NewServer().Run(addr)
		},
	}

	cmd.Flags().StringVarP(&bind, "bind", "b", "0.0.0.0", "address to bind to")
	cmd.Flags().IntVarP(&port, "port", "p", 8080, "port to listen on")
	return cmd
}
