package cmd

import (
	"fmt"
	"os"

	"Sobremesa/services/joinlink"

	"github.com/spf13/cobra"
)

func newQRCmd(opts *rootOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "qr ROOM_CODE",
		Short: "Render the join link for a room as a QR PNG.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			link, err := joinlink.Build(opts.joinBaseURL, args[0], opts.venueCode)
			if err != nil {
				return err
			}
			png, err := joinlink.QRPNG(link)
			if err != nil {
				return err
			}
			if err := os.WriteFile(output, png, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", output, err)
			}
			fmt.Printf("%s -> %s\n", link, output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "join.png", "output PNG path")
	return cmd
}
