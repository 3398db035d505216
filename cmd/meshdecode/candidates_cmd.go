package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/potatomesh/meshdecode/internal/channel"
)

func newCandidatesCmd(c *cli) *cobra.Command {
	var psk string
	cmd := &cobra.Command{
		Use:   "candidates HASH",
		Short: "List channel names that produce HASH under a key",
		Long: `List channel names whose hash under --psk equals HASH (decimal or 0x hex).
Names recorded in the channel catalog are listed first.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := parseHash(args[0])
			if err != nil {
				return err
			}
			if _, err := channel.ParsePSK(psk); err != nil {
				return err
			}
			names, err := c.rt.Candidates(cmd.Context(), h, psk)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, name := range names {
				if _, err := fmt.Fprintln(out, name); err != nil {
					return err
				}
			}

			return nil
		},
	}
	cmd.Flags().StringVar(&psk, "psk", channel.DefaultPSK, "base64 channel key")

	return cmd
}
