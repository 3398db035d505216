package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/potatomesh/meshdecode/internal/channel"
)

func newHashCmd(c *cli) *cobra.Command {
	var psk string
	cmd := &cobra.Command{
		Use:   "hash NAME",
		Short: "Print the one-byte hash of a channel name under a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("psk") {
				psk = c.pskFor(args[0])
			}
			h, err := channel.HashBase64(args[0], psk)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "0x%02x\t%d\n", h, h)

			return err
		},
	}
	cmd.Flags().StringVar(&psk, "psk", channel.DefaultPSK, "base64 channel key; defaults to the configured key for NAME, then \"AQ==\"")

	return cmd
}

// pskFor returns the configured key of the named channel, or the default key.
func (c *cli) pskFor(name string) string {
	if c.rt != nil {
		for _, ch := range c.rt.Config.Channels {
			if ch.Name == name {
				return ch.PSK
			}
		}
	}

	return channel.DefaultPSK
}
