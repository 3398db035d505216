package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/potatomesh/meshdecode/internal/channel"
	"github.com/potatomesh/meshdecode/internal/decrypt"
)

type decryptOutput struct {
	Channel string         `json:"channel,omitempty"`
	PSK     string         `json:"psk_label"`
	Result  decrypt.Result `json:"result"`
}

func newDecryptCmd(c *cli) *cobra.Command {
	var (
		pf         packetFlags
		ciphertext string
		psk        string
	)
	cmd := &cobra.Command{
		Use:   "decrypt",
		Short: "Decrypt one packet and print the Data message as JSON",
		Long: `Decrypt one packet. With --psk only that key is tried; otherwise every
configured channel is tried in order and the first whose plaintext parses wins.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			type attempt struct{ name, psk string }
			var attempts []attempt
			if cmd.Flags().Changed("psk") {
				attempts = append(attempts, attempt{psk: psk})
			} else {
				for _, ch := range c.rt.Config.Channels {
					attempts = append(attempts, attempt{name: ch.Name, psk: ch.PSK})
				}
			}

			logger := c.rt.LogManager.Logger("decrypt")
			for _, a := range attempts {
				res, err := decrypt.DecryptDetailed(decrypt.Packet{
					Ciphertext: ciphertext,
					PacketID:   strings.TrimSpace(pf.id),
					FromID:     pf.from,
					FromNum:    pf.fromNumPtr(cmd),
					PSK:        a.psk,
				})
				if err != nil {
					logger.Debug("key did not decode packet", "channel", a.name, "error", err)
					continue
				}
				label := "invalid"
				if key, err := channel.ParsePSK(a.psk); err == nil {
					label = channel.KeyLabel(key)
				}

				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")

				return enc.Encode(decryptOutput{Channel: a.name, PSK: label, Result: res})
			}

			return fmt.Errorf("%w with %d key(s)", errUndecodable, len(attempts))
		},
	}
	pf.register(cmd)
	cmd.Flags().StringVar(&ciphertext, "ciphertext", "", "base64 encrypted payload")
	cmd.Flags().StringVar(&psk, "psk", "", "base64 channel key; \"AQ==\" is the default key")
	_ = cmd.MarkFlagRequired("ciphertext")

	return cmd
}
