package main

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/potatomesh/meshdecode/internal/decrypt"
)

func newNonceCmd() *cobra.Command {
	var pf packetFlags
	cmd := &cobra.Command{
		Use:   "nonce",
		Short: "Print the AES-CTR nonce of a packet as hex",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			id, node, err := pf.resolve(cmd)
			if err != nil {
				return err
			}
			nonce := decrypt.Nonce(id, node)
			_, err = fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(nonce[:]))

			return err
		},
	}
	pf.register(cmd)

	return cmd
}
