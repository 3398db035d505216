package main

import (
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/potatomesh/meshdecode/internal/channel"
	"github.com/potatomesh/meshdecode/internal/decrypt"
	"github.com/potatomesh/meshdecode/internal/domain"
)

func newEncryptCmd() *cobra.Command {
	var (
		pf         packetFlags
		psk        string
		port       int32
		text       string
		payloadB64 string
	)
	cmd := &cobra.Command{
		Use:   "encrypt",
		Short: "Build and encrypt a Data message, printing base64 ciphertext",
		Long: `Build a Data message from --text (text message port) or --payload
(raw base64 bytes on --port) and encrypt it the way a node would.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var body []byte
			switch {
			case cmd.Flags().Changed("text") && cmd.Flags().Changed("payload"):
				return errors.New("--text and --payload are mutually exclusive")
			case cmd.Flags().Changed("payload"):
				raw, err := base64.StdEncoding.DecodeString(payloadB64)
				if err != nil {
					return fmt.Errorf("decode payload: %w", err)
				}
				body = raw
			default:
				body = []byte(text)
				if !cmd.Flags().Changed("port") {
					port = int32(domain.PortTextMessage)
				}
			}

			key, err := channel.ParsePSK(psk)
			if err != nil {
				return err
			}
			if !channel.IsCipherKey(key) {
				return fmt.Errorf("%w: key expands to %d bytes", channel.ErrInvalidPSK, len(key))
			}
			id, node, err := pf.resolve(cmd)
			if err != nil {
				return err
			}
			ct, err := decrypt.Encrypt(key, id, node, decrypt.EncodeData(domain.PortNum(port), body))
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), base64.StdEncoding.EncodeToString(ct))

			return err
		},
	}
	pf.register(cmd)
	cmd.Flags().StringVar(&psk, "psk", channel.DefaultPSK, "base64 channel key")
	cmd.Flags().Int32Var(&port, "port", int32(domain.PortTextMessage), "port number of the payload")
	cmd.Flags().StringVar(&text, "text", "", "text message body")
	cmd.Flags().StringVar(&payloadB64, "payload", "", "base64 raw payload")

	return cmd
}
