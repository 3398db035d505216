package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/potatomesh/meshdecode/internal/app"
)

// errUndecodable makes the process exit with status 2 without a usage dump.
var errUndecodable = errors.New("packet is undecodable")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root, c := newRootCmd(os.Stderr)
	err := root.ExecuteContext(ctx)
	// PersistentPostRunE is skipped when a command fails.
	_ = c.close()
	if err != nil {
		fmt.Fprintln(os.Stderr, "meshdecode:", err)
		if errors.Is(err, errUndecodable) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

// cli carries the runtime shared by subcommands.
type cli struct {
	configFile string
	logLevel   string
	console    io.Writer
	rt         *app.Runtime
}

func newRootCmd(console io.Writer) (*cobra.Command, *cli) {
	c := &cli{console: console}

	root := &cobra.Command{
		Use:   app.Name,
		Short: "Decrypt and inspect Meshtastic channel traffic",
		Long: `meshdecode recovers Meshtastic Data messages from channel-encrypted packets.

It expands channel keys the way the firmware does, derives the AES-CTR nonce
from the packet id and sender, and guesses channel names from their one-byte
hash. See ` + app.MeshtasticURL + ` for the protocol.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := app.Initialize(cmd.Context(), app.Options{
				ConfigFile: c.configFile,
				LogLevel:   c.logLevel,
				Console:    c.console,
			})
			if err != nil {
				return err
			}
			c.rt = rt

			return nil
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return c.close()
		},
	}
	root.PersistentFlags().StringVar(&c.configFile, "config", "", "config file (.json, .yaml or .yml); defaults to the user config dir")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "override the configured log level (debug, info, warn, error)")

	root.AddCommand(
		newDecryptCmd(c),
		newHashCmd(c),
		newCandidatesCmd(c),
		newCatalogCmd(c),
		newNonceCmd(),
		newEncryptCmd(),
		newWatchCmd(c),
		newVersionCmd(),
	)

	return root, c
}

func (c *cli) close() error {
	if c.rt == nil {
		return nil
	}
	err := c.rt.Close()
	c.rt = nil

	return err
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Args:  cobra.NoArgs,
		// The runtime is not needed to print the version.
		PersistentPreRunE:  func(*cobra.Command, []string) error { return nil },
		PersistentPostRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), app.Name, app.BuildVersionWithDate())

			return err
		},
	}
}
