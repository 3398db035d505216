package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newCatalogCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect and maintain the channel name catalog",
		Long: `The catalog records channel names behind hashes seen in decoded traffic.
It is kept only when catalog.enabled is set in the config.`,
	}
	cmd.AddCommand(
		newCatalogListCmd(c),
		newCatalogPruneCmd(c),
		newCatalogClearCmd(c),
	)

	return cmd
}

func newCatalogListCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every recorded channel name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			entries, err := c.rt.CatalogEntries(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if _, err := fmt.Fprintln(out, "HASH\tNAME\tKEY\tSOURCE\tHITS\tLAST_SEEN"); err != nil {
				return err
			}
			for _, e := range entries {
				if _, err := fmt.Fprintf(out, "0x%02x\t%s\t%s\t%s\t%d\t%s\n",
					e.Hash, e.Name, e.PSKLabel, e.Source, e.Hits, e.LastSeen.Format(time.RFC3339)); err != nil {
					return err
				}
			}

			return nil
		},
	}
}

func newCatalogPruneCmd(c *cli) *cobra.Command {
	var olderThan time.Duration
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Drop names not seen recently",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if olderThan <= 0 {
				return errors.New("--older-than must be positive")
			}
			removed, err := c.rt.PruneCatalog(cmd.Context(), olderThan, time.Now())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "removed %d\n", removed)

			return err
		},
	}
	cmd.Flags().DurationVar(&olderThan, "older-than", 30*24*time.Hour, "drop names last seen before this long ago")

	return cmd
}

func newCatalogClearCmd(c *cli) *cobra.Command {
	var confirm bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every recorded name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !confirm {
				return errors.New("refusing to clear the catalog without --yes")
			}

			return c.rt.ClearCatalog(cmd.Context())
		},
	}
	cmd.Flags().BoolVar(&confirm, "yes", false, "confirm removal of every entry")

	return cmd
}
