package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/potatomesh/meshdecode/internal/events"
)

// maxLineBytes bounds one JSON packet line.
const maxLineBytes = 1 << 20

type watchLine struct {
	Status string `json:"status"`
	Event  any    `json:"event"`
}

func newWatchCmd(c *cli) *cobra.Command {
	var (
		input         string
		showUndecoded bool
	)
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Decode a JSON Lines stream of encrypted packets",
		Long: `Read one encrypted packet per line, e.g.
  {"id": 3141592653, "from": "!1234abcd", "channel": 8, "encrypted": "..."}
try every configured channel key and write each decoded packet as a JSON line.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in := cmd.InOrStdin()
			if input != "" && input != "-" {
				// #nosec G304 -- the operator names the input file.
				f, err := os.Open(filepath.Clean(input))
				if err != nil {
					return fmt.Errorf("open input: %w", err)
				}
				defer func() { _ = f.Close() }()
				in = f
			}

			return c.watch(cmd, in, showUndecoded)
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "-", "packet stream to read; - for stdin")
	cmd.Flags().BoolVar(&showUndecoded, "show-undecodable", false, "also write packets no key could decode")

	return cmd
}

func (c *cli) watch(cmd *cobra.Command, in io.Reader, showUndecoded bool) error {
	rt := c.rt
	if err := rt.StartIngest(); err != nil {
		return err
	}
	logger := rt.LogManager.Logger("watch")

	topics := []string{events.TopicPacketDecoded}
	if showUndecoded {
		topics = append(topics, events.TopicPacketUndecodable)
	}
	results := rt.OutBus.Subscribe(topics...)
	ingestDone := rt.Ingest.Start(rt.Ctx)

	var (
		wg       sync.WaitGroup
		writeErr error
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		enc := json.NewEncoder(cmd.OutOrStdout())
		for msg := range results {
			var line watchLine
			switch ev := msg.(type) {
			case events.DecodedPacket:
				line = watchLine{Status: "decoded", Event: ev}
			case events.UndecodablePacket:
				line = watchLine{Status: "undecodable", Event: ev}
			default:
				continue
			}
			if err := enc.Encode(line); err != nil && writeErr == nil {
				writeErr = fmt.Errorf("write output: %w", err)
			}
		}
	}()

	readErr := feed(rt.Ctx, in, logger, func(pkt events.EncryptedPacket) {
		rt.InBus.Publish(events.TopicPacketEncrypted, pkt)
	})

	// Closing the input bus lets ingest drain what was already published.
	rt.InBus.Close()
	<-ingestDone
	rt.OutBus.Close()
	wg.Wait()

	if readErr != nil {
		return readErr
	}

	return writeErr
}

// feed parses JSON Lines from in and hands each packet to publish. Blank
// lines are skipped and malformed lines are logged.
func feed(ctx context.Context, in io.Reader, logger *slog.Logger, publish func(events.EncryptedPacket)) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	lineNo := 0
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		lineNo++
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}
		var pkt events.EncryptedPacket
		if err := json.Unmarshal([]byte(raw), &pkt); err != nil {
			logger.Warn("skipping malformed packet line", "line", lineNo, "error", err)
			continue
		}
		publish(pkt)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read packets: %w", err)
	}

	return nil
}
