package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/potatomesh/meshdecode/internal/domain"
)

// packetFlags are the identifiers that select a packet's key stream.
type packetFlags struct {
	id      string
	from    string
	fromNum int64
}

func (f *packetFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.id, "id", "", "packet id (decimal)")
	cmd.Flags().StringVar(&f.from, "from", "", "sender node id, e.g. !1234abcd")
	cmd.Flags().Int64Var(&f.fromNum, "from-num", 0, "sender node number; overrides --from")
	_ = cmd.MarkFlagRequired("id")
}

// fromNumPtr returns --from-num only when it was set explicitly.
func (f *packetFlags) fromNumPtr(cmd *cobra.Command) *int64 {
	if !cmd.Flags().Changed("from-num") {
		return nil
	}
	v := f.fromNum

	return &v
}

func (f *packetFlags) resolve(cmd *cobra.Command) (uint64, uint32, error) {
	id, err := domain.ParsePacketID(strings.TrimSpace(f.id))
	if err != nil {
		return 0, 0, err
	}
	node, err := domain.ResolveNodeNum(f.from, f.fromNumPtr(cmd))
	if err != nil {
		return 0, 0, err
	}

	return id, node, nil
}

// parseHash accepts a channel hash as decimal or 0x-prefixed hex.
func parseHash(raw string) (int, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(raw), 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid channel hash %q: %w", raw, err)
	}
	if v < 0 || v > 0xff {
		return 0, fmt.Errorf("channel hash %d is outside 0..255", v)
	}

	return int(v), nil
}
