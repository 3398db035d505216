// Package ingest decodes a stream of encrypted packets against every
// configured channel key and publishes the outcome on the message bus.
package ingest

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/potatomesh/meshdecode/internal/bus"
	"github.com/potatomesh/meshdecode/internal/channel"
	"github.com/potatomesh/meshdecode/internal/config"
	"github.com/potatomesh/meshdecode/internal/decrypt"
	"github.com/potatomesh/meshdecode/internal/domain"
	"github.com/potatomesh/meshdecode/internal/events"
	"github.com/potatomesh/meshdecode/internal/payload"
	"github.com/potatomesh/meshdecode/internal/persistence"
)

// Catalog records which channel names have been seen.
type Catalog interface {
	Record(ctx context.Context, obs persistence.ChannelObservation) error
}

// Options configures a Service. Only Channels is required.
type Options struct {
	Channels      []config.ChannelConfig
	Rainbow       *channel.RainbowService
	Catalog       Catalog
	Writer        *persistence.WriterQueue
	Decoder       payload.Decoder
	MinConfidence float64
	DedupWindow   time.Duration
	Now           func() time.Time
	// Output receives decode outcomes. It defaults to the input bus; use a
	// separate bus when the producer can outpace decoding, since a shared
	// pubsub bus would then block on itself.
	Output bus.MessageBus
}

type keyedChannel struct {
	name  string
	psk   string
	key   []byte
	hash  uint8
	label string
}

type Service struct {
	logger        *slog.Logger
	bus           bus.MessageBus
	out           bus.MessageBus
	channels      []keyedChannel
	rainbow       *channel.RainbowService
	catalog       Catalog
	writer        *persistence.WriterQueue
	decoder       payload.Decoder
	minConfidence float64
	seen          *seenCache
	now           func() time.Time
}

func NewService(logger *slog.Logger, b bus.MessageBus, opts Options) (*Service, error) {
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	channels := make([]keyedChannel, 0, len(opts.Channels))
	for _, ch := range opts.Channels {
		key, err := channel.ParsePSK(ch.PSK)
		if err != nil {
			return nil, fmt.Errorf("channel %q: %w", ch.Name, err)
		}
		if !channel.IsCipherKey(key) {
			logger.Info("skipping unencrypted channel", "channel", ch.Name)
			continue
		}
		hash, err := channel.Hash(ch.Name, key)
		if err != nil {
			return nil, fmt.Errorf("channel %q: %w", ch.Name, err)
		}
		channels = append(channels, keyedChannel{
			name:  ch.Name,
			psk:   ch.PSK,
			key:   key,
			hash:  hash,
			label: channel.KeyLabel(key),
		})
	}
	if len(channels) == 0 {
		return nil, errors.New("no encrypted channels configured")
	}

	out := opts.Output
	if out == nil {
		out = b
	}
	rainbow := opts.Rainbow
	if rainbow == nil {
		rainbow = channel.NewRainbowService()
	}

	return &Service{
		logger:        logger,
		bus:           b,
		out:           out,
		channels:      channels,
		rainbow:       rainbow,
		catalog:       opts.Catalog,
		writer:        opts.Writer,
		decoder:       opts.Decoder,
		minConfidence: opts.MinConfidence,
		seen:          newSeenCache(opts.DedupWindow, now),
		now:           now,
	}, nil
}

// Start consumes TopicPacketEncrypted until ctx is cancelled or the bus
// closes. The returned channel is closed when the loop exits.
func (s *Service) Start(ctx context.Context) <-chan struct{} {
	sub := s.bus.Subscribe(events.TopicPacketEncrypted)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				go s.bus.Unsubscribe(sub)
				// Drain so a pending publish never blocks on this subscriber.
				for range sub {
				}

				return
			case msg, ok := <-sub:
				if !ok {
					return
				}
				pkt, ok := msg.(events.EncryptedPacket)
				if !ok {
					s.logger.Warn("unexpected message on encrypted topic", "type", fmt.Sprintf("%T", msg))
					continue
				}
				s.Handle(ctx, pkt)
			}
		}
	}()

	return done
}

// Handle decodes one packet and publishes the outcome. It returns false for
// duplicates and undecodable packets.
func (s *Service) Handle(ctx context.Context, pkt events.EncryptedPacket) (events.DecodedPacket, bool) {
	decoded, undecodable, ok := s.decode(ctx, pkt)
	switch {
	case ok:
		s.out.Publish(events.TopicPacketDecoded, decoded)
	case undecodable != nil:
		s.out.Publish(events.TopicPacketUndecodable, *undecodable)
	}

	return decoded, ok
}

func (s *Service) decode(ctx context.Context, pkt events.EncryptedPacket) (events.DecodedPacket, *events.UndecodablePacket, bool) {
	reject := func(attempts int, reason string) (events.DecodedPacket, *events.UndecodablePacket, bool) {
		s.logger.Debug("packet undecodable", "id", pkt.ID.String(), "from", pkt.FromID, "attempts", attempts, "reason", reason)

		return events.DecodedPacket{}, &events.UndecodablePacket{
			Packet:     pkt,
			Attempts:   attempts,
			Reason:     reason,
			Candidates: s.candidatesFor(pkt.Channel),
		}, false
	}

	ciphertext, err := base64.StdEncoding.DecodeString(strings.TrimSpace(pkt.Ciphertext))
	if err != nil || len(ciphertext) == 0 {
		return reject(0, "ciphertext is not valid base64")
	}
	packetID, err := domain.ParsePacketID(pkt.PacketID())
	if err != nil {
		return reject(0, err.Error())
	}
	nodeNum, err := domain.ResolveNodeNum(domain.NormalizeNodeID(pkt.FromID), pkt.FromNum)
	if err != nil {
		return reject(0, err.Error())
	}
	if nodeNum == domain.BroadcastNodeNum {
		return reject(0, "sender is the broadcast address")
	}

	if !s.seen.Add(packetKey{from: nodeNum, id: packetID}) {
		s.logger.Debug("duplicate packet dropped", "id", packetID, "from", domain.FormatNodeNum(nodeNum))

		return events.DecodedPacket{}, nil, false
	}

	attempts := 0
	for _, ch := range s.channels {
		if pkt.Channel != nil && *pkt.Channel != int(ch.hash) {
			continue
		}
		attempts++
		res, err := decrypt.DecryptWithKey(ciphertext, ch.key, packetID, nodeNum)
		if err != nil || !s.acceptable(res) {
			continue
		}

		out := events.DecodedPacket{
			Packet:      pkt,
			Channel:     ch.name,
			ChannelHash: ch.hash,
			Candidates:  s.rainbow.Candidates(int(ch.hash), ch.psk),
			Result:      res,
			DecodedAt:   s.now().UTC(),
		}
		out.Fields = s.decodeFields(ctx, res)
		s.record(ch, out.Candidates)
		s.logger.Info("packet decoded", "id", packetID, "from", domain.FormatNodeNum(nodeNum), "channel", ch.name, "port", res.Port.String())

		return out, nil, true
	}

	if attempts == 0 {
		return reject(0, "no configured key matches the channel hash")
	}

	return reject(attempts, "no configured key produced a plausible message")
}

func (s *Service) acceptable(res decrypt.Result) bool {
	if score, ok := res.Confidence(); ok {
		return score >= s.minConfidence
	}

	return res.Port != domain.PortUnknown && res.Port.Known() && res.Port != domain.PortTextMessage
}

func (s *Service) decodeFields(ctx context.Context, res decrypt.Result) []byte {
	if s.decoder == nil || !s.decoder.Supports(res.Port) {
		return nil
	}
	fields, err := s.decoder.Decode(ctx, res.Port, res.Payload)
	if err != nil {
		s.logger.Debug("payload decode failed", "port", res.Port.String(), "error", err)

		return nil
	}

	return fields.Fields
}

// record catalogs the configured name that decoded a packet together with the
// dictionary names sharing its hash, so the bucket is known to be in use.
func (s *Service) record(ch keyedChannel, candidates []string) {
	if s.catalog == nil {
		return
	}
	seen := s.now()
	obs := make([]persistence.ChannelObservation, 0, len(candidates)+1)
	obs = append(obs, persistence.ChannelObservation{
		Hash:     ch.hash,
		Name:     ch.name,
		PSKLabel: ch.label,
		Source:   persistence.SourceConfigured,
		LastSeen: seen,
	})
	for _, name := range candidates {
		if name == ch.name {
			continue
		}
		obs = append(obs, persistence.ChannelObservation{
			Hash:     ch.hash,
			Name:     name,
			PSKLabel: ch.label,
			Source:   persistence.SourceDictionary,
			LastSeen: seen,
		})
	}
	for _, o := range obs {
		write := func(ctx context.Context) error {
			return s.catalog.Record(ctx, o)
		}
		if s.writer != nil {
			s.writer.Enqueue("record channel observation", write)
			continue
		}
		if err := write(context.Background()); err != nil {
			s.logger.Warn("record channel observation failed", "channel", o.Name, "error", err)
		}
	}
}

// candidatesFor lists dictionary names behind hash under every configured
// key, without duplicates.
func (s *Service) candidatesFor(hash *int) []string {
	if hash == nil {
		return nil
	}
	var (
		out  []string
		seen = make(map[string]struct{})
		psks = make(map[string]struct{})
	)
	for _, ch := range s.channels {
		if _, ok := psks[ch.psk]; ok {
			continue
		}
		psks[ch.psk] = struct{}{}
		for _, name := range s.rainbow.Candidates(*hash, ch.psk) {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			out = append(out, name)
		}
	}

	return out
}
