package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Observation sources.
const (
	SourceConfigured = "configured"
	SourceDictionary = "dictionary"
)

// ChannelObservation is a channel name seen behind a hash under one key.
type ChannelObservation struct {
	Hash      uint8
	Name      string
	PSKLabel  string
	Source    string
	FirstSeen time.Time
	LastSeen  time.Time
	Hits      int64
}

// ChannelRepo catalogs which channel names have been seen on the air.
type ChannelRepo struct {
	db *sql.DB
}

func NewChannelRepo(db *sql.DB) *ChannelRepo {
	return &ChannelRepo{db: db}
}

// Record upserts an observation. Repeated sightings bump hits and last_seen;
// first_seen and a configured source are never overwritten.
func (r *ChannelRepo) Record(ctx context.Context, obs ChannelObservation) error {
	name := strings.TrimSpace(obs.Name)
	if name == "" {
		return errors.New("channel name is required")
	}
	seen := obs.LastSeen
	if seen.IsZero() {
		seen = time.Now()
	}
	source := obs.Source
	if source == "" {
		source = SourceDictionary
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO channel_observations(hash, name, psk_label, source, first_seen, last_seen, hits)
		VALUES (?, ?, ?, ?, ?, ?, 1)
		ON CONFLICT(hash, name, psk_label) DO UPDATE SET
			source = CASE WHEN channel_observations.source = 'configured' THEN channel_observations.source ELSE excluded.source END,
			last_seen = MAX(channel_observations.last_seen, excluded.last_seen),
			hits = channel_observations.hits + 1
	`, int64(obs.Hash), name, obs.PSKLabel, source, toUnixMillis(seen), toUnixMillis(seen))
	if err != nil {
		return fmt.Errorf("record channel observation: %w", err)
	}

	return nil
}

// ListByHash returns observations for hash under pskLabel. Configured names
// come first, then the rest most frequent first.
func (r *ChannelRepo) ListByHash(ctx context.Context, hash uint8, pskLabel string) ([]ChannelObservation, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT hash, name, psk_label, source, first_seen, last_seen, hits
		FROM channel_observations
		WHERE hash = ? AND psk_label = ?
		ORDER BY source = 'configured' DESC, hits DESC, last_seen DESC, name ASC
	`, int64(hash), pskLabel)
	if err != nil {
		return nil, fmt.Errorf("list channel observations: %w", err)
	}

	return scanObservations(rows)
}

// ListAll returns every observation ordered by hash, configured names first
// within a hash, then by popularity.
func (r *ChannelRepo) ListAll(ctx context.Context) ([]ChannelObservation, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT hash, name, psk_label, source, first_seen, last_seen, hits
		FROM channel_observations
		ORDER BY hash ASC, source = 'configured' DESC, hits DESC, name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list channel observations: %w", err)
	}

	return scanObservations(rows)
}

func scanObservations(rows *sql.Rows) ([]ChannelObservation, error) {
	defer func() { _ = rows.Close() }()

	var out []ChannelObservation
	for rows.Next() {
		var (
			obs     ChannelObservation
			hash    int64
			firstMs int64
			lastMs  int64
		)
		if err := rows.Scan(&hash, &obs.Name, &obs.PSKLabel, &obs.Source, &firstMs, &lastMs, &obs.Hits); err != nil {
			return nil, fmt.Errorf("scan channel observation: %w", err)
		}
		obs.Hash = uint8(hash)
		obs.FirstSeen = fromUnixMillis(firstMs)
		obs.LastSeen = fromUnixMillis(lastMs)
		out = append(out, obs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate channel observations: %w", err)
	}

	return out, nil
}
