package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/potatomesh/meshdecode/internal/channel"
)

const (
	DefaultLogLevel          = "info"
	DefaultLogFormat         = "text"
	DefaultMinConfidence     = 0.2
	DefaultDedupWindow       = 10 * time.Minute
	DefaultDecoderTimeout    = 5 * time.Second
	DefaultPrimaryChannel    = "LongFast"
	defaultCatalogFilename   = "channels.db"
	defaultDecoderTimeoutStr = "5s"
)

// LoggingConfig defines runtime logging behavior.
type LoggingConfig struct {
	Level     string `json:"level" yaml:"level"`
	Format    string `json:"format" yaml:"format"`
	LogToFile bool   `json:"log_to_file" yaml:"log_to_file"`
}

// ChannelConfig is a channel the decoder holds a key for.
type ChannelConfig struct {
	Name string `json:"name" yaml:"name"`
	PSK  string `json:"psk" yaml:"psk"`
}

// DictionaryConfig extends the built-in channel name dictionary.
type DictionaryConfig struct {
	ExtraNames []string `json:"extra_names" yaml:"extra_names"`
}

// CatalogConfig controls the sqlite catalog of observed channel names.
type CatalogConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	DBPath  string `json:"db_path" yaml:"db_path"`
	// Retention drops observations older than this on startup; empty keeps
	// everything.
	Retention string `json:"retention,omitempty" yaml:"retention,omitempty"`
}

// PayloadDecoderConfig describes the external full-schema payload decoder.
type PayloadDecoderConfig struct {
	Command []string `json:"command" yaml:"command"`
	Timeout string   `json:"timeout" yaml:"timeout"`
}

// IngestConfig tunes the multi-key decode service.
type IngestConfig struct {
	MinConfidence float64 `json:"min_confidence" yaml:"min_confidence"`
	DedupWindow   string  `json:"dedup_window" yaml:"dedup_window"`
}

// AppConfig is the root application configuration.
type AppConfig struct {
	Logging        LoggingConfig        `json:"logging" yaml:"logging"`
	Channels       []ChannelConfig      `json:"channels" yaml:"channels"`
	Dictionary     DictionaryConfig     `json:"dictionary" yaml:"dictionary"`
	Catalog        CatalogConfig        `json:"catalog" yaml:"catalog"`
	PayloadDecoder PayloadDecoderConfig `json:"payload_decoder" yaml:"payload_decoder"`
	Ingest         IngestConfig         `json:"ingest" yaml:"ingest"`
}

func Default() AppConfig {
	return AppConfig{
		Logging: LoggingConfig{
			Level:     DefaultLogLevel,
			Format:    DefaultLogFormat,
			LogToFile: false,
		},
		Channels: []ChannelConfig{
			{Name: DefaultPrimaryChannel, PSK: channel.DefaultPSK},
		},
		Catalog: CatalogConfig{
			Enabled: false,
			DBPath:  "",
		},
		PayloadDecoder: PayloadDecoderConfig{
			Timeout: defaultDecoderTimeoutStr,
		},
		Ingest: IngestConfig{
			MinConfidence: DefaultMinConfidence,
			DedupWindow:   DefaultDedupWindow.String(),
		},
	}
}

// Load reads the config at path. A missing file yields defaults. Files ending
// in .yaml or .yml are parsed as YAML, anything else as JSON.
func Load(path string) (AppConfig, error) {
	cfg := Default()
	cleanPath := filepath.Clean(path)
	// #nosec G304 -- path comes from the --config flag or the resolved user config dir.
	raw, err := os.ReadFile(cleanPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}

		return AppConfig{}, fmt.Errorf("read config: %w", err)
	}

	if isYAML(cleanPath) {
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return AppConfig{}, fmt.Errorf("decode config yaml: %w", err)
		}
	} else if err := json.Unmarshal(raw, &cfg); err != nil {
		return AppConfig{}, fmt.Errorf("decode config json: %w", err)
	}

	cfg.FillMissingDefaults()

	return cfg, nil
}

func (c *AppConfig) FillMissingDefaults() {
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if c.Logging.Format == "" {
		c.Logging.Format = DefaultLogFormat
	}
	if len(c.Channels) == 0 {
		c.Channels = []ChannelConfig{{Name: DefaultPrimaryChannel, PSK: channel.DefaultPSK}}
	}
	for i := range c.Channels {
		c.Channels[i].Name = strings.TrimSpace(c.Channels[i].Name)
		c.Channels[i].PSK = strings.TrimSpace(c.Channels[i].PSK)
	}
	if strings.TrimSpace(c.PayloadDecoder.Timeout) == "" {
		c.PayloadDecoder.Timeout = defaultDecoderTimeoutStr
	}
	if strings.TrimSpace(c.Ingest.DedupWindow) == "" {
		c.Ingest.DedupWindow = DefaultDedupWindow.String()
	}
}

func (c AppConfig) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Logging.Level)) {
	case "debug", "info", "warn", "warning", "error", "":
	default:
		return fmt.Errorf("unsupported log level: %q", c.Logging.Level)
	}
	switch strings.ToLower(strings.TrimSpace(c.Logging.Format)) {
	case "text", "json", "":
	default:
		return fmt.Errorf("unsupported log format: %q", c.Logging.Format)
	}

	for i, ch := range c.Channels {
		if ch.Name == "" {
			return fmt.Errorf("channel %d: name is required", i)
		}
		key, err := channel.ParsePSK(ch.PSK)
		if err != nil {
			return fmt.Errorf("channel %q: %w", ch.Name, err)
		}
		if len(key) != 0 && !channel.IsCipherKey(key) {
			return fmt.Errorf("channel %q: unusable key length %d", ch.Name, len(key))
		}
	}

	if _, err := c.DecoderTimeout(); err != nil {
		return err
	}
	if _, err := c.DedupWindow(); err != nil {
		return err
	}
	if _, err := c.CatalogRetention(); err != nil {
		return err
	}
	if c.Ingest.MinConfidence < 0 || c.Ingest.MinConfidence > 1 {
		return fmt.Errorf("min confidence must be within [0, 1], got %v", c.Ingest.MinConfidence)
	}

	return nil
}

// DecoderTimeout parses the payload decoder timeout.
func (c AppConfig) DecoderTimeout() (time.Duration, error) {
	return parsePositiveDuration("payload decoder timeout", c.PayloadDecoder.Timeout, DefaultDecoderTimeout)
}

// DedupWindow parses the ingest duplicate suppression window.
func (c AppConfig) DedupWindow() (time.Duration, error) {
	return parsePositiveDuration("dedup window", c.Ingest.DedupWindow, DefaultDedupWindow)
}

// CatalogRetention parses the catalog retention. Zero means keep everything.
func (c AppConfig) CatalogRetention() (time.Duration, error) {
	return parsePositiveDuration("catalog retention", c.Catalog.Retention, 0)
}

// CatalogPath returns the configured catalog database path, falling back to
// a file next to the config.
func (c AppConfig) CatalogPath(configDir string) string {
	if p := strings.TrimSpace(c.Catalog.DBPath); p != "" {
		return p
	}

	return filepath.Join(configDir, defaultCatalogFilename)
}

func Save(path string, cfg AppConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	var (
		raw []byte
		err error
	)
	if isYAML(path) {
		raw, err = yaml.Marshal(cfg)
	} else {
		raw, err = json.MarshalIndent(cfg, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, raw, 0o600); err != nil {
		return fmt.Errorf("write temp config: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename temp config: %w", err)
	}

	return nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}

func parsePositiveDuration(name, raw string, fallback time.Duration) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", name, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", name, raw)
	}

	return d, nil
}
