package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/potatomesh/meshdecode/internal/channel"
)

func TestAppConfigFillMissingDefaults(t *testing.T) {
	cfg := AppConfig{}
	cfg.FillMissingDefaults()

	if cfg.Logging.Level != "info" {
		t.Fatalf("expected default log level info, got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" {
		t.Fatalf("expected default log format text, got %q", cfg.Logging.Format)
	}
	if len(cfg.Channels) != 1 || cfg.Channels[0].Name != "LongFast" || cfg.Channels[0].PSK != channel.DefaultPSK {
		t.Fatalf("expected default LongFast channel, got %+v", cfg.Channels)
	}
	if cfg.PayloadDecoder.Timeout != "5s" {
		t.Fatalf("expected default decoder timeout, got %q", cfg.PayloadDecoder.Timeout)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
	if cfg.Ingest.MinConfidence != DefaultMinConfidence {
		t.Fatalf("unexpected min confidence: %v", cfg.Ingest.MinConfidence)
	}
	window, err := cfg.DedupWindow()
	if err != nil || window != 10*time.Minute {
		t.Fatalf("unexpected dedup window: %v err=%v", window, err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cfg.Channels) != 1 {
		t.Fatalf("expected default channel list, got %+v", cfg.Channels)
	}
}

func TestLoadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	raw := `{
  "logging": {"level": "debug", "format": "json"},
  "channels": [
    {"name": " LongFast ", "psk": "AQ=="},
    {"name": "Hikers", "psk": "c2VjcmV0LWtleS0xMjM0NQ=="}
  ],
  "dictionary": {"extra_names": ["Hikers"]},
  "ingest": {"min_confidence": 0}
}`
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write config fixture: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Fatalf("unexpected logging config: %+v", cfg.Logging)
	}
	if len(cfg.Channels) != 2 || cfg.Channels[0].Name != "LongFast" || cfg.Channels[1].Name != "Hikers" {
		t.Fatalf("unexpected channels: %+v", cfg.Channels)
	}
	if cfg.Ingest.MinConfidence != 0 {
		t.Fatalf("explicit zero min confidence must be preserved, got %v", cfg.Ingest.MinConfidence)
	}
	if cfg.Ingest.DedupWindow != DefaultDedupWindow.String() {
		t.Fatalf("expected default dedup window, got %q", cfg.Ingest.DedupWindow)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `
logging:
  level: warn
channels:
  - name: MediumFast
    psk: AQ==
catalog:
  enabled: true
  retention: 720h
payload_decoder:
  command: ["python3", "decode_payload.py"]
  timeout: 2s
`
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write config fixture: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Logging.Level != "warn" || cfg.Logging.Format != "text" {
		t.Fatalf("unexpected logging config: %+v", cfg.Logging)
	}
	if len(cfg.Channels) != 1 || cfg.Channels[0].Name != "MediumFast" {
		t.Fatalf("unexpected channels: %+v", cfg.Channels)
	}
	timeout, err := cfg.DecoderTimeout()
	if err != nil || timeout != 2*time.Second {
		t.Fatalf("unexpected decoder timeout: %v err=%v", timeout, err)
	}
	if got := cfg.CatalogPath("/etc/meshdecode"); got != filepath.Join("/etc/meshdecode", "channels.db") {
		t.Fatalf("unexpected catalog path: %q", got)
	}
	retention, err := cfg.CatalogRetention()
	if err != nil || retention != 720*time.Hour {
		t.Fatalf("unexpected catalog retention: %v err=%v", retention, err)
	}
	if keep, err := Default().CatalogRetention(); err != nil || keep != 0 {
		t.Fatalf("default retention must keep everything, got %v err=%v", keep, err)
	}
}

func TestLoadRejectsMalformedFiles(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "config.json")
	if err := os.WriteFile(jsonPath, []byte("{"), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := Load(jsonPath); err == nil || !strings.Contains(err.Error(), "decode config json") {
		t.Fatalf("expected json decode error, got %v", err)
	}

	yamlPath := filepath.Join(dir, "config.yml")
	if err := os.WriteFile(yamlPath, []byte("channels: [\n"), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := Load(yamlPath); err == nil || !strings.Contains(err.Error(), "decode config yaml") {
		t.Fatalf("expected yaml decode error, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*AppConfig)
		errSub string
	}{
		{name: "bad level", mutate: func(c *AppConfig) { c.Logging.Level = "loud" }, errSub: "log level"},
		{name: "bad format", mutate: func(c *AppConfig) { c.Logging.Format = "xml" }, errSub: "log format"},
		{name: "unnamed channel", mutate: func(c *AppConfig) { c.Channels[0].Name = "" }, errSub: "name is required"},
		{name: "bad psk", mutate: func(c *AppConfig) { c.Channels[0].PSK = "!!" }, errSub: "invalid channel psk"},
		{name: "unknown alias", mutate: func(c *AppConfig) { c.Channels[0].PSK = "BQ==" }, errSub: "unknown alias"},
		{name: "bad timeout", mutate: func(c *AppConfig) { c.PayloadDecoder.Timeout = "soon" }, errSub: "decoder timeout"},
		{name: "negative window", mutate: func(c *AppConfig) { c.Ingest.DedupWindow = "-1s" }, errSub: "must be positive"},
		{name: "confidence above one", mutate: func(c *AppConfig) { c.Ingest.MinConfidence = 1.5 }, errSub: "min confidence"},
		{name: "bad retention", mutate: func(c *AppConfig) { c.Catalog.Retention = "forever" }, errSub: "catalog retention"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tc.errSub) {
				t.Fatalf("expected error containing %q, got %v", tc.errSub, err)
			}
		})
	}
}

func TestValidateAcceptsUnencryptedChannel(t *testing.T) {
	cfg := Default()
	cfg.Channels = append(cfg.Channels, ChannelConfig{Name: "Open", PSK: ""})
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty psk marks an unencrypted channel and must validate: %v", err)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	for _, name := range []string{"config.json", "config.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", name)
			cfg := Default()
			cfg.Channels = append(cfg.Channels, ChannelConfig{Name: "Hikers", PSK: "AQI="})
			cfg.Dictionary.ExtraNames = []string{"Hikers"}

			if err := Save(path, cfg); err != nil {
				t.Fatalf("save: %v", err)
			}
			loaded, err := Load(path)
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if len(loaded.Channels) != 2 || loaded.Channels[1].PSK != "AQI=" {
				t.Fatalf("unexpected channels after roundtrip: %+v", loaded.Channels)
			}
			if len(loaded.Dictionary.ExtraNames) != 1 || loaded.Dictionary.ExtraNames[0] != "Hikers" {
				t.Fatalf("unexpected dictionary after roundtrip: %+v", loaded.Dictionary)
			}
			if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
				t.Fatalf("temp file must be renamed away, stat err=%v", err)
			}
		})
	}
}

func TestSaveRejectsInvalidConfig(t *testing.T) {
	cfg := Default()
	cfg.Channels[0].PSK = "???"
	if err := Save(filepath.Join(t.TempDir(), "config.json"), cfg); err == nil {
		t.Fatalf("expected invalid config to be rejected")
	}
}
