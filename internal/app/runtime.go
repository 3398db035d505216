package app

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/potatomesh/meshdecode/internal/bus"
	"github.com/potatomesh/meshdecode/internal/channel"
	"github.com/potatomesh/meshdecode/internal/config"
	"github.com/potatomesh/meshdecode/internal/ingest"
	"github.com/potatomesh/meshdecode/internal/logging"
	"github.com/potatomesh/meshdecode/internal/payload"
	"github.com/potatomesh/meshdecode/internal/persistence"
)

// Options control how Initialize loads settings.
type Options struct {
	// ConfigFile overrides the default config location.
	ConfigFile string
	// LogLevel overrides the configured log level when set.
	LogLevel string
	// Console receives log output; defaults to stderr.
	Console io.Writer
}

// Runtime holds the long-lived services shared by the commands.
type Runtime struct {
	Ctx    context.Context
	cancel context.CancelFunc

	Paths  Paths
	Config config.AppConfig

	LogManager *logging.Manager
	Rainbow    *channel.RainbowService

	DB          *sql.DB
	Catalog     *persistence.ChannelRepo
	WriterQueue *persistence.WriterQueue
	Decoder     payload.Decoder

	InBus  *bus.PubSubBus
	OutBus *bus.PubSubBus
	Ingest *ingest.Service
}

func Initialize(parent context.Context, opts Options) (*Runtime, error) {
	paths, err := ResolvePaths(opts.ConfigFile)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(paths.ConfigFile)
	if err != nil {
		return nil, err
	}
	if lvl := strings.TrimSpace(opts.LogLevel); lvl != "" {
		cfg.Logging.Level = lvl
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", paths.ConfigFile, err)
	}

	ctx, cancel := context.WithCancel(parent)
	rt := &Runtime{
		Ctx:    ctx,
		cancel: cancel,
		Paths:  paths,
		Config: cfg,
	}

	console := opts.Console
	if console == nil {
		console = os.Stderr
	}
	logMgr := logging.NewManagerWithWriter(console)
	if err := logMgr.Configure(cfg.Logging, paths.LogFile); err != nil {
		_ = logMgr.Close()
		cancel()

		return nil, fmt.Errorf("configure logging: %w", err)
	}
	rt.LogManager = logMgr
	slog.Debug("starting meshdecode runtime", "version", BuildVersion(), "build_date", BuildDateYMD(), "config", paths.ConfigFile)

	rt.Rainbow = channel.NewRainbowService(cfg.Dictionary.ExtraNames...)

	if cfg.Catalog.Enabled {
		paths.DBFile = cfg.CatalogPath(paths.RootDir)
		rt.Paths = paths
		db, err := persistence.Open(ctx, paths.DBFile)
		if err != nil {
			_ = rt.Close()

			return nil, err
		}
		rt.DB = db
		rt.Catalog = persistence.NewChannelRepo(db)
		rt.WriterQueue = persistence.NewWriterQueue(logMgr.Logger("persistence"), WriterQueueSize)
		rt.WriterQueue.Start(ctx)

		retention, err := cfg.CatalogRetention()
		if err != nil {
			_ = rt.Close()

			return nil, err
		}
		if retention > 0 {
			removed, err := rt.PruneCatalog(ctx, retention, time.Now())
			if err != nil {
				_ = rt.Close()

				return nil, fmt.Errorf("prune catalog: %w", err)
			}
			slog.Debug("pruned channel catalog", "removed", removed, "retention", retention.String())
		}
	}

	if len(cfg.PayloadDecoder.Command) > 0 {
		timeout, err := cfg.DecoderTimeout()
		if err != nil {
			_ = rt.Close()

			return nil, err
		}
		dec, err := payload.NewExecDecoder(cfg.PayloadDecoder.Command, timeout)
		if err != nil {
			_ = rt.Close()

			return nil, fmt.Errorf("initialize payload decoder: %w", err)
		}
		rt.Decoder = dec
	}

	return rt, nil
}

// StartIngest wires the decode pipeline: packets published on InBus are
// decoded and the outcomes published on OutBus.
func (r *Runtime) StartIngest() error {
	window, err := r.Config.DedupWindow()
	if err != nil {
		return err
	}

	r.InBus = bus.New(r.LogManager.Logger("bus.in"))
	r.OutBus = bus.New(r.LogManager.Logger("bus.out"))

	opts := ingest.Options{
		Channels:      r.Config.Channels,
		Rainbow:       r.Rainbow,
		Writer:        r.WriterQueue,
		Decoder:       r.Decoder,
		MinConfidence: r.Config.Ingest.MinConfidence,
		DedupWindow:   window,
		Output:        r.OutBus,
	}
	if r.Catalog != nil {
		opts.Catalog = r.Catalog
	}
	svc, err := ingest.NewService(r.LogManager.Logger("ingest"), r.InBus, opts)
	if err != nil {
		return fmt.Errorf("initialize ingest: %w", err)
	}
	r.Ingest = svc

	return nil
}

func (r *Runtime) Close() error {
	if r.WriterQueue != nil {
		// Give queued catalog writes a chance to land before the db closes.
		_ = r.WriterQueue.Flush(r.Ctx)
	}
	if r.cancel != nil {
		r.cancel()
	}
	if r.InBus != nil {
		r.InBus.Close()
	}
	if r.OutBus != nil {
		r.OutBus.Close()
	}
	if r.DB != nil {
		_ = r.DB.Close()
	}
	if r.LogManager != nil {
		_ = r.LogManager.Close()
	}

	return nil
}
