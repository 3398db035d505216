package app

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/potatomesh/meshdecode/internal/persistence"
)

func seedCatalog(t *testing.T, dbPath string, obs ...persistence.ChannelObservation) {
	t.Helper()
	db, err := persistence.Open(context.Background(), dbPath)
	if err != nil {
		t.Fatalf("open catalog: %v", err)
	}
	defer func() { _ = db.Close() }()
	repo := persistence.NewChannelRepo(db)
	for _, o := range obs {
		if err := repo.Record(context.Background(), o); err != nil {
			t.Fatalf("seed %s: %v", o.Name, err)
		}
	}
}

func catalogConfig(t *testing.T, extra string) (string, string) {
	t.Helper()
	cfgPath := writeConfig(t, "catalog:\n  enabled: true\n"+extra)

	return cfgPath, filepath.Join(filepath.Dir(cfgPath), DBFilename)
}

func TestRuntime_CatalogDisabled(t *testing.T) {
	rt, err := Initialize(context.Background(), Options{
		ConfigFile: filepath.Join(t.TempDir(), "config.json"),
		Console:    &bytes.Buffer{},
	})
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	defer func() { _ = rt.Close() }()

	ctx := context.Background()
	if _, err := rt.CatalogEntries(ctx); !errors.Is(err, ErrCatalogDisabled) {
		t.Fatalf("expected ErrCatalogDisabled from list, got %v", err)
	}
	if _, err := rt.PruneCatalog(ctx, time.Hour, time.Now()); !errors.Is(err, ErrCatalogDisabled) {
		t.Fatalf("expected ErrCatalogDisabled from prune, got %v", err)
	}
	if err := rt.ClearCatalog(ctx); !errors.Is(err, ErrCatalogDisabled) {
		t.Fatalf("expected ErrCatalogDisabled from clear, got %v", err)
	}
}

func TestRuntime_CatalogPruneAndClear(t *testing.T) {
	cfgPath, dbPath := catalogConfig(t, "")
	now := time.Now().UTC()
	seedCatalog(t, dbPath,
		persistence.ChannelObservation{Hash: 0x08, Name: "LongFast", PSKLabel: "default", Source: persistence.SourceConfigured, LastSeen: now},
		persistence.ChannelObservation{Hash: 0x08, Name: "hidden", PSKLabel: "default", LastSeen: now.Add(-48 * time.Hour)},
	)

	rt, err := Initialize(context.Background(), Options{ConfigFile: cfgPath, Console: &bytes.Buffer{}})
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	defer func() { _ = rt.Close() }()

	ctx := context.Background()
	all, err := rt.CatalogEntries(ctx)
	if err != nil || len(all) != 2 {
		t.Fatalf("expected two entries, got %+v err=%v", all, err)
	}

	removed, err := rt.PruneCatalog(ctx, 24*time.Hour, now)
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected one stale entry removed, got %d", removed)
	}
	left, err := rt.CatalogEntries(ctx)
	if err != nil || len(left) != 1 || left[0].Name != "LongFast" {
		t.Fatalf("unexpected entries after prune: %+v err=%v", left, err)
	}

	if err := rt.ClearCatalog(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if left, _ := rt.CatalogEntries(ctx); len(left) != 0 {
		t.Fatalf("expected empty catalog after clear, got %+v", left)
	}
}

func TestInitialize_PrunesCatalogWithRetention(t *testing.T) {
	cfgPath, dbPath := catalogConfig(t, "  retention: 24h\n")
	now := time.Now().UTC()
	seedCatalog(t, dbPath,
		persistence.ChannelObservation{Hash: 0x08, Name: "LongFast", PSKLabel: "default", LastSeen: now},
		persistence.ChannelObservation{Hash: 0x08, Name: "hiking", PSKLabel: "default", LastSeen: now.Add(-72 * time.Hour)},
	)

	rt, err := Initialize(context.Background(), Options{ConfigFile: cfgPath, Console: &bytes.Buffer{}})
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	defer func() { _ = rt.Close() }()

	left, err := rt.CatalogEntries(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(left) != 1 || left[0].Name != "LongFast" {
		t.Fatalf("expected stale entry pruned on startup, got %+v", left)
	}
}
