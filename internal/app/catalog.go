package app

import (
	"context"
	"errors"
	"time"

	"github.com/potatomesh/meshdecode/internal/persistence"
)

var ErrCatalogDisabled = errors.New("channel catalog is disabled; set catalog.enabled in the config")

// CatalogEntries returns every recorded observation.
func (r *Runtime) CatalogEntries(ctx context.Context) ([]persistence.ChannelObservation, error) {
	if r.Catalog == nil {
		return nil, ErrCatalogDisabled
	}

	return r.Catalog.ListAll(ctx)
}

// PruneCatalog drops observations not seen within olderThan of now.
func (r *Runtime) PruneCatalog(ctx context.Context, olderThan time.Duration, now time.Time) (int64, error) {
	if r.DB == nil {
		return 0, ErrCatalogDisabled
	}
	if err := r.flushCatalog(ctx); err != nil {
		return 0, err
	}

	return persistence.PruneObservations(ctx, r.DB, now.Add(-olderThan))
}

// ClearCatalog removes every observation.
func (r *Runtime) ClearCatalog(ctx context.Context) error {
	if r.DB == nil {
		return ErrCatalogDisabled
	}
	if err := r.flushCatalog(ctx); err != nil {
		return err
	}

	return persistence.ClearDatabase(ctx, r.DB)
}

func (r *Runtime) flushCatalog(ctx context.Context) error {
	if r.WriterQueue == nil {
		return nil
	}

	return r.WriterQueue.Flush(ctx)
}
