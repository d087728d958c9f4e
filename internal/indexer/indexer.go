// Package indexer is a thin adapter around Catalog.UpsertBatch, turning each
// incoming batch into one transaction. Adapted from indexer.rs.
package indexer

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/Kalfadda/scythe/internal/catalog"
)

// Indexer wraps catalog batch upserts with logging of per-row failures.
type Indexer struct {
	cat *catalog.Catalog
	log zerolog.Logger
}

func New(cat *catalog.Catalog, log zerolog.Logger) *Indexer {
	return &Indexer{cat: cat, log: log}
}

// UpsertBatch commits one transaction per call. Per-row errors are logged
// and skipped; the batch always commits whatever succeeded. Returns the
// count of successfully upserted rows.
func (ix *Indexer) UpsertBatch(ctx context.Context, assets []catalog.Asset) (int, error) {
	ok, err := ix.cat.UpsertBatch(ctx, assets)
	if err != nil {
		ix.log.Error().Err(err).Int("batch_size", len(assets)).Msg("upsert batch failed")
		return ok, err
	}
	if ok < len(assets) {
		ix.log.Warn().Int("succeeded", ok).Int("submitted", len(assets)).Msg("partial batch upsert")
	}
	return ok, nil
}
