// Package pricing fetches current prices for a basket of items in
// fixed-size batches.
package pricing

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/nachov/ipcmeli/internal/meli"
	"github.com/nachov/ipcmeli/internal/series"
	"github.com/nachov/ipcmeli/pkg/logger"
)

// BatchPricer prices one batch of up to meli.MaxPriceBatch ids.
type BatchPricer interface {
	GetPrices(ctx context.Context, ids []string) (map[string]series.Price, error)
}

// Fetcher retrieves current prices for arbitrarily many items.
type Fetcher struct {
	source  BatchPricer
	workers int
	logger  *logger.Logger
}

// NewFetcher creates a fetcher running up to workers concurrent batches.
func NewFetcher(source BatchPricer, workers int, log *logger.Logger) *Fetcher {
	if workers < 1 {
		workers = 1
	}
	return &Fetcher{
		source:  source,
		workers: workers,
		logger:  log.WithField("module", "pricing"),
	}
}

// FetchPrices partitions ids into batches of meli.MaxPriceBatch and prices
// each batch independently. Batches run concurrently and merge commutatively
// into one mapping; a failed batch is logged and skipped, so its ids end up
// absent from the output, which drops them at the next series join exactly
// like an unavailable price would. When every batch fails the upstream is
// down, not the items: that is an error, never an empty mapping that would
// join the whole basket away.
func (f *Fetcher) FetchPrices(ctx context.Context, ids []string) (map[string]series.Price, error) {
	batches := partition(ids, meli.MaxPriceBatch)

	var mu sync.Mutex
	merged := make(map[string]series.Price, len(ids))
	failedBatches := 0

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(f.workers)

	for _, batch := range batches {
		batch := batch
		g.Go(func() error {
			prices, err := f.source.GetPrices(ctx, batch)
			if err != nil {
				f.logger.WithError(err).WithField("batch_size", len(batch)).Warn("Price batch failed, skipping")
				mu.Lock()
				failedBatches++
				mu.Unlock()
				// Batch failures are absorbed; returning an error would
				// cancel the sibling batches.
				return nil
			}

			mu.Lock()
			for id, price := range prices {
				merged[id] = price
			}
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if len(batches) > 0 && failedBatches == len(batches) {
		return nil, &meli.SourceError{
			Scope: "price batches",
			Err:   fmt.Errorf("all %d batches failed", len(batches)),
		}
	}

	f.logger.WithFields(map[string]interface{}{
		"items":          len(ids),
		"batches":        len(batches),
		"failed_batches": failedBatches,
		"priced":         len(merged),
	}).Info("Price fetch completed")

	return merged, nil
}

// partition splits ids into chunks of at most size.
func partition(ids []string, size int) [][]string {
	var batches [][]string
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		batches = append(batches, ids[start:end])
	}
	return batches
}
