package pricing

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/nachov/ipcmeli/internal/meli"
	"github.com/nachov/ipcmeli/internal/series"
	"github.com/nachov/ipcmeli/pkg/config"
	"github.com/nachov/ipcmeli/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(&config.Config{Env: "development", LogLevel: "error", LogFormat: "json"})
}

// fakePricer prices every requested id at a fixed amount, optionally
// failing whole batches containing a poisoned id.
type fakePricer struct {
	mu         sync.Mutex
	batchSizes []int
	poison     string
	sentinels  map[string]bool
	down       bool
}

func (f *fakePricer) GetPrices(_ context.Context, ids []string) (map[string]series.Price, error) {
	f.mu.Lock()
	f.batchSizes = append(f.batchSizes, len(ids))
	f.mu.Unlock()

	if f.down {
		return nil, errors.New("upstream down")
	}
	if len(ids) > meli.MaxPriceBatch {
		return nil, fmt.Errorf("batch too large: %d", len(ids))
	}

	out := make(map[string]series.Price, len(ids))
	for _, id := range ids {
		if id == f.poison {
			return nil, errors.New("batch exploded")
		}
		if f.sentinels[id] {
			out[id] = series.Unavailable()
			continue
		}
		out[id] = series.Known(100)
	}
	return out, nil
}

func makeIDs(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("MLA%d", i)
	}
	return ids
}

func TestFetchPricesPartitions(t *testing.T) {
	pricer := &fakePricer{}
	fetcher := NewFetcher(pricer, 4, testLogger())

	prices, err := fetcher.FetchPrices(context.Background(), makeIDs(45))
	if err != nil {
		t.Fatalf("FetchPrices failed: %v", err)
	}

	if len(prices) != 45 {
		t.Errorf("got %d prices, want 45", len(prices))
	}

	if len(pricer.batchSizes) != 3 {
		t.Fatalf("got %d batches, want 3", len(pricer.batchSizes))
	}
	total := 0
	for _, size := range pricer.batchSizes {
		if size > meli.MaxPriceBatch {
			t.Errorf("batch size %d exceeds limit", size)
		}
		total += size
	}
	if total != 45 {
		t.Errorf("batches cover %d ids, want 45", total)
	}
}

func TestFetchPricesIsolatesBatchFailure(t *testing.T) {
	// The poisoned id sits in the second batch; the other two batches must
	// still be priced.
	pricer := &fakePricer{poison: "MLA25"}
	fetcher := NewFetcher(pricer, 1, testLogger())

	ids := makeIDs(60)
	prices, err := fetcher.FetchPrices(context.Background(), ids)
	if err != nil {
		t.Fatalf("FetchPrices failed: %v", err)
	}

	if len(prices) != 40 {
		t.Errorf("got %d prices, want 40 (one batch of 20 lost)", len(prices))
	}
	if _, ok := prices["MLA25"]; ok {
		t.Error("id from the failed batch must be absent")
	}
	if _, ok := prices["MLA5"]; !ok {
		t.Error("first batch must survive the second batch's failure")
	}
	if _, ok := prices["MLA45"]; !ok {
		t.Error("third batch must survive the second batch's failure")
	}
}

func TestFetchPricesTotalOutageErrors(t *testing.T) {
	// Every batch failing means the upstream is down. An empty mapping
	// here would inner-join the whole basket away at the next append.
	pricer := &fakePricer{down: true}
	fetcher := NewFetcher(pricer, 2, testLogger())

	_, err := fetcher.FetchPrices(context.Background(), makeIDs(45))
	if err == nil {
		t.Fatal("expected error when all batches fail")
	}

	var srcErr *meli.SourceError
	if !errors.As(err, &srcErr) {
		t.Errorf("error = %v, want a SourceError", err)
	}
}

func TestFetchPricesSentinelsAreData(t *testing.T) {
	pricer := &fakePricer{sentinels: map[string]bool{"MLA3": true}}
	fetcher := NewFetcher(pricer, 2, testLogger())

	prices, err := fetcher.FetchPrices(context.Background(), makeIDs(5))
	if err != nil {
		t.Fatalf("FetchPrices failed: %v", err)
	}

	p, ok := prices["MLA3"]
	if !ok {
		t.Fatal("sentinel id must be present in the mapping")
	}
	if p.Comparable() {
		t.Error("sentinel must not be comparable")
	}
}

func TestFetchPricesEmpty(t *testing.T) {
	fetcher := NewFetcher(&fakePricer{}, 2, testLogger())

	prices, err := fetcher.FetchPrices(context.Background(), nil)
	if err != nil {
		t.Fatalf("FetchPrices failed: %v", err)
	}
	if len(prices) != 0 {
		t.Errorf("got %d prices, want 0", len(prices))
	}
}
