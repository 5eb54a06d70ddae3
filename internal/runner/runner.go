// Package runner orchestrates a full tracking run: fetch the day's
// prices, extend the month's series, compute the index and publish the
// summary. Month rollover and manual bootstrap live here too.
package runner

import (
	"context"
	"fmt"

	"github.com/nachov/ipcmeli/internal/basket"
	"github.com/nachov/ipcmeli/internal/catalog"
	"github.com/nachov/ipcmeli/internal/clock"
	"github.com/nachov/ipcmeli/internal/inflation"
	"github.com/nachov/ipcmeli/internal/publish"
	"github.com/nachov/ipcmeli/internal/series"
	"github.com/nachov/ipcmeli/pkg/logger"
)

// Pricer resolves current prices for a set of item ids.
type Pricer interface {
	FetchPrices(ctx context.Context, ids []string) (map[string]series.Price, error)
}

// Poster publishes the daily summary.
type Poster interface {
	Post(ctx context.Context, text string) error
}

// Notifier reports run failures out of band.
type Notifier interface {
	Notify(ctx context.Context, content string)
}

// Source is the marketplace surface bootstrap needs: category listing
// for the universe, search for basket resolution, lookups for catalog
// healing.
type Source interface {
	basket.CategoryLister
	basket.Searcher
	catalog.CategoryGetter
}

// Deps holds the runner's collaborators.
type Deps struct {
	Store       *series.Store
	Pricer      Pricer
	Calculator  *inflation.Calculator
	Poster      Poster
	Notifier    Notifier
	Source      Source
	CatalogPath string
	Logger      *logger.Logger
}

// Runner executes daily runs and month bootstraps.
type Runner struct {
	store       *series.Store
	pricer      Pricer
	calc        *inflation.Calculator
	poster      Poster
	notifier    Notifier
	source      Source
	catalogPath string
	logger      *logger.Logger
}

// New creates a Runner from its dependencies.
func New(deps Deps) *Runner {
	return &Runner{
		store:       deps.Store,
		pricer:      deps.Pricer,
		calc:        deps.Calculator,
		poster:      deps.Poster,
		notifier:    deps.Notifier,
		source:      deps.Source,
		catalogPath: deps.CatalogPath,
		logger:      deps.Logger.WithField("module", "runner"),
	}
}

// Daily runs the full pipeline for the run's date. Any failure aborts
// the run, notifies the failure webhook and leaves the previous day's
// persisted file untouched.
func (r *Runner) Daily(ctx context.Context, run clock.Run) error {
	month := run.MonthKey()
	log := r.logger.WithFields(map[string]interface{}{
		"month": month,
		"date":  run.DateKey(),
	})
	log.Info("Starting daily run")

	s, err := r.store.Load(month)
	if err != nil {
		return r.fail(ctx, fmt.Errorf("load series %s: %w", month, err))
	}

	ids := make([]string, 0, s.Len())
	for _, rec := range s.Records() {
		ids = append(ids, rec.ItemID)
	}

	prices, err := r.pricer.FetchPrices(ctx, ids)
	if err != nil {
		return r.fail(ctx, fmt.Errorf("fetch prices: %w", err))
	}

	dropped, err := s.AppendObservation(run.DateKey(), prices)
	if err != nil {
		return r.fail(ctx, fmt.Errorf("append observation: %w", err))
	}
	if dropped > 0 {
		log.Warnf("%d items left the basket", dropped)
	}

	// Compute before persisting: if the day's figures are undefined
	// (empty comparable basket, zero sums) the run aborts with the prior
	// day's file still intact.
	result, err := r.calc.Compute(s, run)
	if err != nil {
		return r.fail(ctx, fmt.Errorf("compute index: %w", err))
	}

	if err := r.store.Save(s); err != nil {
		return r.fail(ctx, fmt.Errorf("persist series: %w", err))
	}

	if err := r.poster.Post(ctx, publish.BuildMessage(result, run)); err != nil {
		return r.fail(ctx, fmt.Errorf("publish summary: %w", err))
	}

	if run.IsLastDayOfMonth() {
		next := run.NextMonthKey()
		if r.store.Exists(next) {
			log.WithField("next", next).Warn("Next month already bootstrapped, skipping")
		} else if err := r.bootstrapMonth(ctx, next, run.DateKey()); err != nil {
			return r.fail(ctx, fmt.Errorf("bootstrap %s: %w", next, err))
		}
	}

	log.WithField("basket_size", result.BasketSize).Info("Daily run completed")
	return nil
}

// Bootstrap builds a fresh series for the run's month. It refuses to
// overwrite an existing month.
func (r *Runner) Bootstrap(ctx context.Context, run clock.Run) error {
	if err := r.bootstrapMonth(ctx, run.MonthKey(), run.DateKey()); err != nil {
		return r.fail(ctx, fmt.Errorf("bootstrap %s: %w", run.MonthKey(), err))
	}
	return nil
}

// bootstrapMonth assembles a new basket from the category universe,
// prices it and persists the first column of the month's series under
// the given date.
func (r *Runner) bootstrapMonth(ctx context.Context, month, date string) error {
	log := r.logger.WithField("month", month)
	log.Info("Bootstrapping series")

	cat, err := catalog.Load(r.catalogPath, r.logger)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	universe, err := basket.Universe(ctx, r.source, r.logger)
	if err != nil {
		return fmt.Errorf("resolve universe: %w", err)
	}
	if err := cat.Heal(ctx, r.source, universe); err != nil {
		return fmt.Errorf("heal catalog: %w", err)
	}

	items, err := basket.NewResolver(r.source, r.logger).Resolve(ctx, cat.CategoryIDs())
	if err != nil {
		return fmt.Errorf("resolve basket: %w", err)
	}

	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ID)
	}
	prices, err := r.pricer.FetchPrices(ctx, ids)
	if err != nil {
		return fmt.Errorf("price basket: %w", err)
	}

	// Only items with an actual price seed the month; everything else
	// would be dead weight in a basket that never grows.
	rows := make([]series.Row, 0, len(items))
	for _, it := range items {
		p, ok := prices[it.ID]
		if !ok || !p.Comparable() {
			continue
		}
		rows = append(rows, series.Row{
			ItemID:     it.ID,
			CategoryID: it.CategoryID,
			Title:      it.Title,
			Price:      p,
		})
	}
	if len(rows) == 0 {
		return fmt.Errorf("no priced items for %s", month)
	}

	if err := r.store.Create(series.New(month, date, rows)); err != nil {
		return fmt.Errorf("create series: %w", err)
	}

	log.Infof("Series bootstrapped with %d items", len(rows))
	return nil
}

func (r *Runner) fail(ctx context.Context, err error) error {
	r.logger.WithError(err).Error("Run failed")
	r.notifier.Notify(ctx, "⚠️ Falló la corrida diaria del índice: "+err.Error())
	return err
}
