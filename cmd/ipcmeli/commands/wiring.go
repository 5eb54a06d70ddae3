package commands

import (
	"fmt"
	"path/filepath"

	"github.com/nachov/ipcmeli/internal/inflation"
	"github.com/nachov/ipcmeli/internal/meli"
	"github.com/nachov/ipcmeli/internal/pricing"
	"github.com/nachov/ipcmeli/internal/publish"
	"github.com/nachov/ipcmeli/internal/runner"
	"github.com/nachov/ipcmeli/internal/scheduler"
	"github.com/nachov/ipcmeli/internal/scheduler/jobs"
	"github.com/nachov/ipcmeli/internal/secrets"
	"github.com/nachov/ipcmeli/internal/series"
	"github.com/nachov/ipcmeli/pkg/config"
	"github.com/nachov/ipcmeli/pkg/httputil"
	"github.com/nachov/ipcmeli/pkg/logger"
)

const (
	ledgerFile  = "ytd-inflation.json"
	catalogFile = "categories.csv"
)

// runtime bundles the wired application components shared by commands.
type runtime struct {
	cfg    *config.Config
	log    *logger.Logger
	store  *series.Store
	ledger *inflation.Ledger
	calc   *inflation.Calculator
	source *meli.Client
	runner *runner.Runner
}

// initRuntime loads config and wires the full pipeline.
func initRuntime() (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg)

	store, err := series.NewStore(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("open series store: %w", err)
	}

	ledger, err := inflation.LoadLedger(filepath.Join(cfg.DataDir, ledgerFile))
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	calc := inflation.NewCalculator(ledger, cfg.YTDStartYear, log)

	// The public API allows bursts but sustained traffic gets throttled.
	httpClient := httputil.New(log).WithRateLimit(8, 16)
	source := meli.NewClient(cfg.Meli, tokenStore(cfg), httpClient, log)

	r := runner.New(runner.Deps{
		Store:       store,
		Pricer:      pricing.NewFetcher(source, cfg.PriceWorkers, log),
		Calculator:  calc,
		Poster:      publish.NewTwitter(cfg.Twitter, log),
		Notifier:    publish.NewWebhook(cfg.WebhookURL, log),
		Source:      source,
		CatalogPath: filepath.Join(cfg.DataDir, catalogFile),
		Logger:      log,
	})

	return &runtime{
		cfg:    cfg,
		log:    log,
		store:  store,
		ledger: ledger,
		calc:   calc,
		source: source,
		runner: r,
	}, nil
}

// tokenStore picks where the refresh token lives: injected through the
// environment when present, otherwise the obfuscated token file.
func tokenStore(cfg *config.Config) secrets.Store {
	if cfg.Meli.RefreshToken != "" {
		return secrets.NewEnvStore(cfg.Meli.RefreshToken)
	}
	return secrets.NewXORFileStore(cfg.Meli.TokenFile, cfg.Meli.SecretKey)
}

// initScheduler wires the runtime and registers the scheduled jobs.
func initScheduler() (*runtime, *scheduler.Scheduler, error) {
	rt, err := initRuntime()
	if err != nil {
		return nil, nil, err
	}

	sched := scheduler.New(rt.log)
	if err := sched.AddJob(jobs.NewDailyIndexJob(rt.runner, rt.cfg, rt.log)); err != nil {
		return nil, nil, fmt.Errorf("register daily job: %w", err)
	}

	return rt, sched, nil
}
