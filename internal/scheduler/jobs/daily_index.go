// Package jobs holds the concrete scheduled jobs.
package jobs

import (
	"context"

	"github.com/nachov/ipcmeli/internal/clock"
	"github.com/nachov/ipcmeli/internal/runner"
	"github.com/nachov/ipcmeli/pkg/config"
	"github.com/nachov/ipcmeli/pkg/logger"
)

// DailyIndexJob runs the daily price sweep and publication.
type DailyIndexJob struct {
	runner *runner.Runner
	config *config.Config
	logger *logger.Logger
}

// NewDailyIndexJob creates the daily job.
func NewDailyIndexJob(r *runner.Runner, cfg *config.Config, log *logger.Logger) *DailyIndexJob {
	return &DailyIndexJob{
		runner: r,
		config: cfg,
		logger: log,
	}
}

func (j *DailyIndexJob) Name() string {
	return "daily_index"
}

// Schedule comes from config so deployments can move the run time
// without a rebuild.
func (j *DailyIndexJob) Schedule() string {
	return j.config.RunSchedule
}

// Run captures the run timestamp once and executes the pipeline against
// it, so a slow run near midnight cannot straddle two dates.
func (j *DailyIndexJob) Run(ctx context.Context) error {
	run := clock.NewRun(j.config.UTCOffsetHours)
	j.logger.WithField("date", run.DateKey()).Info("Scheduled daily run triggered")
	return j.runner.Daily(ctx, run)
}
