package jobs

import (
	"context"
	"time"

	"github.com/wonny/tradedash/pkg/logger"
)

// Warmer recomputes cached metrics for a set of accounts
type Warmer interface {
	Warm(ctx context.Context, accounts []string, startingBalance float64, loc *time.Location) error
}

// MetricsWarmJob keeps dashboard metrics hot in the cache
type MetricsWarmJob struct {
	warmer          Warmer
	accounts        []string
	startingBalance float64
	location        *time.Location
	schedule        string
	timeout         time.Duration
	logger          *logger.Logger
}

// NewMetricsWarmJob creates a new metrics warm job
func NewMetricsWarmJob(
	warmer Warmer,
	accounts []string,
	startingBalance float64,
	loc *time.Location,
	schedule string,
	log *logger.Logger,
) *MetricsWarmJob {
	return &MetricsWarmJob{
		warmer:          warmer,
		accounts:        accounts,
		startingBalance: startingBalance,
		location:        loc,
		schedule:        schedule,
		timeout:         5 * time.Minute,
		logger:          log,
	}
}

// Name returns the job name
func (j *MetricsWarmJob) Name() string {
	return "metrics_warm"
}

// Schedule returns the cron schedule
func (j *MetricsWarmJob) Schedule() string {
	return j.schedule
}

// Run recomputes metrics for every configured account
func (j *MetricsWarmJob) Run(ctx context.Context) error {
	if len(j.accounts) == 0 {
		j.logger.Debug("No accounts configured for metrics warm")
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	start := time.Now()
	if err := j.warmer.Warm(ctx, j.accounts, j.startingBalance, j.location); err != nil {
		return err
	}

	j.logger.WithFields(map[string]interface{}{
		"accounts": len(j.accounts),
		"duration": time.Since(start),
	}).Info("Metrics warm completed")

	return nil
}
