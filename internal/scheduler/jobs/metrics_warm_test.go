package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/wonny/tradedash/pkg/logger"
)

type fakeWarmer struct {
	accounts []string
	balance  float64
	err      error
}

func (f *fakeWarmer) Warm(ctx context.Context, accounts []string, balance float64, loc *time.Location) error {
	f.accounts = accounts
	f.balance = balance
	return f.err
}

func TestMetricsWarmJob(t *testing.T) {
	w := &fakeWarmer{}
	job := NewMetricsWarmJob(w, []string{"paper", "live"}, 5000, time.UTC, "0 */15 * * * *", logger.Nop())

	assert.Equal(t, "metrics_warm", job.Name())
	assert.Equal(t, "0 */15 * * * *", job.Schedule())

	assert.NoError(t, job.Run(context.Background()))
	assert.Equal(t, []string{"paper", "live"}, w.accounts)
	assert.Equal(t, 5000.0, w.balance)
}

func TestMetricsWarmJobNoAccounts(t *testing.T) {
	w := &fakeWarmer{err: errors.New("should not be called")}
	job := NewMetricsWarmJob(w, nil, 5000, time.UTC, "@hourly", logger.Nop())

	assert.NoError(t, job.Run(context.Background()))
	assert.Nil(t, w.accounts)
}

func TestMetricsWarmJobError(t *testing.T) {
	w := &fakeWarmer{err: errors.New("redis down")}
	job := NewMetricsWarmJob(w, []string{"paper"}, 5000, time.UTC, "@hourly", logger.Nop())

	assert.EqualError(t, job.Run(context.Background()), "redis down")
}
